package request

import "fmt"

// Result is the word a request returned, tagged with the result kind from the
// table. Decoders panic when asked for a kind the entry does not declare.
type Result struct {
	Entry *Entry
	Word  Word
}

func (r Result) expect(kinds ...ResultKind) {
	for _, k := range kinds {
		if r.Entry.Result == k {
			return
		}
	}
	panic(fmt.Sprintf("request: %s returns %s, decoded as %v", r.Entry, r.Entry.Result, kinds))
}

// Count decodes a count.
func (r Result) Count() uint {
	r.expect(ResultCount)
	return uint(r.Word)
}

// Uint32 decodes a 32-bit id. The supervisor stores these in a full word;
// the high half is discarded like the C unsigned int conversion does.
func (r Result) Uint32() uint32 {
	r.expect(ResultUint32)
	return uint32(r.Word)
}

// Bool decodes a flag.
func (r Result) Bool() bool {
	r.expect(ResultBool)
	return r.Word != 0
}

// Address decodes a raw address.
func (r Result) Address() uintptr {
	r.expect(ResultAddress)
	return r.Word
}

// OptionalAddress decodes a zero-means-absent address.
func (r Result) OptionalAddress() (uintptr, bool) {
	r.expect(ResultOptionalAddress)
	return r.Word, r.Word != 0
}

// Handle decodes an opaque handle.
func (r Result) Handle() Word {
	r.expect(ResultHandle)
	return r.Word
}

// Status decodes a request-specific status code.
func (r Result) Status() Word {
	r.expect(ResultStatus)
	return r.Word
}
