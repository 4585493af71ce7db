package request

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ArgKind describes how a typed argument is lowered to a frame word.
type ArgKind uint8

const (
	// ArgWord is an opaque count, id or handle passed as is.
	ArgWord ArgKind = iota + 1
	// ArgAddr is the address of caller memory the supervisor reads or marks.
	ArgAddr
	// ArgSize is a length in bytes.
	ArgSize
	// ArgBool is 0 or 1.
	ArgBool
	// ArgString is the address of a NUL terminated copy of a Go string,
	// valid for the duration of the request only.
	ArgString
	// ArgOut is the address of a word the supervisor writes its answer into.
	ArgOut
	// ArgConst is a fixed value chosen by the wrapper, such as a leak-check
	// mode.
	ArgConst
	// ArgSigned is a signed integer in two's complement.
	ArgSigned
)

var argKindNames = map[ArgKind]string{
	ArgWord:   "word",
	ArgAddr:   "addr",
	ArgSize:   "size",
	ArgBool:   "bool",
	ArgString: "string",
	ArgOut:    "out",
	ArgConst:  "const",
	ArgSigned: "signed",
}

func (k ArgKind) String() string {
	if name, ok := argKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("arg(%d)", uint8(k))
}

// Unsafe reports whether the argument carries an address the caller must keep
// valid for the duration of the request.
func (k ArgKind) Unsafe() bool {
	return k == ArgAddr || k == ArgString || k == ArgOut
}

// ResultKind tells how the result word of a request is interpreted.
type ResultKind uint8

const (
	// ResultUnit means the request is a pure command.
	ResultUnit ResultKind = iota
	// ResultCount is an unsigned count.
	ResultCount
	// ResultUint32 is a 32-bit id.
	ResultUint32
	// ResultBool is zero for false, anything else for true.
	ResultBool
	// ResultAddress is a raw address.
	ResultAddress
	// ResultOptionalAddress is absent when zero, otherwise an address.
	ResultOptionalAddress
	// ResultHandle is an opaque handle to pass back in a later request.
	ResultHandle
	// ResultStatus is a small request-specific status code.
	ResultStatus
)

var resultKindNames = map[ResultKind]string{
	ResultUnit:            "unit",
	ResultCount:           "count",
	ResultUint32:          "uint32",
	ResultBool:            "bool",
	ResultAddress:         "address",
	ResultOptionalAddress: "optional-address",
	ResultHandle:          "handle",
	ResultStatus:          "status",
}

func (k ResultKind) String() string {
	if name, ok := resultKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", uint8(k))
}

// Entry is one row of the request table.
type Entry struct {
	// Name is the request name without the VG_USERREQ__ prefix.
	Name   string
	Tool   Tool
	Code   Code
	Args   []ArgKind
	Result ResultKind
	// Verified marks requests exercised against a real Valgrind. The others
	// follow the same marshaling rules but have only been checked against
	// the headers.
	Verified bool
}

// Arity is the number of declared arguments.
func (e *Entry) Arity() int {
	return len(e.Args)
}

// Unsafe reports whether any argument carries caller memory.
func (e *Entry) Unsafe() bool {
	for _, a := range e.Args {
		if a.Unsafe() {
			return true
		}
	}
	return false
}

// Signature renders the entry as name(arg, ...) -> result.
func (e *Entry) Signature() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", e.Name, strings.Join(args, ", "), e.Result)
}

func (e *Entry) String() string {
	return e.Tool.String() + "." + e.Name
}

type entryKey struct {
	tool Tool
	name string
}

var table = struct {
	sync.RWMutex
	byName map[entryKey]*Entry
	byCode map[Tool]map[Code]*Entry
}{
	byName: make(map[entryKey]*Entry),
	byCode: make(map[Tool]map[Code]*Entry),
}

// Register adds e to the request table and returns it. Tool packages call it
// from package-level var declarations. It panics on a malformed entry, a
// duplicate name within a tool, or a code reused within a tool.
func Register(e *Entry) *Entry {
	if err := validate(e); err != nil {
		panic(err)
	}

	table.Lock()
	defer table.Unlock()

	key := entryKey{tool: e.Tool, name: e.Name}
	if _, ok := table.byName[key]; ok {
		panic(fmt.Sprintf("request: %s registered twice", e))
	}
	codes := table.byCode[e.Tool]
	if codes == nil {
		codes = make(map[Code]*Entry)
		table.byCode[e.Tool] = codes
	}
	if prev, ok := codes[e.Code]; ok {
		panic(fmt.Sprintf("request: %s reuses code %s of %s", e, e.Code, prev))
	}

	table.byName[key] = e
	codes[e.Code] = e
	return e
}

func validate(e *Entry) error {
	if e == nil {
		return fmt.Errorf("request: nil entry")
	}
	if e.Name == "" {
		return fmt.Errorf("request: entry with code %s has no name", e.Code)
	}
	if len(e.Args) > MaxArgs {
		return fmt.Errorf("request: %s declares %d arguments, at most %d fit in a frame", e, len(e.Args), MaxArgs)
	}
	for i, a := range e.Args {
		if _, ok := argKindNames[a]; !ok {
			return fmt.Errorf("request: %s argument %d has unknown kind %d", e, i+1, a)
		}
	}
	if _, ok := resultKindNames[e.Result]; !ok {
		return fmt.Errorf("request: %s has unknown result kind %d", e, e.Result)
	}
	return nil
}

// Lookup finds a registered entry by tool and name.
func Lookup(tool Tool, name string) (*Entry, bool) {
	table.RLock()
	defer table.RUnlock()

	e, ok := table.byName[entryKey{tool: tool, name: name}]
	return e, ok
}

// LookupCode finds the entry a tool registered for code.
func LookupCode(tool Tool, code Code) (*Entry, bool) {
	table.RLock()
	defer table.RUnlock()

	e, ok := table.byCode[tool][code]
	return e, ok
}

// Entries returns every registered entry sorted by tool, then code.
func Entries() []*Entry {
	table.RLock()
	entries := make([]*Entry, 0, len(table.byName))
	for _, e := range table.byName {
		entries = append(entries, e)
	}
	table.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Tool != entries[j].Tool {
			return entries[i].Tool < entries[j].Tool
		}
		return entries[i].Code < entries[j].Code
	})
	return entries
}
