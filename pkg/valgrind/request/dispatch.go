package request

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Dispatcher marshals table entries onto a Trap.
type Dispatcher struct {
	trap Trap
}

var std = &Dispatcher{trap: Native{}}

// Default returns the dispatcher backed by the native trap.
func Default() *Dispatcher {
	return std
}

// NewDispatcher returns a dispatcher issuing requests through t. A nil t
// selects the native trap.
func NewDispatcher(t Trap) *Dispatcher {
	if t == nil {
		t = Native{}
	}
	return &Dispatcher{trap: t}
}

// Call issues e with a default of zero.
func (d *Dispatcher) Call(e *Entry, args ...Word) Result {
	return d.CallDefault(0, e, args...)
}

// CallDefault issues e and returns def if no supervisor answers. It panics if
// the number of arguments does not match the entry.
func (d *Dispatcher) CallDefault(def Word, e *Entry, args ...Word) Result {
	if len(args) != len(e.Args) {
		panic(fmt.Sprintf("request: %s takes %d arguments, got %d", e, len(e.Args), len(args)))
	}
	return Result{Entry: e, Word: d.trap.Issue(def, NewFrame(e.Code, args...))}
}

// CallPinned issues e while every pointer in pins is pinned, so that memory
// whose address travels in args is neither moved nor freed until the request
// returns. Pointers outside the Go heap are accepted and left alone.
func (d *Dispatcher) CallPinned(e *Entry, pins []unsafe.Pointer, args ...Word) Result {
	var pinner runtime.Pinner
	defer pinner.Unpin()

	for _, p := range pins {
		if p != nil {
			pinner.Pin(p)
		}
	}
	return d.Call(e, args...)
}

// Pins is shorthand for building the pins argument of CallPinned.
func Pins(ptrs ...unsafe.Pointer) []unsafe.Pointer {
	return ptrs
}

// CString returns s as a NUL terminated byte slice. Valgrind stops reading
// at the first NUL, so an embedded NUL truncates the text it sees.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
