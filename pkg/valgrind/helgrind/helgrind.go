// Package helgrind issues client requests to Helgrind, Valgrind's thread
// error detector.
//
// See /usr/include/valgrind/helgrind.h. Without Valgrind the requests do
// nothing.
package helgrind

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

var cleanMemory = request.Register(&request.Entry{
	Name: "CLEAN_MEMORY", Tool: request.Helgrind, Code: request.HelgrindCleanMemory,
	Args: []request.ArgKind{request.ArgAddr, request.ArgSize},
})

// Client issues Helgrind requests through a dispatcher.
type Client struct {
	d *request.Dispatcher
}

// New returns a client on d, or on the native dispatcher if d is nil.
func New(d *request.Dispatcher) *Client {
	if d == nil {
		d = request.Default()
	}
	return &Client{d: d}
}

var std = New(nil)

// CleanMemory makes Helgrind forget the access history of [addr, addr+n),
// as if the memory had just been allocated. Use it when recycling memory
// that a custom allocator handed to another thread.
func (c *Client) CleanMemory(addr unsafe.Pointer, n uintptr) {
	c.d.CallPinned(cleanMemory, request.Pins(addr), request.Addr(addr), n)
}

// CleanMemory calls Client.CleanMemory on the native client.
func CleanMemory(addr unsafe.Pointer, n uintptr) { std.CleanMemory(addr, n) }

// Clean is CleanMemory over *obj.
func Clean[T any](obj *T) {
	std.CleanMemory(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}
