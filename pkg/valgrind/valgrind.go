// Package valgrind issues client requests to the Valgrind core.
//
// See /usr/include/valgrind/valgrind.h and section 3.1 of the Valgrind manual
// (https://valgrind.org/docs/manual/manual-core-adv.html#manual-core-adv.clientreq).
//
// Without Valgrind every function returns its zero value and does nothing.
// Tool specific requests live in the memcheck, callgrind, helgrind and drd
// subpackages.
package valgrind

import (
	"bytes"
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

var (
	runningOnValgrind = request.Register(&request.Entry{
		Name: "RUNNING_ON_VALGRIND", Tool: request.Core, Code: request.CoreRunningOnValgrind,
		Result: request.ResultCount, Verified: true,
	})
	discardTranslations = request.Register(&request.Entry{
		Name: "DISCARD_TRANSLATIONS", Tool: request.Core, Code: request.CoreDiscardTranslations,
		Args: []request.ArgKind{request.ArgAddr, request.ArgSize},
	})
	countErrors = request.Register(&request.Entry{
		Name: "COUNT_ERRORS", Tool: request.Core, Code: request.CoreCountErrors,
		Result: request.ResultCount, Verified: true,
	})
	monitorCommand = request.Register(&request.Entry{
		Name: "GDB_MONITOR_COMMAND", Tool: request.Core, Code: request.CoreGDBMonitorCommand,
		Args: []request.ArgKind{request.ArgString},
	})
	stackRegister = request.Register(&request.Entry{
		Name: "STACK_REGISTER", Tool: request.Core, Code: request.CoreStackRegister,
		Args: []request.ArgKind{request.ArgWord, request.ArgWord}, Result: request.ResultHandle,
	})
	stackDeregister = request.Register(&request.Entry{
		Name: "STACK_DEREGISTER", Tool: request.Core, Code: request.CoreStackDeregister,
		Args: []request.ArgKind{request.ArgWord},
	})
	stackChange = request.Register(&request.Entry{
		Name: "STACK_CHANGE", Tool: request.Core, Code: request.CoreStackChange,
		Args: []request.ArgKind{request.ArgWord, request.ArgWord, request.ArgWord},
	})
	mapIPToSrcloc = request.Register(&request.Entry{
		Name: "MAP_IP_TO_SRCLOC", Tool: request.Core, Code: request.CoreMapIPToSrcloc,
		Args: []request.ArgKind{request.ArgWord, request.ArgOut},
	})
	changeErrDisablement = request.Register(&request.Entry{
		Name: "CHANGE_ERR_DISABLEMENT", Tool: request.Core, Code: request.CoreChangeErrDisablement,
		Args: []request.ArgKind{request.ArgSigned},
	})
)

// srclocSize is the buffer size MAP_IP_TO_SRCLOC writes into.
const srclocSize = 64

// StackID identifies a stack registered with StackRegister.
type StackID uintptr

// Client issues core requests through a dispatcher.
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

// RunningOnValgrind returns 0 when running natively, 1 under Valgrind, and
// more when Valgrind itself runs under Valgrind.
func (c *Client) RunningOnValgrind() uint {
	return c.d.Call(runningOnValgrind).Count()
}

// CountErrors returns the number of errors the tool has reported so far.
func (c *Client) CountErrors() uint {
	return c.d.Call(countErrors).Count()
}

// DiscardTranslations drops cached translations of code in [addr, addr+n).
// Use it after rewriting machine code in place.
func (c *Client) DiscardTranslations(addr unsafe.Pointer, n uintptr) {
	c.d.CallPinned(discardTranslations, request.Pins(addr), request.Addr(addr), n)
}

// MonitorCommand runs a gdbserver monitor command. The output goes to the
// attached debugger, or to the Valgrind log when none is connected.
func (c *Client) MonitorCommand(cmd string) {
	s := request.CString(cmd)
	c.d.CallPinned(monitorCommand, request.Pins(unsafe.Pointer(&s[0])), request.Addr(unsafe.Pointer(&s[0])))
}

// StackRegister tells Valgrind that [start, end) is a stack, for programs that
// switch stacks by hand.
func (c *Client) StackRegister(start, end uintptr) StackID {
	return StackID(c.d.Call(stackRegister, start, end).Handle())
}

// StackDeregister forgets a stack registered with StackRegister.
func (c *Client) StackDeregister(id StackID) {
	c.d.Call(stackDeregister, request.Word(id))
}

// StackChange moves a registered stack to [start, end).
func (c *Client) StackChange(id StackID, start, end uintptr) {
	c.d.Call(stackChange, request.Word(id), start, end)
}

// DisableErrorReporting stops error reporting for the calling thread. Calls
// nest and are undone by EnableErrorReporting.
func (c *Client) DisableErrorReporting() {
	c.d.Call(changeErrDisablement, request.Signed(1))
}

// EnableErrorReporting undoes one DisableErrorReporting.
func (c *Client) EnableErrorReporting() {
	c.d.Call(changeErrDisablement, request.Signed(-1))
}

// MapIPToSrcloc describes the code address pc as "file:line" or similar.
// The result is empty when not running under Valgrind.
func (c *Client) MapIPToSrcloc(pc uintptr) string {
	buf := make([]byte, srclocSize)
	c.d.CallPinned(mapIPToSrcloc, request.Pins(unsafe.Pointer(&buf[0])), pc, request.Addr(unsafe.Pointer(&buf[0])))

	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// RunningOnValgrind calls Client.RunningOnValgrind on the native client.
func RunningOnValgrind() uint { return std.RunningOnValgrind() }

// CountErrors calls Client.CountErrors on the native client.
func CountErrors() uint { return std.CountErrors() }

// DiscardTranslations calls Client.DiscardTranslations on the native client.
func DiscardTranslations(addr unsafe.Pointer, n uintptr) { std.DiscardTranslations(addr, n) }

// MonitorCommand calls Client.MonitorCommand on the native client.
func MonitorCommand(cmd string) { std.MonitorCommand(cmd) }

// StackRegister calls Client.StackRegister on the native client.
func StackRegister(start, end uintptr) StackID { return std.StackRegister(start, end) }

// StackDeregister calls Client.StackDeregister on the native client.
func StackDeregister(id StackID) { std.StackDeregister(id) }

// StackChange calls Client.StackChange on the native client.
func StackChange(id StackID, start, end uintptr) { std.StackChange(id, start, end) }

// DisableErrorReporting calls Client.DisableErrorReporting on the native client.
func DisableErrorReporting() { std.DisableErrorReporting() }

// EnableErrorReporting calls Client.EnableErrorReporting on the native client.
func EnableErrorReporting() { std.EnableErrorReporting() }

// MapIPToSrcloc calls Client.MapIPToSrcloc on the native client.
func MapIPToSrcloc(pc uintptr) string { return std.MapIPToSrcloc(pc) }
