// Package drd issues client requests to DRD, Valgrind's data race detector.
//
// See /usr/include/valgrind/drd.h and chapter 8.2.5 of the Valgrind manual.
// DRD tracks OS threads, not goroutines: wrap code that relies on thread
// identity or on ignore ranges in runtime.LockOSThread.
package drd

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

var addrSize = []request.ArgKind{request.ArgAddr, request.ArgSize}

var (
	// DRD answers the Helgrind code, so the same request works under both.
	cleanMemory = request.Register(&request.Entry{
		Name: "CLEAN_MEMORY", Tool: request.DRD, Code: request.DRDCleanMemory,
		Args: addrSize,
	})
	valgrindThreadID = request.Register(&request.Entry{
		Name: "GET_VALGRIND_THREAD_ID", Tool: request.DRD, Code: request.DRDGetValgrindThreadID,
		Result: request.ResultUint32,
	})
	drdThreadID = request.Register(&request.Entry{
		Name: "GET_DRD_THREAD_ID", Tool: request.DRD, Code: request.DRDGetDRDThreadID,
		Result: request.ResultUint32,
	})
	startSuppression = request.Register(&request.Entry{
		Name: "START_SUPPRESSION", Tool: request.DRD, Code: request.DRDStartSuppression,
		Args: addrSize,
	})
	finishSuppression = request.Register(&request.Entry{
		Name: "FINISH_SUPPRESSION", Tool: request.DRD, Code: request.DRDFinishSuppression,
		Args: addrSize,
	})
	startTraceAddr = request.Register(&request.Entry{
		Name: "START_TRACE_ADDR", Tool: request.DRD, Code: request.DRDStartTraceAddr,
		Args: addrSize,
	})
	stopTraceAddr = request.Register(&request.Entry{
		Name: "STOP_TRACE_ADDR", Tool: request.DRD, Code: request.DRDStopTraceAddr,
		Args: addrSize,
	})
	recordLoads = request.Register(&request.Entry{
		Name: "RECORD_LOADS", Tool: request.DRD, Code: request.DRDRecordLoads,
		Args: []request.ArgKind{request.ArgBool},
	})
	recordStores = request.Register(&request.Entry{
		Name: "RECORD_STORES", Tool: request.DRD, Code: request.DRDRecordStores,
		Args: []request.ArgKind{request.ArgBool},
	})
	setThreadName = request.Register(&request.Entry{
		Name: "SET_THREAD_NAME", Tool: request.DRD, Code: request.DRDSetThreadName,
		Args: []request.ArgKind{request.ArgString},
	})
)

// Client issues DRD requests through a dispatcher.
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

func (c *Client) region(e *request.Entry, addr unsafe.Pointer, n uintptr) {
	c.d.CallPinned(e, request.Pins(addr), request.Addr(addr), n)
}

// CleanMemory makes DRD forget the access history of [addr, addr+n).
func (c *Client) CleanMemory(addr unsafe.Pointer, n uintptr) {
	c.region(cleanMemory, addr, n)
}

// ValgrindThreadID returns the Valgrind thread id of the calling OS thread,
// or 0 when DRD is not running.
func (c *Client) ValgrindThreadID() uint32 {
	return c.d.Call(valgrindThreadID).Uint32()
}

// DRDThreadID returns the DRD thread id of the calling OS thread, or 0 when
// DRD is not running.
func (c *Client) DRDThreadID() uint32 {
	return c.d.Call(drdThreadID).Uint32()
}

// AnnotateBenignRaceSized tells DRD to ignore races on [addr, addr+n).
func (c *Client) AnnotateBenignRaceSized(addr unsafe.Pointer, n uintptr) {
	c.region(startSuppression, addr, n)
}

// StopIgnoringSized undoes AnnotateBenignRaceSized.
func (c *Client) StopIgnoringSized(addr unsafe.Pointer, n uintptr) {
	c.region(finishSuppression, addr, n)
}

// TraceSized makes DRD report every access to [addr, addr+n).
func (c *Client) TraceSized(addr unsafe.Pointer, n uintptr) {
	c.region(startTraceAddr, addr, n)
}

// StopTracingSized undoes TraceSized.
func (c *Client) StopTracingSized(addr unsafe.Pointer, n uintptr) {
	c.region(stopTraceAddr, addr, n)
}

// IgnoreReadsBegin stops race detection on loads by the calling thread.
func (c *Client) IgnoreReadsBegin() {
	c.d.Call(recordLoads, request.Bool(false))
}

// IgnoreReadsEnd resumes race detection on loads.
func (c *Client) IgnoreReadsEnd() {
	c.d.Call(recordLoads, request.Bool(true))
}

// IgnoreWritesBegin stops race detection on stores by the calling thread.
func (c *Client) IgnoreWritesBegin() {
	c.d.Call(recordStores, request.Bool(false))
}

// IgnoreWritesEnd resumes race detection on stores.
func (c *Client) IgnoreWritesEnd() {
	c.d.Call(recordStores, request.Bool(true))
}

// AnnotateThreadName names the calling thread in DRD's reports.
func (c *Client) AnnotateThreadName(name string) {
	s := request.CString(name)
	c.d.CallPinned(setThreadName, request.Pins(unsafe.Pointer(&s[0])), request.Addr(unsafe.Pointer(&s[0])))
}
