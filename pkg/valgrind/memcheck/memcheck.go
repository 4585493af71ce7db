// Package memcheck issues client requests to Memcheck, Valgrind's memory
// error detector.
//
// See /usr/include/valgrind/memcheck.h and section 4.7 of the Valgrind manual
// (https://valgrind.org/docs/manual/mc-manual.html#mc-manual.clientreqs).
//
// Functions taking an unsafe.Pointer hand that address to Memcheck, which
// reads or re-marks the memory behind it. The caller guarantees the range is
// valid for the duration of the call. The generic forms (MakeNoAccess,
// CheckIsDefined, ...) derive the length from the size of the pointed-to
// value.
//
// Without Valgrind every request is a no-op returning the zero value.
package memcheck

import "github.com/coral-mesh/vgreq/pkg/valgrind/request"

// Client issues Memcheck requests through a dispatcher.
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

// Default returns the client backed by the native trap.
func Default() *Client {
	return std
}

var (
	addrSize = []request.ArgKind{request.ArgAddr, request.ArgSize}

	makeMemNoAccess = request.Register(&request.Entry{
		Name: "MAKE_MEM_NOACCESS", Tool: request.Memcheck, Code: request.MemcheckMakeMemNoAccess,
		Args: addrSize, Verified: true,
	})
	makeMemUndefined = request.Register(&request.Entry{
		Name: "MAKE_MEM_UNDEFINED", Tool: request.Memcheck, Code: request.MemcheckMakeMemUndefined,
		Args: addrSize, Verified: true,
	})
	makeMemDefined = request.Register(&request.Entry{
		Name: "MAKE_MEM_DEFINED", Tool: request.Memcheck, Code: request.MemcheckMakeMemDefined,
		Args: addrSize, Verified: true,
	})
	discard = request.Register(&request.Entry{
		Name: "DISCARD", Tool: request.Memcheck, Code: request.MemcheckDiscard,
		Args: []request.ArgKind{request.ArgConst, request.ArgWord}, Result: request.ResultBool,
	})
	checkMemIsAddressable = request.Register(&request.Entry{
		Name: "CHECK_MEM_IS_ADDRESSABLE", Tool: request.Memcheck, Code: request.MemcheckCheckMemIsAddressable,
		Args: addrSize, Result: request.ResultOptionalAddress, Verified: true,
	})
	checkMemIsDefined = request.Register(&request.Entry{
		Name: "CHECK_MEM_IS_DEFINED", Tool: request.Memcheck, Code: request.MemcheckCheckMemIsDefined,
		Args: addrSize, Result: request.ResultOptionalAddress, Verified: true,
	})
	doLeakCheck = request.Register(&request.Entry{
		Name: "DO_LEAK_CHECK", Tool: request.Memcheck, Code: request.MemcheckDoLeakCheck,
		Args: []request.ArgKind{request.ArgConst, request.ArgConst}, Verified: true,
	})
	countLeaks = request.Register(&request.Entry{
		Name: "COUNT_LEAKS", Tool: request.Memcheck, Code: request.MemcheckCountLeaks,
		Args:     []request.ArgKind{request.ArgOut, request.ArgOut, request.ArgOut, request.ArgOut},
		Verified: true,
	})
	getVBits = request.Register(&request.Entry{
		Name: "GET_VBITS", Tool: request.Memcheck, Code: request.MemcheckGetVBits,
		Args: []request.ArgKind{request.ArgAddr, request.ArgOut, request.ArgSize}, Result: request.ResultStatus,
	})
	setVBits = request.Register(&request.Entry{
		Name: "SET_VBITS", Tool: request.Memcheck, Code: request.MemcheckSetVBits,
		Args: []request.ArgKind{request.ArgAddr, request.ArgAddr, request.ArgSize}, Result: request.ResultStatus,
	})
	createBlock = request.Register(&request.Entry{
		Name: "CREATE_BLOCK", Tool: request.Memcheck, Code: request.MemcheckCreateBlock,
		Args: []request.ArgKind{request.ArgAddr, request.ArgSize, request.ArgString}, Result: request.ResultHandle,
	})
	makeMemDefinedIfAddressable = request.Register(&request.Entry{
		Name: "MAKE_MEM_DEFINED_IF_ADDRESSABLE", Tool: request.Memcheck, Code: request.MemcheckMakeMemDefinedIfAddressable,
		Args: addrSize,
	})
	countLeakBlocks = request.Register(&request.Entry{
		Name: "COUNT_LEAK_BLOCKS", Tool: request.Memcheck, Code: request.MemcheckCountLeakBlocks,
		Args:     []request.ArgKind{request.ArgOut, request.ArgOut, request.ArgOut, request.ArgOut},
		Verified: true,
	})
	enableAddrErrorReporting = request.Register(&request.Entry{
		Name: "ENABLE_ADDR_ERROR_REPORTING_IN_RANGE", Tool: request.Memcheck, Code: request.MemcheckEnableAddrErrorReportingInRange,
		Args: addrSize,
	})
	disableAddrErrorReporting = request.Register(&request.Entry{
		Name: "DISABLE_ADDR_ERROR_REPORTING_IN_RANGE", Tool: request.Memcheck, Code: request.MemcheckDisableAddrErrorReportingInRange,
		Args: addrSize,
	})
)

// Heap-block and mempool requests are defined by the core but only matter to
// heap tracking tools such as Memcheck.
var (
	mallocLikeBlock = request.Register(&request.Entry{
		Name: "MALLOCLIKE_BLOCK", Tool: request.Core, Code: request.CoreMallocLikeBlock,
		Args: []request.ArgKind{request.ArgAddr, request.ArgSize, request.ArgSize, request.ArgBool},
	})
	freeLikeBlock = request.Register(&request.Entry{
		Name: "FREELIKE_BLOCK", Tool: request.Core, Code: request.CoreFreeLikeBlock,
		Args: []request.ArgKind{request.ArgAddr, request.ArgSize},
	})
	resizeInPlaceBlock = request.Register(&request.Entry{
		Name: "RESIZEINPLACE_BLOCK", Tool: request.Core, Code: request.CoreResizeInPlaceBlock,
		Args: []request.ArgKind{request.ArgAddr, request.ArgSize, request.ArgSize, request.ArgSize},
	})
	createMempool = request.Register(&request.Entry{
		Name: "CREATE_MEMPOOL", Tool: request.Core, Code: request.CoreCreateMempool,
		Args: []request.ArgKind{request.ArgWord, request.ArgSize, request.ArgBool},
	})
	destroyMempool = request.Register(&request.Entry{
		Name: "DESTROY_MEMPOOL", Tool: request.Core, Code: request.CoreDestroyMempool,
		Args: []request.ArgKind{request.ArgWord},
	})
	mempoolAlloc = request.Register(&request.Entry{
		Name: "MEMPOOL_ALLOC", Tool: request.Core, Code: request.CoreMempoolAlloc,
		Args: []request.ArgKind{request.ArgWord, request.ArgAddr, request.ArgSize},
	})
	mempoolFree = request.Register(&request.Entry{
		Name: "MEMPOOL_FREE", Tool: request.Core, Code: request.CoreMempoolFree,
		Args: []request.ArgKind{request.ArgWord, request.ArgAddr},
	})
	mempoolTrim = request.Register(&request.Entry{
		Name: "MEMPOOL_TRIM", Tool: request.Core, Code: request.CoreMempoolTrim,
		Args: []request.ArgKind{request.ArgWord, request.ArgAddr, request.ArgSize},
	})
	moveMempool = request.Register(&request.Entry{
		Name: "MOVE_MEMPOOL", Tool: request.Core, Code: request.CoreMoveMempool,
		Args: []request.ArgKind{request.ArgWord, request.ArgWord},
	})
	mempoolChange = request.Register(&request.Entry{
		Name: "MEMPOOL_CHANGE", Tool: request.Core, Code: request.CoreMempoolChange,
		Args: []request.ArgKind{request.ArgWord, request.ArgAddr, request.ArgAddr, request.ArgSize},
	})
	mempoolExists = request.Register(&request.Entry{
		Name: "MEMPOOL_EXISTS", Tool: request.Core, Code: request.CoreMempoolExists,
		Args: []request.ArgKind{request.ArgWord}, Result: request.ResultBool,
	})
)
