package memcheck

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// Leak-check arguments of DO_LEAK_CHECK.
const (
	leakFull  request.Word = 0
	leakQuick request.Word = 1

	leakAll     request.Word = 0
	leakAdded   request.Word = 1
	leakChanged request.Word = 2
)

// LeakCount is the result of CountLeaks or CountLeakBlocks, in bytes or
// blocks respectively, for the most recent leak check.
type LeakCount struct {
	Leaked     uint `json:"leaked"`
	Dubious    uint `json:"dubious"`
	Reachable  uint `json:"reachable"`
	Suppressed uint `json:"suppressed"`
}

func (c *Client) leakCheck(mode, delta request.Word) {
	c.d.Call(doLeakCheck, mode, delta)
}

// DoLeakCheck runs a full leak check now and reports every leak.
func (c *Client) DoLeakCheck() {
	c.leakCheck(leakFull, leakAll)
}

// DoAddedLeakCheck runs a full leak check and reports only leaks that grew
// since the previous check.
func (c *Client) DoAddedLeakCheck() {
	c.leakCheck(leakFull, leakAdded)
}

// DoChangedLeakCheck runs a full leak check and reports leaks that grew or
// shrank since the previous check.
func (c *Client) DoChangedLeakCheck() {
	c.leakCheck(leakFull, leakChanged)
}

// DoQuickLeakCheck runs a leak check that only prints a summary.
func (c *Client) DoQuickLeakCheck() {
	c.leakCheck(leakQuick, leakAll)
}

func (c *Client) count(e *request.Entry) LeakCount {
	var lc LeakCount
	c.d.CallPinned(e, request.Pins(unsafe.Pointer(&lc)),
		request.Addr(unsafe.Pointer(&lc.Leaked)),
		request.Addr(unsafe.Pointer(&lc.Dubious)),
		request.Addr(unsafe.Pointer(&lc.Reachable)),
		request.Addr(unsafe.Pointer(&lc.Suppressed)))
	return lc
}

// CountLeaks returns the byte counts of the most recent leak check.
func (c *Client) CountLeaks() LeakCount {
	return c.count(countLeaks)
}

// CountLeakBlocks returns the block counts of the most recent leak check.
func (c *Client) CountLeakBlocks() LeakCount {
	return c.count(countLeakBlocks)
}
