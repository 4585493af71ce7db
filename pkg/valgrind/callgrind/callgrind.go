// Package callgrind controls profile collection in Callgrind.
//
// See /usr/include/valgrind/callgrind.h. Combine StartInstrumentation with
// `valgrind --tool=callgrind --instr-atstart=no` to profile one phase of a
// program. Without Valgrind every function does nothing.
package callgrind

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

var (
	dumpStats = request.Register(&request.Entry{
		Name: "DUMP_STATS", Tool: request.Callgrind, Code: request.CallgrindDumpStats,
	})
	zeroStats = request.Register(&request.Entry{
		Name: "ZERO_STATS", Tool: request.Callgrind, Code: request.CallgrindZeroStats,
	})
	toggleCollect = request.Register(&request.Entry{
		Name: "TOGGLE_COLLECT", Tool: request.Callgrind, Code: request.CallgrindToggleCollect,
	})
	dumpStatsAt = request.Register(&request.Entry{
		Name: "DUMP_STATS_AT", Tool: request.Callgrind, Code: request.CallgrindDumpStatsAt,
		Args: []request.ArgKind{request.ArgString},
	})
	startInstrumentation = request.Register(&request.Entry{
		Name: "START_INSTRUMENTATION", Tool: request.Callgrind, Code: request.CallgrindStartInstrumentation,
	})
	stopInstrumentation = request.Register(&request.Entry{
		Name: "STOP_INSTRUMENTATION", Tool: request.Callgrind, Code: request.CallgrindStopInstrumentation,
	})
)

// Client issues Callgrind requests through a dispatcher.
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

// DumpStats writes the profile collected so far to a new file and zeroes the
// counters.
func (c *Client) DumpStats() {
	c.d.Call(dumpStats)
}

// DumpStatsAt is DumpStats with pos recorded as the reason for the dump.
func (c *Client) DumpStatsAt(pos string) {
	s := request.CString(pos)
	c.d.CallPinned(dumpStatsAt, request.Pins(unsafe.Pointer(&s[0])), request.Addr(unsafe.Pointer(&s[0])))
}

// ZeroStats resets the counters without dumping.
func (c *Client) ZeroStats() {
	c.d.Call(zeroStats)
}

// ToggleCollect flips event collection on or off. Instrumentation stays on.
func (c *Client) ToggleCollect() {
	c.d.Call(toggleCollect)
}

// StartInstrumentation turns on full instrumentation if it is off.
func (c *Client) StartInstrumentation() {
	c.d.Call(startInstrumentation)
}

// StopInstrumentation turns instrumentation off and flushes the translation
// cache. Nothing is counted until StartInstrumentation.
func (c *Client) StopInstrumentation() {
	c.d.Call(stopInstrumentation)
}

// Package level forms issue through the native client.

func DumpStats() { std.DumpStats() }
func DumpStatsAt(pos string) { std.DumpStatsAt(pos) }
func ZeroStats() { std.ZeroStats() }
func ToggleCollect() { std.ToggleCollect() }
func StartInstrumentation() { std.StartInstrumentation() }
func StopInstrumentation() { std.StopInstrumentation() }
