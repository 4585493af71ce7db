// Package request implements the Valgrind client request primitive and the
// declarative table that the tool packages build on.
//
// A client request is six machine words (a request code followed by five
// arguments) whose address is placed in a fixed register before a magic
// instruction sequence runs. The sequence rotates (R/E)DI by a nonce that sums
// to a multiple of the register width and then exchanges (R/E)BX with itself,
// which leaves every register unchanged on real hardware. When the process is
// being interpreted by Valgrind, the interpreter recognizes the byte pattern
// and writes its answer into the result register instead.
//
//	Target  Frame  Result  Rotates       Exchange
//	386     EAX    EDX     3,13,29,19    xchgl %ebx,%ebx
//	amd64   RAX    RDX     3,13,61,51    xchgq %rbx,%rbx
//
// The sequence lives in an assembly routine selected at build time for
// 386/amd64 on linux, darwin and freebsd. Other targets fail to compile unless
// the valgrind_noop build tag is set, in which case every request returns its
// default.
//
// Requests never fail. Without a supervisor they return the default word
// (zero for every wrapper in this module); problems Valgrind detects are
// reported through Valgrind's own output and counters such as
// COUNT_ERRORS.
//
// Basic usage goes through the tool packages:
//
//	import (
//	    "github.com/coral-mesh/vgreq/pkg/valgrind"
//	    "github.com/coral-mesh/vgreq/pkg/valgrind/memcheck"
//	)
//
//	if valgrind.RunningOnValgrind() > 0 {
//	    memcheck.MakeNoAccess(&guard)
//	}
//
// Tests that need to observe frames can build clients on a Recorder:
//
//	rec := request.NewRecorder()
//	mc := memcheck.New(request.NewDispatcher(rec))
//	mc.DoLeakCheck()
//	frame := rec.Last().Frame
package request
