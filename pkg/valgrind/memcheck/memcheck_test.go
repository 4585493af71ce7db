package memcheck

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/vgreq/internal/testutil"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

func newRecorded() (*Client, *request.Recorder) {
	rec := request.NewRecorder()
	return New(request.NewDispatcher(rec)), rec
}

func TestClient_RegionFrames(t *testing.T) {
	buf := make([]byte, 24)
	p := unsafe.Pointer(&buf[0])
	addr := request.Addr(p)

	tests := []struct {
		name string
		call func(c *Client)
		code request.Code
	}{
		{"noaccess", func(c *Client) { c.MakeMemNoAccess(p, 24) }, request.MemcheckMakeMemNoAccess},
		{"undefined", func(c *Client) { c.MakeMemUndefined(p, 24) }, request.MemcheckMakeMemUndefined},
		{"defined", func(c *Client) { c.MakeMemDefined(p, 24) }, request.MemcheckMakeMemDefined},
		{"defined if addressable", func(c *Client) { c.MakeMemDefinedIfAddressable(p, 24) }, request.MemcheckMakeMemDefinedIfAddressable},
		{"check addressable", func(c *Client) { c.CheckMemIsAddressable(p, 24) }, request.MemcheckCheckMemIsAddressable},
		{"check defined", func(c *Client) { c.CheckMemIsDefined(p, 24) }, request.MemcheckCheckMemIsDefined},
		{"enable addr errors", func(c *Client) { c.EnableAddrErrorReportingInRange(p, 24) }, request.MemcheckEnableAddrErrorReportingInRange},
		{"disable addr errors", func(c *Client) { c.DisableAddrErrorReportingInRange(p, 24) }, request.MemcheckDisableAddrErrorReportingInRange},
		{"freelike", func(c *Client) { c.FreeLikeBlock(p, 24) }, request.CoreFreeLikeBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRecorded()
			tt.call(c)

			assert.Equal(t, request.NewFrame(tt.code, addr, 24), rec.Last().Frame)
		})
	}
}

func TestGenericForms_UseValueSize(t *testing.T) {
	type header struct {
		A uint64
		B uint32
		C [12]byte
	}
	h := &header{}

	rec := request.NewRecorder()
	prev := std
	std = New(request.NewDispatcher(rec))
	t.Cleanup(func() { std = prev })

	MakeNoAccess(h)
	MakeUndefined(h)
	MakeDefined(h)
	MakeDefinedIfAddressable(h)
	CheckIsAddressable(h)
	CheckIsDefined(h)

	calls := rec.Calls()
	require.Len(t, calls, 6)
	for _, call := range calls {
		assert.Equal(t, request.Addr(unsafe.Pointer(h)), call.Frame.Arg(1))
		assert.Equal(t, unsafe.Sizeof(*h), call.Frame.Arg(2))
		assert.Zero(t, call.Frame.Arg(3))
	}
}

func TestCheckMemIsAddressable_OptionalResult(t *testing.T) {
	c, rec := newRecorded()
	x := new([16]byte)

	_, ok := c.CheckMemIsAddressable(unsafe.Pointer(x), 16)
	assert.False(t, ok, "zero result means the whole range is addressable")

	rec.Respond = func(def request.Word, f request.Frame) request.Word {
		return f.Arg(1) + 3
	}
	bad, ok := c.CheckMemIsAddressable(unsafe.Pointer(x), 16)
	assert.True(t, ok)
	assert.Equal(t, uintptr(unsafe.Pointer(x))+3, bad)
}

func TestLeakCheckVariants(t *testing.T) {
	tests := []struct {
		name        string
		call        func(c *Client)
		mode, delta request.Word
	}{
		{"full", (*Client).DoLeakCheck, 0, 0},
		{"added", (*Client).DoAddedLeakCheck, 0, 1},
		{"changed", (*Client).DoChangedLeakCheck, 0, 2},
		{"quick", (*Client).DoQuickLeakCheck, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRecorded()
			tt.call(c)

			want := request.NewFrame(request.MemcheckDoLeakCheck, tt.mode, tt.delta)
			assert.Equal(t, want, rec.Last().Frame)
		})
	}
}

func TestCountLeaks_FillsFourCounters(t *testing.T) {
	for _, tc := range []struct {
		name string
		code request.Code
		call func(c *Client) LeakCount
	}{
		{"bytes", request.MemcheckCountLeaks, (*Client).CountLeaks},
		{"blocks", request.MemcheckCountLeakBlocks, (*Client).CountLeakBlocks},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newRecorded()
			assert.Equal(t, LeakCount{}, tc.call(c), "unsupervised counts are zero")

			rec.Respond = func(def request.Word, f request.Frame) request.Word {
				for i, v := range []uint{42, 7, 1024, 3} {
					*(*uint)(unsafe.Pointer(f.Arg(i + 1))) = v //nolint:govet
				}
				return def
			}
			got := tc.call(c)

			assert.Equal(t, LeakCount{Leaked: 42, Dubious: 7, Reachable: 1024, Suppressed: 3}, got)
			assert.Equal(t, tc.code, rec.Last().Frame.Code())
			assert.Zero(t, rec.Last().Frame.Arg(5))
		})
	}
}

func TestHeapFrames(t *testing.T) {
	buf := make([]byte, 64)
	p := unsafe.Pointer(&buf[0])
	q := unsafe.Pointer(&buf[32])
	addr, addr2 := request.Addr(p), request.Addr(q)
	const pool = Pool(0xcafe0000)

	tests := []struct {
		name string
		call func(c *Client)
		want request.Frame
	}{
		{"malloclike zeroed", func(c *Client) { c.MallocLikeBlock(p, 48, 8, true) },
			request.NewFrame(request.CoreMallocLikeBlock, addr, 48, 8, 1)},
		{"malloclike dirty", func(c *Client) { c.MallocLikeBlock(p, 48, 8, false) },
			request.NewFrame(request.CoreMallocLikeBlock, addr, 48, 8, 0)},
		{"resize", func(c *Client) { c.ResizeInPlaceBlock(p, 48, 56, 8) },
			request.NewFrame(request.CoreResizeInPlaceBlock, addr, 48, 56, 8)},
		{"create pool", func(c *Client) { c.CreateMempool(pool, 16, true) },
			request.NewFrame(request.CoreCreateMempool, 0xcafe0000, 16, 1)},
		{"destroy pool", func(c *Client) { c.DestroyMempool(pool) },
			request.NewFrame(request.CoreDestroyMempool, 0xcafe0000)},
		{"pool alloc", func(c *Client) { c.MempoolAlloc(pool, p, 32) },
			request.NewFrame(request.CoreMempoolAlloc, 0xcafe0000, addr, 32)},
		{"pool free", func(c *Client) { c.MempoolFree(pool, p) },
			request.NewFrame(request.CoreMempoolFree, 0xcafe0000, addr)},
		{"pool trim", func(c *Client) { c.MempoolTrim(pool, p, 0) },
			request.NewFrame(request.CoreMempoolTrim, 0xcafe0000, addr, 0)},
		{"move pool", func(c *Client) { c.MoveMempool(pool, pool+8) },
			request.NewFrame(request.CoreMoveMempool, 0xcafe0000, 0xcafe0008)},
		{"pool change", func(c *Client) { c.MempoolChange(pool, p, q, 16) },
			request.NewFrame(request.CoreMempoolChange, 0xcafe0000, addr, addr2, 16)},
		{"pool exists", func(c *Client) { c.MempoolExists(pool) },
			request.NewFrame(request.CoreMempoolExists, 0xcafe0000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRecorded()
			tt.call(c)
			assert.Equal(t, tt.want, rec.Last().Frame)
		})
	}
}

func TestMempoolExists(t *testing.T) {
	c, rec := newRecorded()
	assert.False(t, c.MempoolExists(1))

	rec.Respond = func(request.Word, request.Frame) request.Word { return 1 }
	assert.True(t, c.MempoolExists(1))
}

func TestCreateBlock(t *testing.T) {
	c, rec := newRecorded()
	buf := make([]byte, 16)

	var desc string
	rec.Respond = func(def request.Word, f request.Frame) request.Word {
		if f.Code() != request.MemcheckCreateBlock {
			return def
		}
		s := unsafe.Slice((*byte)(unsafe.Pointer(f.Arg(3))), len("ring buffer")+1) //nolint:govet
		desc = string(s)
		return 5
	}

	id := c.CreateBlock(unsafe.Pointer(&buf[0]), 16, "ring buffer")
	assert.Equal(t, BlockID(5), id)
	assert.Equal(t, "ring buffer\x00", desc)
	assert.Equal(t, request.Word(16), rec.Last().Frame.Arg(2))

	assert.False(t, c.Discard(id))
	assert.Equal(t, request.NewFrame(request.MemcheckDiscard, 0, 5), rec.Last().Frame)
}

func TestVBits(t *testing.T) {
	c, rec := newRecorded()
	data := make([]byte, 8)
	bits := make([]byte, 8)

	assert.Equal(t, VBitsNotRunning, c.GetVBits(unsafe.Pointer(&data[0]), bits))
	assert.Equal(t, request.Word(8), rec.Last().Frame.Arg(3))

	rec.Respond = func(def request.Word, f request.Frame) request.Word {
		if f.Code() == request.MemcheckGetVBits {
			out := unsafe.Slice((*byte)(unsafe.Pointer(f.Arg(2))), f.Arg(3)) //nolint:govet
			out[0] = 0xff
		}
		return request.Word(VBitsOK)
	}
	assert.Equal(t, VBitsOK, c.GetVBits(unsafe.Pointer(&data[0]), bits))
	assert.Equal(t, byte(0xff), bits[0])
	assert.Equal(t, VBitsOK, c.SetVBits(unsafe.Pointer(&data[0]), bits))
	assert.Equal(t, request.MemcheckSetVBits, rec.Last().Frame.Code())

	n := rec.Len()
	assert.Equal(t, VBitsNotRunning, c.GetVBits(unsafe.Pointer(&data[0]), nil))
	assert.Equal(t, n, rec.Len(), "empty bits must not issue a request")

	assert.Equal(t, "unaddressable", VBitsUnaddressable.String())
}

func TestPackageFunctions_Unsupervised(t *testing.T) {
	testutil.SkipUnderValgrind(t)

	x := new([32]byte)
	for i := range x {
		x[i] = byte(i)
	}
	want := *x
	p := unsafe.Pointer(x)

	MakeMemNoAccess(p, 32)
	MakeMemUndefined(p, 32)
	MakeMemDefined(p, 32)
	MakeMemDefinedIfAddressable(p, 32)
	EnableAddrErrorReportingInRange(p, 32)
	DisableAddrErrorReportingInRange(p, 32)
	_, bad := CheckMemIsAddressable(p, 32)
	assert.False(t, bad)
	_, bad = CheckMemIsDefined(p, 32)
	assert.False(t, bad)
	_, bad = CheckIsDefined(x)
	assert.False(t, bad)

	DoLeakCheck()
	DoAddedLeakCheck()
	DoChangedLeakCheck()
	DoQuickLeakCheck()
	assert.Equal(t, LeakCount{}, CountLeaks())
	assert.Equal(t, LeakCount{}, CountLeakBlocks())

	assert.Zero(t, CreateBlock(p, 32, "x"))
	assert.False(t, Discard(1))
	assert.Equal(t, VBitsNotRunning, GetVBits(p, make([]byte, 4)))
	assert.Equal(t, VBitsNotRunning, SetVBits(p, make([]byte, 4)))

	MallocLikeBlock(p, 16, 0, false)
	ResizeInPlaceBlock(p, 16, 24, 0)
	FreeLikeBlock(p, 0)
	CreateMempool(1, 0, false)
	MempoolAlloc(1, p, 8)
	MempoolChange(1, p, p, 8)
	MempoolTrim(1, p, 8)
	MempoolFree(1, p)
	MoveMempool(1, 2)
	assert.False(t, MempoolExists(2))
	DestroyMempool(2)

	assert.Equal(t, want, *x, "requests must not touch the marked memory")
}
