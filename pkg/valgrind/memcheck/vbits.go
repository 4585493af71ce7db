package memcheck

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// VBitsStatus is the outcome of GetVBits and SetVBits.
type VBitsStatus uint

const (
	// VBitsNotRunning means no Memcheck answered.
	VBitsNotRunning VBitsStatus = 0
	// VBitsOK means the bits were copied.
	VBitsOK VBitsStatus = 1
	// VBitsUnaligned is reserved by memcheck.h and no longer returned.
	VBitsUnaligned VBitsStatus = 2
	// VBitsUnaddressable means part of either range was unaddressable.
	VBitsUnaddressable VBitsStatus = 3
)

func (s VBitsStatus) String() string {
	switch s {
	case VBitsNotRunning:
		return "not running"
	case VBitsOK:
		return "ok"
	case VBitsUnaligned:
		return "unaligned"
	case VBitsUnaddressable:
		return "unaddressable"
	default:
		return "unknown"
	}
}

// GetVBits copies the validity bits of len(bits) bytes starting at addr into
// bits. A set bit means the corresponding data bit is undefined. An empty
// bits issues nothing and returns VBitsNotRunning.
func (c *Client) GetVBits(addr unsafe.Pointer, bits []byte) VBitsStatus {
	if len(bits) == 0 {
		return VBitsNotRunning
	}
	out := unsafe.Pointer(&bits[0])
	r := c.d.CallPinned(getVBits, request.Pins(addr, out), request.Addr(addr), request.Addr(out), uintptr(len(bits)))
	return VBitsStatus(r.Status())
}

// SetVBits overwrites the validity bits of len(bits) bytes starting at addr.
func (c *Client) SetVBits(addr unsafe.Pointer, bits []byte) VBitsStatus {
	if len(bits) == 0 {
		return VBitsNotRunning
	}
	in := unsafe.Pointer(&bits[0])
	r := c.d.CallPinned(setVBits, request.Pins(addr, in), request.Addr(addr), request.Addr(in), uintptr(len(bits)))
	return VBitsStatus(r.Status())
}
