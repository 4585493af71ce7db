package memcheck

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

func (c *Client) region(e *request.Entry, addr unsafe.Pointer, n uintptr) request.Result {
	return c.d.CallPinned(e, request.Pins(addr), request.Addr(addr), n)
}

// MakeMemNoAccess marks [addr, addr+n) as unaddressable. Any access is
// reported as an error.
func (c *Client) MakeMemNoAccess(addr unsafe.Pointer, n uintptr) {
	c.region(makeMemNoAccess, addr, n)
}

// MakeMemUndefined marks [addr, addr+n) as addressable but uninitialized.
func (c *Client) MakeMemUndefined(addr unsafe.Pointer, n uintptr) {
	c.region(makeMemUndefined, addr, n)
}

// MakeMemDefined marks [addr, addr+n) as addressable and initialized.
func (c *Client) MakeMemDefined(addr unsafe.Pointer, n uintptr) {
	c.region(makeMemDefined, addr, n)
}

// MakeMemDefinedIfAddressable marks the addressable bytes of [addr, addr+n)
// as initialized and leaves unaddressable ones alone.
func (c *Client) MakeMemDefinedIfAddressable(addr unsafe.Pointer, n uintptr) {
	c.region(makeMemDefinedIfAddressable, addr, n)
}

// CheckMemIsAddressable reports the first unaddressable byte of
// [addr, addr+n). ok is false when the whole range is addressable or when not
// running under Memcheck.
func (c *Client) CheckMemIsAddressable(addr unsafe.Pointer, n uintptr) (bad uintptr, ok bool) {
	return c.region(checkMemIsAddressable, addr, n).OptionalAddress()
}

// CheckMemIsDefined reports the first byte of [addr, addr+n) that is
// unaddressable or uninitialized. Memcheck also reports it as an error.
func (c *Client) CheckMemIsDefined(addr unsafe.Pointer, n uintptr) (bad uintptr, ok bool) {
	return c.region(checkMemIsDefined, addr, n).OptionalAddress()
}

// EnableAddrErrorReportingInRange re-enables addressability errors for
// [addr, addr+n) after DisableAddrErrorReportingInRange.
func (c *Client) EnableAddrErrorReportingInRange(addr unsafe.Pointer, n uintptr) {
	c.region(enableAddrErrorReporting, addr, n)
}

// DisableAddrErrorReportingInRange suppresses addressability errors for
// [addr, addr+n).
func (c *Client) DisableAddrErrorReportingInRange(addr unsafe.Pointer, n uintptr) {
	c.region(disableAddrErrorReporting, addr, n)
}

// BlockID is a block description handle from CreateBlock.
type BlockID uintptr

// CreateBlock attaches desc to [addr, addr+n) so that errors inside the range
// name it.
func (c *Client) CreateBlock(addr unsafe.Pointer, n uintptr, desc string) BlockID {
	s := request.CString(desc)
	r := c.d.CallPinned(createBlock, request.Pins(addr, unsafe.Pointer(&s[0])),
		request.Addr(addr), n, request.Addr(unsafe.Pointer(&s[0])))
	return BlockID(r.Handle())
}

// Discard drops a block description. It reports whether Memcheck did not
// know the handle.
func (c *Client) Discard(id BlockID) (unknown bool) {
	return c.d.Call(discard, 0, request.Word(id)).Bool()
}

// MakeNoAccess marks *obj as unaddressable.
func MakeNoAccess[T any](obj *T) {
	std.MakeMemNoAccess(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// MakeUndefined marks *obj as uninitialized.
func MakeUndefined[T any](obj *T) {
	std.MakeMemUndefined(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// MakeDefined marks *obj as initialized.
func MakeDefined[T any](obj *T) {
	std.MakeMemDefined(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// MakeDefinedIfAddressable marks the addressable bytes of *obj as
// initialized.
func MakeDefinedIfAddressable[T any](obj *T) {
	std.MakeMemDefinedIfAddressable(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// CheckIsAddressable is CheckMemIsAddressable over *obj.
func CheckIsAddressable[T any](obj *T) (uintptr, bool) {
	return std.CheckMemIsAddressable(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// CheckIsDefined is CheckMemIsDefined over *obj.
func CheckIsDefined[T any](obj *T) (uintptr, bool) {
	return std.CheckMemIsDefined(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}
