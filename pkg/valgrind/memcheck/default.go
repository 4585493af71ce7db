package memcheck

import "unsafe"

// The functions below call the Client method of the same name on the native
// client.

func MakeMemNoAccess(addr unsafe.Pointer, n uintptr) { std.MakeMemNoAccess(addr, n) }
func MakeMemUndefined(addr unsafe.Pointer, n uintptr) { std.MakeMemUndefined(addr, n) }
func MakeMemDefined(addr unsafe.Pointer, n uintptr) { std.MakeMemDefined(addr, n) }
func CreateBlock(addr unsafe.Pointer, n uintptr, desc string) BlockID {
	return std.CreateBlock(addr, n, desc)
}
func Discard(id BlockID) bool { return std.Discard(id) }

func MakeMemDefinedIfAddressable(addr unsafe.Pointer, n uintptr) {
	std.MakeMemDefinedIfAddressable(addr, n)
}

func CheckMemIsAddressable(addr unsafe.Pointer, n uintptr) (uintptr, bool) {
	return std.CheckMemIsAddressable(addr, n)
}

func CheckMemIsDefined(addr unsafe.Pointer, n uintptr) (uintptr, bool) {
	return std.CheckMemIsDefined(addr, n)
}

func EnableAddrErrorReportingInRange(addr unsafe.Pointer, n uintptr) {
	std.EnableAddrErrorReportingInRange(addr, n)
}

func DisableAddrErrorReportingInRange(addr unsafe.Pointer, n uintptr) {
	std.DisableAddrErrorReportingInRange(addr, n)
}

func DoLeakCheck() { std.DoLeakCheck() }
func DoAddedLeakCheck() { std.DoAddedLeakCheck() }
func DoChangedLeakCheck() { std.DoChangedLeakCheck() }
func DoQuickLeakCheck() { std.DoQuickLeakCheck() }
func CountLeaks() LeakCount { return std.CountLeaks() }
func CountLeakBlocks() LeakCount { return std.CountLeakBlocks() }

func GetVBits(addr unsafe.Pointer, bits []byte) VBitsStatus { return std.GetVBits(addr, bits) }
func SetVBits(addr unsafe.Pointer, bits []byte) VBitsStatus { return std.SetVBits(addr, bits) }

func MallocLikeBlock(addr unsafe.Pointer, size, redzone uintptr, zeroed bool) {
	std.MallocLikeBlock(addr, size, redzone, zeroed)
}

func ResizeInPlaceBlock(addr unsafe.Pointer, oldSize, newSize, redzone uintptr) {
	std.ResizeInPlaceBlock(addr, oldSize, newSize, redzone)
}

func FreeLikeBlock(addr unsafe.Pointer, redzone uintptr) { std.FreeLikeBlock(addr, redzone) }

func CreateMempool(pool Pool, redzone uintptr, zeroed bool) { std.CreateMempool(pool, redzone, zeroed) }
func DestroyMempool(pool Pool) { std.DestroyMempool(pool) }
func MempoolAlloc(pool Pool, addr unsafe.Pointer, size uintptr) {
	std.MempoolAlloc(pool, addr, size)
}
func MempoolFree(pool Pool, addr unsafe.Pointer) { std.MempoolFree(pool, addr) }
func MempoolTrim(pool Pool, addr unsafe.Pointer, size uintptr) {
	std.MempoolTrim(pool, addr, size)
}
func MoveMempool(from, to Pool) { std.MoveMempool(from, to) }
func MempoolChange(pool Pool, from, to unsafe.Pointer, size uintptr) {
	std.MempoolChange(pool, from, to, size)
}
func MempoolExists(pool Pool) bool { return std.MempoolExists(pool) }
