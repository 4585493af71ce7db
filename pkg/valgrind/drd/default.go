package drd

import "unsafe"

func CleanMemory(addr unsafe.Pointer, n uintptr) { std.CleanMemory(addr, n) }
func ValgrindThreadID() uint32 { return std.ValgrindThreadID() }
func DRDThreadID() uint32 { return std.DRDThreadID() }
func AnnotateBenignRaceSized(addr unsafe.Pointer, n uintptr) { std.AnnotateBenignRaceSized(addr, n) }
func StopIgnoringSized(addr unsafe.Pointer, n uintptr) { std.StopIgnoringSized(addr, n) }
func TraceSized(addr unsafe.Pointer, n uintptr) { std.TraceSized(addr, n) }
func StopTracingSized(addr unsafe.Pointer, n uintptr) { std.StopTracingSized(addr, n) }
func IgnoreReadsBegin() { std.IgnoreReadsBegin() }
func IgnoreReadsEnd() { std.IgnoreReadsEnd() }
func IgnoreWritesBegin() { std.IgnoreWritesBegin() }
func IgnoreWritesEnd() { std.IgnoreWritesEnd() }
func AnnotateThreadName(name string) { std.AnnotateThreadName(name) }

// Clean is CleanMemory over *obj.
func Clean[T any](obj *T) { std.CleanMemory(unsafe.Pointer(obj), unsafe.Sizeof(*obj)) }

// AnnotateBenignRace ignores races on *obj.
func AnnotateBenignRace[T any](obj *T) {
	std.AnnotateBenignRaceSized(unsafe.Pointer(obj), unsafe.Sizeof(*obj))
}

// StopIgnoring undoes AnnotateBenignRace.
func StopIgnoring[T any](obj *T) { std.StopIgnoringSized(unsafe.Pointer(obj), unsafe.Sizeof(*obj)) }

// Trace reports every access to *obj.
func Trace[T any](obj *T) { std.TraceSized(unsafe.Pointer(obj), unsafe.Sizeof(*obj)) }

// StopTracing undoes Trace.
func StopTracing[T any](obj *T) { std.StopTracingSized(unsafe.Pointer(obj), unsafe.Sizeof(*obj)) }
