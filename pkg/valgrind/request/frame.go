package request

import (
	"fmt"
	"unsafe"
)

// Word is a single machine word exchanged with the supervisor.
type Word = uintptr

// MaxArgs is the number of argument slots in a frame.
const MaxArgs = 5

// FrameWords is the size of a frame in words: the code plus MaxArgs.
const FrameWords = 1 + MaxArgs

// Frame is the block of words whose address is handed to the supervisor.
// Slot 0 holds the request code, slots 1..5 the arguments. Unused argument
// slots are zero.
type Frame [FrameWords]Word

// NewFrame builds a frame for code with the given arguments, zero padding the
// remaining slots. It panics if more than MaxArgs arguments are given.
func NewFrame(code Code, args ...Word) Frame {
	if len(args) > MaxArgs {
		panic(fmt.Sprintf("request: %d arguments for code %s, at most %d fit in a frame", len(args), code, MaxArgs))
	}

	var f Frame
	f[0] = Word(code)
	copy(f[1:], args)
	return f
}

// Code returns the request code in slot 0.
func (f Frame) Code() Code {
	return Code(f[0])
}

// Arg returns argument i, counting from 1 like the C macros do.
func (f Frame) Arg(i int) Word {
	if i < 1 || i > MaxArgs {
		panic(fmt.Sprintf("request: argument index %d out of range", i))
	}
	return f[i]
}

// Args returns the five argument slots.
func (f Frame) Args() [MaxArgs]Word {
	var a [MaxArgs]Word
	copy(a[:], f[1:])
	return a
}

// Addr converts a pointer to the word that carries it in a frame. The caller
// keeps the referenced memory valid for the duration of the request, usually
// by passing it to Dispatcher.CallPinned as well.
func Addr(p unsafe.Pointer) Word {
	return Word(p)
}

// Bool encodes a boolean argument as 0 or 1.
func Bool(b bool) Word {
	if b {
		return 1
	}
	return 0
}

// Signed encodes a signed argument in two's complement, as the C macros do
// when they pass a negative int through an unsigned word.
func Signed(v int) Word {
	return Word(v)
}
