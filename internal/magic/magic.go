// Package magic recognizes the client-request preamble in machine code.
//
// A client request is four rotates of the frame register whose amounts add
// up to a multiple of the register width, followed by an exchange of the
// base register with itself. Natively the sequence does nothing; Valgrind
// matches it at translation time. Scanning a binary for it shows which
// functions can talk to Valgrind.
package magic

import (
	"bytes"
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// Arch is an instruction set with a client-request preamble.
type Arch string

// Supported architectures, named like GOARCH.
const (
	AMD64 Arch = "amd64"
	I386  Arch = "386"
)

// Arches lists every supported architecture.
var Arches = []Arch{AMD64, I386}

type layout struct {
	mode      int
	rex       []byte
	rotations [4]uint8
	frame     x86asm.Reg
	marker    x86asm.Reg
}

var layouts = map[Arch]layout{
	AMD64: {mode: 64, rex: []byte{0x48}, rotations: [4]uint8{3, 13, 61, 51}, frame: x86asm.RDI, marker: x86asm.RBX},
	I386:  {mode: 32, rotations: [4]uint8{3, 13, 29, 19}, frame: x86asm.EDI, marker: x86asm.EBX},
}

func lookup(arch Arch) (layout, error) {
	l, ok := layouts[arch]
	if !ok {
		return layout{}, fmt.Errorf("no client-request preamble for %q", arch)
	}
	return l, nil
}

// ParseArch maps a GOARCH style name to an Arch.
func ParseArch(s string) (Arch, error) {
	a := Arch(s)
	if _, err := lookup(a); err != nil {
		return "", err
	}
	return a, nil
}

// Native returns the architecture of the trap linked into this binary. ok is
// false when the binary was built with the no-op fallback.
func Native() (Arch, bool) {
	info := request.Target()
	if !info.Native {
		return "", false
	}
	return Arch(info.Arch), true
}

// Rotations returns the four rotate amounts for arch.
func Rotations(arch Arch) ([4]uint8, error) {
	l, err := lookup(arch)
	if err != nil {
		return [4]uint8{}, err
	}
	return l.rotations, nil
}

// Preamble returns the rotate sequence that precedes the marker instruction.
func Preamble(arch Arch) ([]byte, error) {
	l, err := lookup(arch)
	if err != nil {
		return nil, err
	}

	var b []byte
	for _, n := range l.rotations {
		// ROL r/m, imm8 with ModRM /0 on the frame register.
		b = append(b, l.rex...)
		b = append(b, 0xc1, 0xc7, n)
	}
	return b, nil
}

// Sequence returns the complete byte sequence: preamble plus marker.
func Sequence(arch Arch) ([]byte, error) {
	b, err := Preamble(arch)
	if err != nil {
		return nil, err
	}
	l := layouts[arch]

	// XCHG r/m, reg with both operands the base register.
	b = append(b, l.rex...)
	return append(b, 0x87, 0xdb), nil
}

// Validate decodes code as a full request sequence and reports the first
// instruction that does not belong to it.
func Validate(code []byte, arch Arch) error {
	l, err := lookup(arch)
	if err != nil {
		return err
	}

	off := 0
	next := func() (x86asm.Inst, error) {
		inst, err := x86asm.Decode(code[off:], l.mode)
		if err != nil {
			return inst, fmt.Errorf("failed to decode instruction at offset %d: %w", off, err)
		}
		off += inst.Len
		return inst, nil
	}

	var sum int
	for i, want := range l.rotations {
		inst, err := next()
		if err != nil {
			return err
		}
		if inst.Op != x86asm.ROL || inst.Args[0] != l.frame || inst.Args[1] != x86asm.Imm(want) {
			return fmt.Errorf("rotate %d: got %v, want ROL %v, %d", i+1, inst, l.frame, want)
		}
		sum += int(want)
	}
	if sum%l.mode != 0 {
		return fmt.Errorf("rotations add up to %d, not a multiple of %d", sum, l.mode)
	}

	inst, err := next()
	if err != nil {
		return err
	}
	if inst.Op != x86asm.XCHG || inst.Args[0] != l.marker || inst.Args[1] != l.marker {
		return fmt.Errorf("marker: got %v, want XCHG %v, %v", inst, l.marker, l.marker)
	}
	return nil
}

// Scan returns the offset of every complete request sequence in code.
func Scan(code []byte, arch Arch) ([]int, error) {
	seq, err := Sequence(arch)
	if err != nil {
		return nil, err
	}

	var offsets []int
	for base := 0; ; {
		i := bytes.Index(code[base:], seq)
		if i < 0 {
			return offsets, nil
		}
		offsets = append(offsets, base+i)
		base += i + len(seq)
	}
}
