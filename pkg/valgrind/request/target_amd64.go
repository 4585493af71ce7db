//go:build linux || darwin || freebsd

package request

var target = TargetInfo{
	Arch:           "amd64",
	FrameRegister:  "RAX",
	ResultRegister: "RDX",
	Rotations:      [4]uint8{3, 13, 61, 51},
	Native:         true,
}

// trap loads the frame address into RAX and def into RDX, runs the magic
// sequence and returns RDX. Implemented in trap_amd64.s.
//
//go:noescape
func trap(def Word, f *Frame) Word
