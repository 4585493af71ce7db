//go:build linux || freebsd

package request

var target = TargetInfo{
	Arch:           "386",
	FrameRegister:  "EAX",
	ResultRegister: "EDX",
	Rotations:      [4]uint8{3, 13, 29, 19},
	Native:         true,
}

// trap loads the frame address into EAX and def into EDX, runs the magic
// sequence and returns EDX. Implemented in trap_386.s.
//
//go:noescape
func trap(def Word, f *Frame) Word
