package request

// Trap executes one client request. Issue returns def unchanged when no
// supervisor is interpreting the process.
type Trap interface {
	Issue(def Word, f Frame) Word
}

// Native issues requests with the magic instruction sequence compiled for the
// build target. It keeps no state, never allocates and is safe for concurrent
// use.
type Native struct{}

// Issue hands f to the supervisor and returns its answer, or def.
func (Native) Issue(def Word, f Frame) Word {
	return trap(def, &f)
}

// TargetInfo describes the register roles and nonce of the compiled trap.
type TargetInfo struct {
	Arch           string   `json:"arch" yaml:"arch"`
	FrameRegister  string   `json:"frame_register" yaml:"frame_register"`
	ResultRegister string   `json:"result_register" yaml:"result_register"`
	Rotations      [4]uint8 `json:"rotations" yaml:"rotations"`
	// Native is false when the valgrind_noop fallback is compiled in.
	Native bool `json:"native" yaml:"native"`
}

// Target reports the constants of the trap compiled into this binary.
func Target() TargetInfo {
	return target
}
