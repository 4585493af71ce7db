package request

import "sync"

// Issued is one request seen by a Recorder.
type Issued struct {
	Default Word
	Frame   Frame
}

// Recorder is a Trap that records every frame instead of trapping. By default
// it answers like an absent supervisor; set Respond to script answers.
type Recorder struct {
	// Respond, when set, produces the result for a frame. It runs while the
	// memory referenced by the frame is still pinned, so it may write
	// through ArgOut addresses the way the supervisor would.
	Respond func(def Word, f Frame) Word

	mu     sync.Mutex
	issued []Issued
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Issue implements Trap.
func (r *Recorder) Issue(def Word, f Frame) Word {
	r.mu.Lock()
	r.issued = append(r.issued, Issued{Default: def, Frame: f})
	respond := r.Respond
	r.mu.Unlock()

	if respond != nil {
		return respond(def, f)
	}
	return def
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Issued {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Issued, len(r.issued))
	copy(out, r.issued)
	return out
}

// Last returns the most recent request. It panics if nothing was recorded.
func (r *Recorder) Last() Issued {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.issued) == 0 {
		panic("request: recorder is empty")
	}
	return r.issued[len(r.issued)-1]
}

// Len returns the number of recorded requests.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// Reset forgets every recorded request.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = nil
}
