package playback

import (
	"math"
	"sync/atomic"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

// State holds the fields shared between the Coordinator (writer) and the
// write loop (reader): playing, position, live gain, looping, and the
// buffer handle itself. Every field besides Handle is atomic-only; there
// is no mutex here.
type State struct {
	Playing     atomic.Bool
	Position    atomic.Uint64 // interleaved-sample index
	LiveGain    atomic.Uint32 // raw bits of a f32 linear gain
	LoopEnabled atomic.Bool
	Handle      *audiobuf.Handle
}

// NewState returns a State wrapping buf (which may be nil) at unity gain.
func NewState(buf *audiobuf.Buffer) *State {
	s := &State{Handle: audiobuf.NewHandle(buf)}
	s.LiveGain.Store(math.Float32bits(1.0))
	return s
}

// SetLiveGain stores a new linear gain. No debounce, no command
// dispatch: the live-gain path bypasses the worker entirely.
func (s *State) SetLiveGain(linear float32) {
	s.LiveGain.Store(math.Float32bits(linear))
}

func (s *State) liveGain() float32 {
	return math.Float32frombits(s.LiveGain.Load())
}
