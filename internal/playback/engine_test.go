package playback

import (
	"testing"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

// fakePaStream is a no-op paStream for exercising writeLoop without a
// real PortAudio device.
type fakePaStream struct {
	writes int
}

func (f *fakePaStream) Start() error { return nil }
func (f *fakePaStream) Stop() error  { return nil }
func (f *fakePaStream) Close() error { return nil }
func (f *fakePaStream) Write() error { f.writes++; return nil }

func TestEngineSwapAudioRescalesPosition(t *testing.T) {
	e := NewEngine()
	old, _ := audiobuf.New(make([]float32, 100), 44100, 1) // 100 frames
	s := NewState(old)
	s.Position.Store(50) // halfway through

	next, _ := audiobuf.New(make([]float32, 50), 44100, 1) // 50 frames (2x speed)
	e.SwapAudio(next, s)

	got := s.Position.Load()
	if got != 25 {
		t.Errorf("position = %d, want 25 (halfway through new buffer)", got)
	}
	buf, ok := s.Handle.TryRead()
	if !ok || buf != next {
		t.Fatal("expected handle to read the swapped buffer")
	}
}

func TestEngineSwapAudioClampsOutOfRange(t *testing.T) {
	e := NewEngine()
	old, _ := audiobuf.New(make([]float32, 100), 44100, 1)
	s := NewState(old)
	s.Position.Store(99)

	next, _ := audiobuf.New(make([]float32, 2), 44100, 1) // 2 frames
	e.SwapAudio(next, s)

	got := s.Position.Load()
	if got >= 2 {
		t.Errorf("position = %d, want < 2 (new buffer length)", got)
	}
}

func TestEngineSwapAudioEmptyNext(t *testing.T) {
	e := NewEngine()
	old, _ := audiobuf.New(make([]float32, 100), 44100, 1)
	s := NewState(old)
	s.Position.Store(50)

	next, _ := audiobuf.New(nil, 44100, 1)
	e.SwapAudio(next, s)

	if got := s.Position.Load(); got != 0 {
		t.Errorf("position = %d, want 0 for empty buffer", got)
	}
}

func TestWriteLoopStopsOnSignal(t *testing.T) {
	fake := &fakePaStream{}
	s := NewState(nil)
	stopCh := make(chan struct{})

	done := make(chan struct{})
	go func() {
		writeLoop(fake, make([]float32, 4), 2, s, stopCh)
		close(done)
	}()

	close(stopCh)
	<-done
}
