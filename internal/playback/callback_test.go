package playback

import (
	"math"
	"testing"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

func TestFillPeriodSilenceOnContention(t *testing.T) {
	s := NewState(nil)
	s.Playing.Store(true)

	// Hold the write lock to force TryRead to fail.
	done := make(chan struct{})
	hold := make(chan struct{})
	go func() {
		s.Handle.Swap(nil, func(int, int) {
			close(hold)
			<-done
		})
	}()
	<-hold

	out := make([]float32, 8)
	for i := range out {
		out[i] = 99 // sentinel, must be overwritten with silence
	}
	fillPeriod(out, 2, s)
	close(done)

	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0 (silence on contention)", i, v)
		}
	}
}

func TestFillPeriodAppliesLiveGain(t *testing.T) {
	buf, _ := audiobuf.New([]float32{0.5, 0.5, 0.5, 0.5}, 44100, 1)
	s := NewState(buf)
	s.Playing.Store(true)
	s.SetLiveGain(0.5)

	out := make([]float32, 4)
	fillPeriod(out, 1, s)

	for i, v := range out {
		if math.Abs(float64(v-0.25)) > 1e-6 {
			t.Errorf("out[%d] = %v, want 0.25", i, v)
		}
	}
}

func TestFillPeriodClampsGain(t *testing.T) {
	buf, _ := audiobuf.New([]float32{1.0}, 44100, 1)
	s := NewState(buf)
	s.Playing.Store(true)
	s.SetLiveGain(4.0) // +12dB ~ 3.98x, clearly clips

	out := make([]float32, 1)
	fillPeriod(out, 1, s)
	if out[0] != 1.0 {
		t.Errorf("out[0] = %v, want clamped 1.0", out[0])
	}
}

func TestFillPeriodSilenceWhenNotPlaying(t *testing.T) {
	buf, _ := audiobuf.New([]float32{1, 1, 1, 1}, 44100, 1)
	s := NewState(buf)
	// Playing left false.

	out := make([]float32, 4)
	fillPeriod(out, 1, s)
	for _, v := range out {
		if v != 0 {
			t.Errorf("expected silence while not playing, got %v", v)
		}
	}
}

func TestFillPeriodLoops(t *testing.T) {
	buf, _ := audiobuf.New([]float32{1, 2}, 44100, 1)
	s := NewState(buf)
	s.Playing.Store(true)
	s.LoopEnabled.Store(true)
	s.Position.Store(1) // one frame left before wrap

	out := make([]float32, 4)
	fillPeriod(out, 1, s)
	want := []float32{2, 1, 2, 1}
	for i, v := range out {
		if v != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestFillPeriodChannelModuloMap(t *testing.T) {
	// Mono source, stereo device: both output channels get the same sample.
	buf, _ := audiobuf.New([]float32{0.25, 0.5}, 44100, 1)
	s := NewState(buf)
	s.Playing.Store(true)

	out := make([]float32, 4) // 2 frames * 2 device channels
	fillPeriod(out, 2, s)
	want := []float32{0.25, 0.25, 0.5, 0.5}
	for i, v := range out {
		if v != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestFillPeriodEmptyBufferIsSilent(t *testing.T) {
	buf, _ := audiobuf.New(nil, 44100, 1)
	s := NewState(buf)
	s.Playing.Store(true)

	out := []float32{7, 7}
	fillPeriod(out, 1, s)
	for _, v := range out {
		if v != 0 {
			t.Errorf("expected silence for empty buffer, got %v", v)
		}
	}
}
