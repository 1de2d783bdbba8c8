// Package spectrum provides a main-thread, non-blocking FFT snapshot of
// the audible buffer, driven once per UI render tick.
package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/jvidal/voiceforge/internal/audiobuf"
	"github.com/jvidal/voiceforge/internal/playback"
)

// WindowSize is the fixed length (in samples) of the mono window
// extracted per snapshot.
const WindowSize = 2048

// Sampler extracts Hann-windowed FFT magnitude snapshots from a shared
// playback buffer without ever blocking the caller (the Coordinator's
// render loop). The previous snapshot is kept on lock contention so the
// visualization never flickers.
type Sampler struct {
	window     []complex128 // reused scratch buffer, no per-call allocation
	hann       [WindowSize]float64
	lastMagsDb []float64
}

// NewSampler returns a ready-to-use Sampler with its Hann coefficients
// precomputed and its FFT scratch buffer preallocated (go-dsp has no
// explicit plan object; caching the input/window buffers serves the
// same purpose).
func NewSampler() *Sampler {
	s := &Sampler{window: make([]complex128, WindowSize)}
	for i := range s.hann {
		s.hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1)))
	}
	return s
}

// Sample extracts a WindowSize mono window starting at the state's
// current position from state's shared buffer, applies the Hann window,
// runs a forward FFT, and returns magnitudes in dB for the first N/2
// bins. On read-lock contention, the previous snapshot is returned
// unchanged (no flicker). An empty or absent buffer yields an empty
// result.
func (s *Sampler) Sample(state *playback.State) []float64 {
	position := state.Position.Load()
	buf, ok := state.Handle.TryRead()
	if !ok {
		return s.lastMagsDb
	}
	if buf == nil || len(buf.Samples) == 0 {
		return nil
	}

	mono := extractMonoWindow(buf, int(position))
	for i, v := range mono {
		s.window[i] = complex(v*s.hann[i], 0)
	}

	spec := fft.FFT(s.window)
	bins := WindowSize / 2
	mags := make([]float64, bins)
	for i := 0; i < bins; i++ {
		mag := cmplx.Abs(spec[i])
		if mag <= 0 {
			mags[i] = -300 // effective floor, avoids -Inf
			continue
		}
		mags[i] = 20 * math.Log10(mag)
	}
	s.lastMagsDb = mags
	return mags
}

// extractMonoWindow returns a WindowSize-length mono window starting at
// the given interleaved-sample position, averaging channels and
// zero-padding past the end of buf. A zero-channel buffer (defensive
// edge case — audiobuf.New rejects this, but a caller could still hand
// in a zero value) yields all-zero output.
func extractMonoWindow(buf *audiobuf.Buffer, position int) []float64 {
	out := make([]float64, WindowSize)
	channels := int(buf.Channels)
	if channels <= 0 {
		return out
	}
	startFrame := position / channels
	frames := buf.Frames()

	for i := 0; i < WindowSize; i++ {
		frame := startFrame + i
		if frame >= frames {
			break // past end of buffer: leave zero-padded
		}
		var sum float64
		base := frame * channels
		for c := 0; c < channels; c++ {
			sum += float64(buf.Samples[base+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
