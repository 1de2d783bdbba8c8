package modifier_test

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/jvidal/voiceforge/internal/modifier"
	"github.com/jvidal/voiceforge/internal/params"
	"github.com/jvidal/voiceforge/internal/vocoder"
)

func drawParams(t *rapid.T) *vocoder.Params {
	frames := rapid.IntRange(1, 16).Draw(t, "frames")
	const fftSize = 8
	width := fftSize/2 + 1

	p := &vocoder.Params{
		F0:                make([]float64, frames),
		Spectrogram:       make([][]float64, frames),
		Aperiodicity:      make([][]float64, frames),
		TemporalPositions: make([]float64, frames),
		FFTSize:           fftSize,
		FramePeriodMs:     5.0,
	}
	for i := 0; i < frames; i++ {
		if rapid.Bool().Draw(t, "voiced") {
			p.F0[i] = rapid.Float64Range(50, 800).Draw(t, "f0")
		}
		p.Spectrogram[i] = make([]float64, width)
		p.Aperiodicity[i] = make([]float64, width)
		for j := 0; j < width; j++ {
			p.Spectrogram[i][j] = rapid.Float64Range(0, 10).Draw(t, "power")
			p.Aperiodicity[i][j] = rapid.Float64Range(0, 1).Draw(t, "ap")
		}
		p.TemporalPositions[i] = float64(i) * 0.005
	}
	return p
}

// Neutral sliders must reproduce the input bit-exactly (temporal
// positions included, since the speed stage is skipped entirely).
func TestApplyNeutralIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawParams(t)
		out := modifier.Apply(p, params.DefaultWorldSliderValues())

		for i := range p.F0 {
			if out.F0[i] != p.F0[i] {
				t.Fatalf("f0[%d] changed: %v -> %v", i, p.F0[i], out.F0[i])
			}
			if out.TemporalPositions[i] != p.TemporalPositions[i] {
				t.Fatalf("positions[%d] changed: %v -> %v", i, p.TemporalPositions[i], out.TemporalPositions[i])
			}
			for j := range p.Spectrogram[i] {
				if out.Spectrogram[i][j] != p.Spectrogram[i][j] {
					t.Fatalf("spectrogram[%d][%d] changed", i, j)
				}
				if out.Aperiodicity[i][j] != p.Aperiodicity[i][j] {
					t.Fatalf("aperiodicity[%d][%d] changed", i, j)
				}
			}
		}
	})
}

// Any in-range slider combination must keep the output shape-valid and
// finite: f0 non-negative, aperiodicity in [0,1], spectrogram free of
// NaN/Inf.
func TestApplyInRangeSlidersKeepInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawParams(t)
		w := params.WorldSliderValues{
			PitchShiftSemitones: rapid.Float64Range(-12, 12).Draw(t, "pitch"),
			PitchRangePct:       rapid.Float64Range(0.2, 3.0).Draw(t, "range"),
			Speed:               rapid.Float64Range(0.5, 2.0).Draw(t, "speed"),
			Breathiness:         rapid.Float64Range(0, 3.0).Draw(t, "breath"),
			FormantShiftSt:      rapid.Float64Range(-5, 5).Draw(t, "formant"),
			SpectralTiltDbOct:   rapid.Float64Range(-6, 6).Draw(t, "tilt"),
		}

		out := modifier.Apply(p, w)
		if err := out.Validate(); err != nil {
			t.Fatalf("output shape invalid: %v", err)
		}
		for i, f0 := range out.F0 {
			if f0 < 0 || math.IsNaN(f0) || math.IsInf(f0, 0) {
				t.Fatalf("f0[%d] = %v out of range", i, f0)
			}
		}
		for i := range out.Spectrogram {
			for j, v := range out.Spectrogram[i] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("spectrogram[%d][%d] = %v non-finite", i, j, v)
				}
			}
			for j, ap := range out.Aperiodicity[i] {
				if ap < 0 || ap > 1 || math.IsNaN(ap) {
					t.Fatalf("aperiodicity[%d][%d] = %v out of [0,1]", i, j, ap)
				}
			}
		}
	})
}
