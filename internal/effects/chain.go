// Package effects implements the fixed-order DSP graph:
// low-cut, high-cut, compressor, pitch-shift, reverb, and a 12-band EQ.
// Apply is the sole entry point; every stage is skipped at its neutral
// default so a fully-neutral EffectsParams returns an unmodified copy.
package effects

import (
	"math"

	"github.com/jvidal/voiceforge/internal/params"
)

// Apply runs the effects chain over mono f64 PCM at sampleRate, in the
// fixed order: low-cut, high-cut, compressor, pitch-shift, reverb, EQ.
// buf is never mutated; the returned slice may differ in length from buf
// (the pitch-shift stage resamples).
func Apply(buf []float64, sampleRate float64, fx params.EffectsParams) []float64 {
	if fx.IsNeutral() {
		return append([]float64(nil), buf...)
	}

	out := append([]float64(nil), buf...)
	nyquist := sampleRate / 2

	if fx.LowCutHz != 20 {
		cutoff := math.Min(fx.LowCutHz, 0.95*nyquist)
		bq := highPassRBJ(cutoff, sampleRate, 0.707)
		runBiquad(&bq, out)
	}

	if fx.HighCutHz != 20000 {
		cutoff := math.Min(fx.HighCutHz, 0.95*nyquist)
		bq := lowPassRBJ(cutoff, sampleRate, 0.707)
		runBiquad(&bq, out)
	}

	if fx.CompressorThreshDb != 0 {
		c := newCompressor(fx.CompressorThreshDb, sampleRate)
		for i, x := range out {
			out[i] = c.process(x)
		}
	}

	if fx.PitchShiftFXSt != 0 {
		out = pitchShiftResample(out, fx.PitchShiftFXSt)
	}

	if fx.ReverbMix != 0 {
		rv := newSchroederReverb(sampleRate, fx.ReverbMix)
		for i, x := range out {
			out[i] = rv.process(x)
		}
	}

	for _, bq := range newEQStages(sampleRate, fx.EQGainDb) {
		runBiquad(bq, out)
	}

	return out
}

func runBiquad(bq *biquad, buf []float64) {
	for i, x := range buf {
		buf[i] = bq.process(x)
	}
}
