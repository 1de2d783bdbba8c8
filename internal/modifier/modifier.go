// Package modifier applies the six semantic transforms to vocoder
// parameters: pitch shift, pitch range, speed, breathiness, formant
// shift, and spectral tilt. Apply is a pure function: no I/O, no shared
// state.
package modifier

import (
	"math"

	"github.com/jvidal/voiceforge/internal/params"
	"github.com/jvidal/voiceforge/internal/vocoder"
)

// Apply runs the six transforms, in order, on a clone of p and returns the
// result. p is never mutated.
func Apply(p *vocoder.Params, w params.WorldSliderValues) *vocoder.Params {
	out := p.Clone()
	pitchShift(out, w.PitchShiftSemitones)
	pitchRange(out, w.PitchRangePct)
	out = speed(out, w.Speed)
	breathiness(out, w.Breathiness)
	formantShift(out, w.FormantShiftSt)
	spectralTilt(out, w.SpectralTiltDbOct)
	return out
}

// pitchShift multiplies every voiced f0 by 2^(semitones/12); unvoiced
// frames are preserved.
func pitchShift(p *vocoder.Params, semitones float64) {
	if semitones == 0 {
		return
	}
	ratio := math.Pow(2, semitones/12)
	for i, f0 := range p.F0 {
		if f0 > 0 && !math.IsInf(f0, 0) && !math.IsNaN(f0) {
			p.F0[i] = f0 * ratio
		}
	}
}

// pitchRange scales voiced f0 deviation from the voiced mean, clamped to
// >= 0. params.WorldSliderValues stores the scale as a multiplier
// centered at 1.0.
func pitchRange(p *vocoder.Params, rangeMultiplier float64) {
	if rangeMultiplier == 1.0 {
		return
	}
	var sum float64
	var count float64
	for _, f0 := range p.F0 {
		if f0 > 0 {
			sum += f0
			count++
		}
	}
	if count == 0 {
		return
	}
	mean := sum / count
	factor := rangeMultiplier // already "1 + range_pct/100" in multiplier form
	for i, f0 := range p.F0 {
		if f0 <= 0 {
			continue
		}
		v := mean + (f0-mean)*factor
		if v < 0 {
			v = 0
		}
		p.F0[i] = v
	}
}

// speed linearly resamples f0, spectrogram, and aperiodicity along the
// time axis by 1/speed, and regenerates temporal_positions. speed > 1
// yields fewer frames (faster playback).
func speed(p *vocoder.Params, factor float64) *vocoder.Params {
	if factor == 1.0 || len(p.F0) == 0 {
		return p
	}
	origFrames := len(p.F0)
	newFrames := int(math.Round(float64(origFrames) / factor))
	if newFrames < 1 {
		newFrames = 1
	}

	out := &vocoder.Params{
		F0:                make([]float64, newFrames),
		Spectrogram:       make([][]float64, newFrames),
		Aperiodicity:      make([][]float64, newFrames),
		TemporalPositions: make([]float64, newFrames),
		FFTSize:           p.FFTSize,
		FramePeriodMs:     p.FramePeriodMs,
	}

	for i := 0; i < newFrames; i++ {
		// Map destination frame i to a source-frame coordinate.
		var srcPos float64
		if newFrames == 1 {
			srcPos = 0
		} else {
			srcPos = float64(i) * float64(origFrames-1) / float64(newFrames-1)
		}
		lo := int(math.Floor(srcPos))
		hi := lo + 1
		frac := srcPos - float64(lo)
		if hi >= origFrames {
			hi = origFrames - 1
			frac = 0
		}

		out.F0[i] = lerp(p.F0[lo], p.F0[hi], frac)
		out.Spectrogram[i] = lerpRow(p.Spectrogram[lo], p.Spectrogram[hi], frac)
		out.Aperiodicity[i] = lerpRow(p.Aperiodicity[lo], p.Aperiodicity[hi], frac)
		out.TemporalPositions[i] = float64(i) * p.FramePeriodMs / 1000
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpRow(a, b []float64, t float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = lerp(a[i], b[i], t)
	}
	return out
}

// breathiness pushes aperiodicity toward 1 by a fraction `amount`, clamped
// to [0,1].
func breathiness(p *vocoder.Params, amount float64) {
	if amount == 0 {
		return
	}
	for _, row := range p.Aperiodicity {
		for j, ap := range row {
			v := ap + (1-ap)*amount
			row[j] = clamp01(v)
		}
	}
}

// formantShift warps the frequency axis of the spectrogram by
// 2^(semitones/12). Destination bin j samples source bin j/warp via linear
// interpolation; out-of-range source bins clamp to the last valid bin.
func formantShift(p *vocoder.Params, semitones float64) {
	if semitones == 0 {
		return
	}
	warp := math.Pow(2, semitones/12)
	width := p.BinCount()
	lastBin := float64(width - 1)

	for _, row := range p.Spectrogram {
		src := append([]float64(nil), row...)
		for j := 0; j < width; j++ {
			srcPos := float64(j) / warp
			if srcPos > lastBin {
				srcPos = lastBin
			}
			if srcPos < 0 {
				srcPos = 0
			}
			lo := int(math.Floor(srcPos))
			hi := lo + 1
			if hi > int(lastBin) {
				hi = int(lastBin)
			}
			frac := srcPos - float64(lo)
			row[j] = lerp(src[lo], src[hi], frac)
		}
	}
}

// spectralTilt multiplies each spectrogram bin's power by
// 10^(tiltDbPerOctave * log2(max(j,1)/refBin) / 20)^2, refBin = 1.
func spectralTilt(p *vocoder.Params, tiltDbPerOctave float64) {
	if tiltDbPerOctave == 0 {
		return
	}
	const refBin = 1.0
	for _, row := range p.Spectrogram {
		for j := range row {
			bin := float64(j)
			if bin < 1 {
				bin = 1
			}
			gainDb := tiltDbPerOctave * math.Log2(bin/refBin)
			gain := math.Pow(10, gainDb/20)
			row[j] *= gain * gain
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
