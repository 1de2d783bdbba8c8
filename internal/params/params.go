// Package params defines the scalar parameter sets that flow from the UI
// into the parameter modifier and effects chain, along with their clamped
// ranges and the epsilon-based neutrality checks that let both skip
// unnecessary DSP.
package params

import "math"

// EQBands is the number of cascaded biquads in the Effects Chain's EQ.
const EQBands = 12

// EQBandHz lists the 12 EQ band center frequencies, low shelf first, high
// shelf last.
var EQBandHz = [EQBands]float64{31, 63, 125, 250, 500, 1000, 2000, 3150, 4000, 6300, 10000, 16000}

const (
	worldNeutralEps  = 1e-9
	effectsNeutralEps = 1e-6
)

// WorldSliderValues holds the six vocoder-parameter transforms plus a
// bypass flag. Defaults are all-neutral.
type WorldSliderValues struct {
	PitchShiftSemitones float64 // -12..12, default 0
	PitchRangePct       float64 // 0.2..3.0, default 1.0 (multiplier, not percent-delta)
	Speed               float64 // 0.5..2.0, default 1.0
	Breathiness         float64 // 0..3.0, default 0.0
	FormantShiftSt      float64 // -5..5, default 0
	SpectralTiltDbOct   float64 // -6..6, default 0
	Bypass              bool
}

// DefaultWorldSliderValues returns the neutral slider set.
func DefaultWorldSliderValues() WorldSliderValues {
	return WorldSliderValues{PitchRangePct: 1.0, Speed: 1.0}
}

// IsNeutral reports whether w is equivalent to identity within a 1e-9
// epsilon (Bypass is itself a neutrality shortcut).
func (w WorldSliderValues) IsNeutral() bool {
	if w.Bypass {
		return true
	}
	return nearZero(w.PitchShiftSemitones, worldNeutralEps) &&
		nearEqual(w.PitchRangePct, 1.0, worldNeutralEps) &&
		nearEqual(w.Speed, 1.0, worldNeutralEps) &&
		nearZero(w.Breathiness, worldNeutralEps) &&
		nearZero(w.FormantShiftSt, worldNeutralEps) &&
		nearZero(w.SpectralTiltDbOct, worldNeutralEps)
}

// Clamp restricts each field to its UI range and returns w.
func (w WorldSliderValues) Clamp() WorldSliderValues {
	w.PitchShiftSemitones = clamp(w.PitchShiftSemitones, -12, 12)
	w.PitchRangePct = clamp(w.PitchRangePct, 0.2, 3.0)
	w.Speed = clamp(w.Speed, 0.5, 2.0)
	w.Breathiness = clamp(w.Breathiness, 0, 3.0)
	w.FormantShiftSt = clamp(w.FormantShiftSt, -5, 5)
	w.SpectralTiltDbOct = clamp(w.SpectralTiltDbOct, -6, 6)
	return w
}

// EffectsParams holds the five effect scalars plus the 12-band EQ gain
// vector. Output gain is deliberately absent: it lives in the playback
// engine's live-gain atomic, never in this struct.
type EffectsParams struct {
	LowCutHz          float64 // 20..500, default 20 (neutral)
	HighCutHz         float64 // 2000..20000, default 20000 (neutral)
	CompressorThreshDb float64 // -40..0, default 0 (neutral)
	ReverbMix         float64 // 0..1, default 0
	PitchShiftFXSt    float64 // -12..12, default 0
	EQGainDb          [EQBands]float64
}

// DefaultEffectsParams returns the neutral effects set.
func DefaultEffectsParams() EffectsParams {
	return EffectsParams{LowCutHz: 20, HighCutHz: 20000}
}

// IsNeutral reports whether fx is equivalent to identity within a 1e-6
// epsilon on every scalar and every EQ band.
func (fx EffectsParams) IsNeutral() bool {
	if !nearEqual(fx.LowCutHz, 20, effectsNeutralEps) {
		return false
	}
	if !nearEqual(fx.HighCutHz, 20000, effectsNeutralEps) {
		return false
	}
	if !nearZero(fx.CompressorThreshDb, effectsNeutralEps) {
		return false
	}
	if !nearZero(fx.ReverbMix, effectsNeutralEps) {
		return false
	}
	if !nearZero(fx.PitchShiftFXSt, effectsNeutralEps) {
		return false
	}
	for _, g := range fx.EQGainDb {
		if !nearZero(g, effectsNeutralEps) {
			return false
		}
	}
	return true
}

// Clamp restricts each field to its UI range and returns fx.
func (fx EffectsParams) Clamp() EffectsParams {
	fx.LowCutHz = clamp(fx.LowCutHz, 20, 500)
	fx.HighCutHz = clamp(fx.HighCutHz, 2000, 20000)
	fx.CompressorThreshDb = clamp(fx.CompressorThreshDb, -40, 0)
	fx.ReverbMix = clamp(fx.ReverbMix, 0, 1)
	fx.PitchShiftFXSt = clamp(fx.PitchShiftFXSt, -12, 12)
	for i := range fx.EQGainDb {
		fx.EQGainDb[i] = clamp(fx.EQGainDb[i], -6, 6)
	}
	return fx
}

// GainDBToLinear maps an output-gain dB value (-12..12 dB) to a linear
// multiplier, for the live-gain path.
func GainDBToLinear(db float64) float32 {
	db = clamp(db, -12, 12)
	return float32(math.Pow(10, db/20))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nearZero(v, eps float64) bool { return math.Abs(v) <= eps }
func nearEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
