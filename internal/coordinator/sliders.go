package coordinator

import (
	"fmt"

	"github.com/jvidal/voiceforge/internal/params"
)

// sliderKind tells adjustActive what to do after a slider's Set closure
// runs: arm the resynthesis debounce, arm the effects debounce, or (for
// the one slider that bypasses the Worker entirely) push straight to the
// live-gain atomic.
type sliderKind int

const (
	kindWorld sliderKind = iota
	kindEffects
	kindGain
)

// slider is one row of the parameter table: a named, ranged, stepped
// scalar bound to a field on the Model via closures.
type slider struct {
	Name string
	Unit string
	Min  float64
	Max  float64
	Step float64
	Kind sliderKind
	Get  func(m *Model) float64
	Set  func(m *Model, v float64)
}

// Format renders the slider's current value with its unit.
func (s slider) Format(m *Model) string {
	v := s.Get(m)
	if s.Unit == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, s.Unit)
}

// newSliders builds the full parameter table: six WORLD
// sliders, output gain (the live-gain bypass), five fixed effects, and
// twelve EQ band gains.
func newSliders() []slider {
	s := []slider{
		{
			Name: "Pitch shift", Unit: "st", Min: -12, Max: 12, Step: 0.5, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.PitchShiftSemitones },
			Set: func(m *Model, v float64) { m.world.PitchShiftSemitones = v },
		},
		{
			Name: "Pitch range", Unit: "x", Min: 0.2, Max: 3.0, Step: 0.1, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.PitchRangePct },
			Set: func(m *Model, v float64) { m.world.PitchRangePct = v },
		},
		{
			Name: "Speed", Unit: "x", Min: 0.5, Max: 2.0, Step: 0.05, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.Speed },
			Set: func(m *Model, v float64) { m.world.Speed = v },
		},
		{
			Name: "Breathiness", Unit: "x", Min: 0, Max: 3.0, Step: 0.1, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.Breathiness },
			Set: func(m *Model, v float64) { m.world.Breathiness = v },
		},
		{
			Name: "Formant shift", Unit: "st", Min: -5, Max: 5, Step: 0.5, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.FormantShiftSt },
			Set: func(m *Model, v float64) { m.world.FormantShiftSt = v },
		},
		{
			Name: "Spectral tilt", Unit: "dB/oct", Min: -6, Max: 6, Step: 0.5, Kind: kindWorld,
			Get: func(m *Model) float64 { return m.world.SpectralTiltDbOct },
			Set: func(m *Model, v float64) { m.world.SpectralTiltDbOct = v },
		},
		{
			Name: "Output gain", Unit: "dB", Min: -12, Max: 12, Step: 0.5, Kind: kindGain,
			Get: func(m *Model) float64 { return m.gainDb },
			Set: func(m *Model, v float64) { m.gainDb = v },
		},
		{
			Name: "Low cut", Unit: "Hz", Min: 20, Max: 500, Step: 10, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.LowCutHz },
			Set: func(m *Model, v float64) { m.fx.LowCutHz = v },
		},
		{
			Name: "High cut", Unit: "Hz", Min: 2000, Max: 20000, Step: 500, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.HighCutHz },
			Set: func(m *Model, v float64) { m.fx.HighCutHz = v },
		},
		{
			Name: "Compressor thresh", Unit: "dB", Min: -40, Max: 0, Step: 1, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.CompressorThreshDb },
			Set: func(m *Model, v float64) { m.fx.CompressorThreshDb = v },
		},
		{
			Name: "Reverb mix", Unit: "", Min: 0, Max: 1, Step: 0.05, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.ReverbMix },
			Set: func(m *Model, v float64) { m.fx.ReverbMix = v },
		},
		{
			Name: "Pitch shift FX", Unit: "st", Min: -12, Max: 12, Step: 0.5, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.PitchShiftFXSt },
			Set: func(m *Model, v float64) { m.fx.PitchShiftFXSt = v },
		},
	}

	for i := range eqBandNames() {
		idx := i
		s = append(s, slider{
			Name: eqBandNames()[idx], Unit: "dB", Min: -6, Max: 6, Step: 0.1, Kind: kindEffects,
			Get: func(m *Model) float64 { return m.fx.EQGainDb[idx] },
			Set: func(m *Model, v float64) { m.fx.EQGainDb[idx] = v },
		})
	}
	return s
}

func eqBandNames() []string {
	names := make([]string, params.EQBands)
	for i, hz := range params.EQBandHz {
		if hz >= 1000 {
			names[i] = fmt.Sprintf("EQ %gkHz", hz/1000)
		} else {
			names[i] = fmt.Sprintf("EQ %gHz", hz)
		}
	}
	return names
}
