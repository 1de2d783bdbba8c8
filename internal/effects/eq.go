package effects

import "github.com/jvidal/voiceforge/internal/params"

const eqQ = 1.41

// newEQStages builds the 12-band cascaded biquad EQ for the given
// sample rate and gains. Band 0 is a low shelf, band 11 a high shelf,
// bands 1..10 are peaking. Zero-dB bands are omitted entirely
// (identity). Band frequencies are clamped below Nyquist so the top
// bands stay stable at low sample rates.
func newEQStages(sampleRate float64, gains [params.EQBands]float64) []*biquad {
	stages := make([]*biquad, 0, params.EQBands)
	nyquist := sampleRate / 2
	for i, hz := range params.EQBandHz {
		gain := gains[i]
		if gain == 0 {
			continue
		}
		if hz > 0.95*nyquist {
			hz = 0.95 * nyquist
		}
		var bq biquad
		switch {
		case i == 0:
			bq = lowShelfRBJ(hz, sampleRate, eqQ, gain)
		case i == params.EQBands-1:
			bq = highShelfRBJ(hz, sampleRate, eqQ, gain)
		default:
			bq = peakingRBJ(hz, sampleRate, eqQ, gain)
		}
		stages = append(stages, &bq)
	}
	return stages
}
