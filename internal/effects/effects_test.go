package effects_test

import (
	"math"
	"testing"

	"github.com/jvidal/voiceforge/internal/effects"
	"github.com/jvidal/voiceforge/internal/params"
)

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestApplyNeutralReturnsUnmodifiedCopy(t *testing.T) {
	buf := sine(440, 44100, 1000)
	out := effects.Apply(buf, 44100, params.DefaultEffectsParams())

	if len(out) != len(buf) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(buf))
	}
	for i := range buf {
		if out[i] != buf[i] {
			t.Fatalf("neutral Apply modified sample %d: got %v want %v", i, out[i], buf[i])
		}
	}
	// Must be a copy, not an alias.
	out[0] = 999
	if buf[0] == 999 {
		t.Fatal("Apply aliased the input buffer")
	}
}

func TestLowCutAttenuatesSubsonicTone(t *testing.T) {
	const sampleRate = 44100.0
	buf := sine(30, sampleRate, 4410) // well below a 200 Hz low-cut

	fx := params.DefaultEffectsParams()
	fx.LowCutHz = 200
	out := effects.Apply(buf, sampleRate, fx)

	if rms(out) >= rms(buf) {
		t.Errorf("low-cut should attenuate a 30 Hz tone: out RMS %.4f >= in RMS %.4f", rms(out), rms(buf))
	}
}

func TestHighCutAttenuatesUltrasonicTone(t *testing.T) {
	const sampleRate = 44100.0
	buf := sine(18000, sampleRate, 4410)

	fx := params.DefaultEffectsParams()
	fx.HighCutHz = 4000
	out := effects.Apply(buf, sampleRate, fx)

	if rms(out) >= rms(buf) {
		t.Errorf("high-cut should attenuate an 18kHz tone: out RMS %.4f >= in RMS %.4f", rms(out), rms(buf))
	}
}

func TestCompressorReducesPeaksAboveThreshold(t *testing.T) {
	const sampleRate = 44100.0
	buf := make([]float64, 2000)
	for i := range buf {
		buf[i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/sampleRate)
	}

	fx := params.DefaultEffectsParams()
	fx.CompressorThreshDb = -20
	out := effects.Apply(buf, sampleRate, fx)

	// Makeup gain (10^(20/40) ~ 3.16) lifts the first cycles, before the
	// 5 ms attack has caught up, above the input; compare once the envelope
	// has settled.
	settled := len(buf) / 2
	if peak(out[settled:]) >= peak(buf[settled:]) {
		t.Errorf("compressor should reduce peak level: out peak %.4f >= in peak %.4f", peak(out[settled:]), peak(buf[settled:]))
	}
}

func TestPitchShiftFXChangesLength(t *testing.T) {
	buf := sine(440, 44100, 1000)

	fx := params.DefaultEffectsParams()
	fx.PitchShiftFXSt = 12 // one octave up halves the length

	out := effects.Apply(buf, 44100, fx)
	wantLen := int(math.Round(float64(len(buf)) * math.Pow(2, -1)))
	if out == nil || len(out) != wantLen {
		t.Errorf("len(out) = %d, want %d", len(out), wantLen)
	}
}

func TestReverbAddsEnergyAfterInputEnds(t *testing.T) {
	const sampleRate = 44100.0
	// Long enough to cover the comb delay lines (~1557+ samples at 44.1k).
	buf := make([]float64, 8000)
	buf[0] = 1.0 // impulse

	fx := params.DefaultEffectsParams()
	fx.ReverbMix = 0.5
	out := effects.Apply(buf, sampleRate, fx)

	var tailEnergy float64
	for i := 1000; i < len(out); i++ {
		tailEnergy += out[i] * out[i]
	}
	if tailEnergy == 0 {
		t.Error("expected reverb tail energy after the impulse")
	}
}

func TestEQBoostsBandEnergy(t *testing.T) {
	const sampleRate = 44100.0
	buf := sine(1000, sampleRate, 4410) // matches EQ band index 5 (1000 Hz)

	fx := params.DefaultEffectsParams()
	fx.EQGainDb[5] = 6.0
	out := effects.Apply(buf, sampleRate, fx)

	if rms(out) <= rms(buf) {
		t.Errorf("boosting the 1kHz band should raise RMS for a 1kHz tone: out %.4f <= in %.4f", rms(out), rms(buf))
	}
}

func rms(buf []float64) float64 {
	var sum float64
	for _, s := range buf {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func peak(buf []float64) float64 {
	var m float64
	for _, s := range buf {
		if a := math.Abs(s); a > m {
			m = a
		}
	}
	return m
}
