package vocoder_test

import (
	"math"
	"testing"

	"github.com/jvidal/voiceforge/internal/vocoder"
)

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	a := vocoder.NewAdapter()
	if _, err := a.Analyze(nil, 44100); err == nil {
		t.Fatal("expected error for empty PCM")
	}
}

func TestAnalyzeRejectsNonPositiveSampleRate(t *testing.T) {
	a := vocoder.NewAdapter()
	if _, err := a.Analyze([]float64{0.1, 0.2, 0.3}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestSynthesizeRejectsZeroLengthF0(t *testing.T) {
	a := vocoder.NewAdapter()
	p := &vocoder.Params{FFTSize: 1024, FramePeriodMs: 5.0}
	if _, err := a.Synthesize(p, 44100); err == nil {
		t.Fatal("expected error for zero-length f0")
	}
}

func TestSynthesizeRejectsNonFiniteFramePeriod(t *testing.T) {
	a := vocoder.NewAdapter()
	p := &vocoder.Params{
		F0:                []float64{100},
		Spectrogram:       [][]float64{make([]float64, 513)},
		Aperiodicity:      [][]float64{make([]float64, 513)},
		TemporalPositions: []float64{0},
		FFTSize:           1024,
		FramePeriodMs:     math.NaN(),
	}
	if _, err := a.Synthesize(p, 44100); err == nil {
		t.Fatal("expected error for non-finite frame period")
	}
}

func TestSynthesizeRejectsShapeMismatch(t *testing.T) {
	a := vocoder.NewAdapter()
	p := &vocoder.Params{
		F0:                []float64{100, 100},
		Spectrogram:       [][]float64{make([]float64, 513)}, // too few rows
		Aperiodicity:      [][]float64{make([]float64, 513), make([]float64, 513)},
		TemporalPositions: []float64{0, 0.005},
		FFTSize:           1024,
		FramePeriodMs:     5.0,
	}
	if _, err := a.Synthesize(p, 44100); err == nil {
		t.Fatal("expected error for row-count mismatch")
	}
}

func TestAnalyzeSynthesizeSineRoundTrip(t *testing.T) {
	const sampleRate = 44100
	const freq = 440.0
	const duration = 1.0

	n := int(sampleRate * duration)
	mono := make([]float64, n)
	for i := range mono {
		mono[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}

	a := vocoder.NewAdapter()
	p, err := a.Analyze(mono, sampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var sum, count float64
	for _, f0 := range p.F0 {
		if f0 > 0 {
			sum += f0
			count++
		}
	}
	if count == 0 {
		t.Fatal("expected at least one voiced frame")
	}
	meanF0 := sum / count
	if math.Abs(meanF0-freq) > 2.0 {
		t.Errorf("mean f0 %.2f not within 2 Hz of %.2f", meanF0, freq)
	}

	out, err := a.Synthesize(p, sampleRate)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	var inRMS, outRMS float64
	for _, s := range mono {
		inRMS += s * s
	}
	for _, s := range out {
		outRMS += s * s
	}
	inRMS = math.Sqrt(inRMS / float64(len(mono)))
	outRMS = math.Sqrt(outRMS / float64(max(len(out), 1)))
	if inRMS == 0 {
		t.Fatal("input RMS is zero")
	}
	ratio := outRMS / inRMS
	if ratio < 0.3 || ratio > 3.0 {
		t.Errorf("RMS ratio %.3f outside [0.3, 3.0]", ratio)
	}
}
