package vocoder

import (
	"fmt"
	"math"
)

// MaxSynthSamples caps the predicted synthesis output length to bound
// allocations against pathological Params.
const MaxSynthSamples = 44100 * 60 * 30 // 30 minutes at 44.1kHz

// Adapter converts between PCM frames and vocoder parameters. It is the
// only component that talks to the analysis/synthesis kernel; everything
// else in the core sees only Params values.
type Adapter struct{}

// NewAdapter returns a ready-to-use Adapter. The zero value is also usable.
func NewAdapter() *Adapter { return &Adapter{} }

// Analyze converts mono f64 PCM at sampleRate into vocoder parameters.
// Rejects with ErrInvalidInput for empty PCM, a non-positive sample rate,
// or a non-finite spectrogram/aperiodicity value from the kernel.
func (a *Adapter) Analyze(monoPCM []float64, sampleRate int) (*Params, error) {
	if len(monoPCM) == 0 {
		return nil, fmt.Errorf("%w: empty PCM", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}

	p := analyzeKernel(monoPCM, sampleRate)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: kernel produced invalid shape: %v", ErrInvalidInput, err)
	}
	for i := range p.Spectrogram {
		for k := range p.Spectrogram[i] {
			sp, ap := p.Spectrogram[i][k], p.Aperiodicity[i][k]
			if math.IsNaN(sp) || math.IsInf(sp, 0) || math.IsNaN(ap) || math.IsInf(ap, 0) {
				return nil, fmt.Errorf("%w: kernel produced non-finite output at frame %d", ErrInvalidInput, i)
			}
		}
	}
	return p, nil
}

// Synthesize reconstructs mono f64 PCM from Params at sampleRate. Rejects
// with ErrInvalidParams on shape mismatch, non-finite frame period, or
// zero-length f0.
func (a *Adapter) Synthesize(p *Params, sampleRate int) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, sampleRate)
	}
	if math.IsNaN(p.FramePeriodMs) || math.IsInf(p.FramePeriodMs, 0) || p.FramePeriodMs <= 0 {
		return nil, fmt.Errorf("%w: non-finite frame period %v", ErrInvalidParams, p.FramePeriodMs)
	}

	// Drop trailing frames whose predicted output would exceed
	// MaxSynthSamples, so the kernel never allocates past the bound.
	hop := int(p.FramePeriodMs / 1000 * float64(sampleRate))
	if hop < 1 {
		hop = 1
	}
	if maxFrames := (MaxSynthSamples-p.FFTSize)/hop + 1; maxFrames >= 1 && len(p.F0) > maxFrames {
		p = &Params{F0: p.F0[:maxFrames], Spectrogram: p.Spectrogram[:maxFrames], Aperiodicity: p.Aperiodicity[:maxFrames],
			TemporalPositions: p.TemporalPositions[:maxFrames], FFTSize: p.FFTSize, FramePeriodMs: p.FramePeriodMs}
	}

	out := synthesizeKernel(p, sampleRate)
	if len(out) > MaxSynthSamples {
		out = out[:MaxSynthSamples]
	}
	return out, nil
}

// DownmixToMono averages interleaved multi-channel f32 PCM to mono f64.
func DownmixToMono(samples []float32, channels int) []float64 {
	if channels <= 0 {
		channels = 1
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(samples[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// ToFloat32 upconverts f64 synthesis output to f32 by direct cast, no
// dither.
func ToFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}
