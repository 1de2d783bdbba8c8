package vocoder

import "fmt"

// Params is the result of offline vocoder analysis: a per-frame fundamental
// frequency estimate, a spectral envelope, an aperiodicity map, and the
// frame timing metadata needed to resynthesize.
type Params struct {
	F0                []float64   // per-frame fundamental, Hz; 0 = unvoiced
	Spectrogram       [][]float64 // [frames][fftSize/2+1], smoothed power envelope
	Aperiodicity      [][]float64 // [frames][fftSize/2+1], noise fraction in [0,1]
	TemporalPositions []float64   // seconds, one per frame
	FFTSize           int
	FramePeriodMs     float64
}

// Frames returns the analysis frame count.
func (p *Params) Frames() int {
	if p == nil {
		return 0
	}
	return len(p.F0)
}

// BinCount returns the expected row width, fftSize/2+1.
func (p *Params) BinCount() int {
	if p == nil {
		return 0
	}
	return p.FFTSize/2 + 1
}

// Validate checks the shape invariants: equal row lengths
// across F0/Spectrogram/Aperiodicity/TemporalPositions, and row width
// fftSize/2+1.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("vocoder: nil params")
	}
	n := len(p.F0)
	if len(p.Spectrogram) != n || len(p.Aperiodicity) != n || len(p.TemporalPositions) != n {
		return fmt.Errorf("vocoder: mismatched frame counts f0=%d spectrogram=%d aperiodicity=%d positions=%d",
			n, len(p.Spectrogram), len(p.Aperiodicity), len(p.TemporalPositions))
	}
	if n == 0 {
		return fmt.Errorf("vocoder: zero-length f0")
	}
	width := p.BinCount()
	for i := range p.Spectrogram {
		if len(p.Spectrogram[i]) != width {
			return fmt.Errorf("vocoder: spectrogram row %d has width %d, want %d", i, len(p.Spectrogram[i]), width)
		}
		if len(p.Aperiodicity[i]) != width {
			return fmt.Errorf("vocoder: aperiodicity row %d has width %d, want %d", i, len(p.Aperiodicity[i]), width)
		}
	}
	return nil
}

// Clone returns a deep copy of p, used by the Modifier so transforms never
// mutate the Worker's stored analysis result.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	out := &Params{
		F0:                append([]float64(nil), p.F0...),
		TemporalPositions: append([]float64(nil), p.TemporalPositions...),
		FFTSize:           p.FFTSize,
		FramePeriodMs:     p.FramePeriodMs,
	}
	out.Spectrogram = make([][]float64, len(p.Spectrogram))
	for i, row := range p.Spectrogram {
		out.Spectrogram[i] = append([]float64(nil), row...)
	}
	out.Aperiodicity = make([][]float64, len(p.Aperiodicity))
	for i, row := range p.Aperiodicity {
		out.Aperiodicity[i] = append([]float64(nil), row...)
	}
	return out
}
