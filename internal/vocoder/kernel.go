package vocoder

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// The kernel is the vocoder analysis/synthesis engine: an
// autocorrelation pitch tracker, STFT-derived spectral
// envelope/aperiodicity estimate, and an overlap-add resynthesizer.
const (
	defaultFFTSize       = 1024
	defaultFramePeriodMs = 5.0
	f0Min                = 50.0
	f0Max                = 800.0
	voicingThreshold     = 0.3 // normalised autocorrelation peak below this => unvoiced
)

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// analyzeKernel runs pitch tracking + STFT envelope/aperiodicity estimation
// over mono f64 PCM. Returns a fully populated, shape-valid Params.
func analyzeKernel(mono []float64, sampleRate int) *Params {
	fftSize := defaultFFTSize
	hop := int(defaultFramePeriodMs / 1000 * float64(sampleRate))
	if hop < 1 {
		hop = 1
	}
	numFrames := len(mono)/hop + 1
	win := hannWindow(fftSize)

	p := &Params{
		F0:                make([]float64, numFrames),
		Spectrogram:       make([][]float64, numFrames),
		Aperiodicity:      make([][]float64, numFrames),
		TemporalPositions: make([]float64, numFrames),
		FFTSize:           fftSize,
		FramePeriodMs:     defaultFramePeriodMs,
	}

	binCount := fftSize/2 + 1
	maxLag := sampleRate / int(f0Min)
	minLag := sampleRate / int(f0Max)
	if minLag < 1 {
		minLag = 1
	}

	for i := 0; i < numFrames; i++ {
		center := i * hop
		segment := extractCentered(mono, center, fftSize)

		f0, voicingStrength := estimatePitch(segment, minLag, maxLag, sampleRate)
		if math.IsNaN(f0) || math.IsInf(f0, 0) {
			f0 = 0 // non-finite estimates are treated as unvoiced
		}
		p.F0[i] = f0
		p.TemporalPositions[i] = float64(center) / float64(sampleRate)

		windowed := make([]complex128, fftSize)
		for j := 0; j < fftSize; j++ {
			windowed[j] = complex(segment[j]*win[j], 0)
		}
		spectrum := fft.FFT(windowed)

		power := make([]float64, binCount)
		ap := make([]float64, binCount)
		for k := 0; k < binCount; k++ {
			mag := cmplx.Abs(spectrum[k])
			power[k] = mag * mag
			if f0 <= 0 {
				ap[k] = 1.0
				continue
			}
			freq := float64(k) * float64(sampleRate) / float64(fftSize)
			ap[k] = clamp01(1 - voicingStrength*harmonicProximity(freq, f0))
		}
		p.Spectrogram[i] = power
		p.Aperiodicity[i] = ap
	}

	return p
}

// extractCentered returns a length-n window of src centered at idx,
// zero-padded past either edge.
func extractCentered(src []float64, idx, n int) []float64 {
	out := make([]float64, n)
	start := idx - n/2
	for i := 0; i < n; i++ {
		srcIdx := start + i
		if srcIdx >= 0 && srcIdx < len(src) {
			out[i] = src[srcIdx]
		}
	}
	return out
}

// estimatePitch returns the autocorrelation-peak f0 estimate (0 if
// unvoiced) and the normalised peak strength used downstream as a
// voicing-confidence signal for aperiodicity shaping.
func estimatePitch(segment []float64, minLag, maxLag int, sampleRate int) (f0 float64, strength float64) {
	if maxLag >= len(segment) {
		maxLag = len(segment) - 1
	}
	if maxLag <= minLag {
		return 0, 0
	}

	var energy float64
	for _, s := range segment {
		energy += s * s
	}
	if energy < 1e-12 {
		return 0, 0
	}

	bestLag := -1
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(segment); i++ {
			corr += segment[i] * segment[i+lag]
		}
		norm := corr / energy
		if norm > bestCorr {
			bestCorr = norm
			bestLag = lag
		}
	}
	if bestLag <= 0 || bestCorr < voicingThreshold {
		return 0, bestCorr
	}
	return float64(sampleRate) / float64(bestLag), bestCorr
}

// harmonicProximity returns a value in [0,1]: 1 when freq sits exactly on a
// harmonic of f0, tapering to 0 midway between harmonics. Used to shape the
// aperiodicity estimate so voiced energy concentrates at harmonics.
func harmonicProximity(freq, f0 float64) float64 {
	if f0 <= 0 {
		return 0
	}
	ratio := freq / f0
	nearest := math.Round(ratio)
	dist := math.Abs(ratio - nearest)
	return clamp01(1 - 2*dist)
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

// synthesizeKernel resynthesizes mono f64 PCM from Params via per-frame
// spectral reconstruction (periodic energy phase-locked to the integrated
// f0 track, aperiodic energy given incoherent per-frame phase) and
// overlap-add.
func synthesizeKernel(p *Params, sampleRate int) []float64 {
	fftSize := p.FFTSize
	hop := int(p.FramePeriodMs / 1000 * float64(sampleRate))
	if hop < 1 {
		hop = 1
	}
	numFrames := len(p.F0)
	win := hannWindow(fftSize)

	outLen := hop*(numFrames-1) + fftSize
	if outLen < fftSize {
		outLen = fftSize
	}
	out := make([]float64, outLen)
	norm := make([]float64, outLen)

	binCount := p.BinCount()
	cumPhase := 0.0 // integral of 2*pi*f0 dt, carried frame to frame

	for i := 0; i < numFrames; i++ {
		f0 := p.F0[i]
		frameDuration := float64(hop) / float64(sampleRate)

		spectrum := make([]complex128, fftSize)
		for k := 0; k < binCount; k++ {
			mag := math.Sqrt(math.Max(p.Spectrogram[i][k], 0))
			ap := clamp01(p.Aperiodicity[i][k])

			noisePhase := pseudoRandomPhase(i, k)
			var val complex128
			if f0 > 0 {
				periodicMag := mag * math.Sqrt(1-ap)
				noiseMag := mag * math.Sqrt(ap)
				periodicPhase := cumPhase * float64(k)
				val = cmplx.Rect(periodicMag, periodicPhase) + cmplx.Rect(noiseMag, noisePhase)
			} else {
				val = cmplx.Rect(mag, noisePhase)
			}
			spectrum[k] = val
			if k > 0 && k < fftSize-k {
				spectrum[fftSize-k] = cmplx.Conj(val)
			}
		}

		td := fft.IFFT(spectrum)
		start := i * hop
		for j := 0; j < fftSize; j++ {
			idx := start + j
			if idx < 0 || idx >= outLen {
				continue
			}
			out[idx] += real(td[j]) * win[j]
			norm[idx] += win[j] * win[j]
		}

		cumPhase += 2 * math.Pi * f0 * frameDuration
	}

	for i := range out {
		if norm[i] > 1e-9 {
			out[i] /= norm[i]
		}
	}
	return out
}

// pseudoRandomPhase is a deterministic hash-based phase in [-pi, pi),
// keeping Synthesize a pure function of its inputs (no hidden RNG state)
// while still giving the aperiodic/unvoiced energy an incoherent,
// noise-like phase across frames and bins.
func pseudoRandomPhase(frame, bin int) float64 {
	h := uint64(frame)*2654435761 + uint64(bin)*40503
	h ^= h >> 13
	h *= 0x2545F4914F6CDD1D
	h ^= h >> 17
	frac := float64(h%1000000) / 1000000.0
	return frac*2*math.Pi - math.Pi
}
