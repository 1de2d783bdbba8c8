package effects

import "math"

// compressor is a peak envelope-follower compressor with a fixed 4:1
// ratio, 5 ms attack / 50 ms release, and makeup gain derived from the
// threshold.
type compressor struct {
	thresholdDb float64
	attackCoeff float64
	releaseCoeff float64
	envelope    float64
	makeupGain  float64
}

const compressorRatio = 4.0

func newCompressor(thresholdDb float64, sampleRate float64) *compressor {
	return &compressor{
		thresholdDb:  thresholdDb,
		attackCoeff:  timeConstantCoeff(0.005, sampleRate),
		releaseCoeff: timeConstantCoeff(0.050, sampleRate),
		makeupGain:   math.Pow(10, -thresholdDb/40),
	}
}

// timeConstantCoeff converts a time constant in seconds to a one-pole
// smoothing coefficient at sampleRate.
func timeConstantCoeff(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(seconds*sampleRate))
}

// process applies gain reduction to one sample and advances the envelope.
func (c *compressor) process(x float64) float64 {
	peak := math.Abs(x)
	if peak > c.envelope {
		c.envelope += c.attackCoeff * (peak - c.envelope)
	} else {
		c.envelope += c.releaseCoeff * (peak - c.envelope)
	}

	envDb := linearToDb(c.envelope)
	gainReductionDb := 0.0
	if envDb > c.thresholdDb {
		over := envDb - c.thresholdDb
		gainReductionDb = over - over/compressorRatio
	}

	gain := math.Pow(10, -gainReductionDb/20) * c.makeupGain
	return x * gain
}

func linearToDb(v float64) float64 {
	if v < 1e-9 {
		v = 1e-9
	}
	return 20 * math.Log10(v)
}
