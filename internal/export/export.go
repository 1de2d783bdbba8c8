// Package export writes the published buffer as 16-bit PCM WAV via
// go-wav, with gain bake-in and collision-avoiding filename suffixing.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/youpy/go-wav"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

// MaxSuffix bounds the auto-incrementing collision suffix.
const MaxSuffix = 9999

// ApplyGain returns a copy of samples scaled by gain and clamped to
// [-1, 1]. Gain is never baked into the worker's post-synthesis cache;
// only the exported copy carries it.
func ApplyGain(samples []float32, gain float32) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		v := s * gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}

// DefaultPath returns "{stem}_processed.wav" in sourcePath's directory.
func DefaultPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(dir, stem+"_processed.wav")
}

// NextAvailablePath returns path if it doesn't exist, otherwise tries
// "{stem}_processed_2.wav", "{stem}_processed_3.wav", … up to MaxSuffix,
// returning an error if every candidate up to the cap already exists.
func NextAvailablePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for n := 2; n <= MaxSuffix; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("export: no available filename under %s up to suffix %d", path, MaxSuffix)
}

// WriteWAV writes buf as 16-bit PCM to path, scaling [-1,1] samples to
// ±32767 symmetric. buf's channels and sample rate are preserved
// unchanged.
func WriteWAV(path string, buf *audiobuf.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	channels := int(buf.Channels)
	if channels < 1 {
		channels = 1
	}
	frames := buf.Frames()

	writer := wav.NewWriter(f, uint32(frames), uint16(channels), buf.SampleRate, 16)

	const batchFrames = 4096
	samples := make([]wav.Sample, 0, batchFrames)

	flush := func() error {
		if len(samples) == 0 {
			return nil
		}
		if err := writer.WriteSamples(samples); err != nil {
			return err
		}
		samples = samples[:0]
		return nil
	}

	for i := 0; i < frames; i++ {
		var s wav.Sample
		for c := 0; c < channels && c < len(s.Values); c++ {
			v := buf.Samples[i*channels+c]
			s.Values[c] = int(toInt16(v))
		}
		samples = append(samples, s)
		if len(samples) == batchFrames {
			if err := flush(); err != nil {
				return fmt.Errorf("export: write samples: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("export: write samples: %w", err)
	}
	return nil
}

// toInt16 scales a [-1, 1] f32 sample to a symmetric 16-bit integer
// range, clamping first so extreme inputs never wrap.
func toInt16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}
