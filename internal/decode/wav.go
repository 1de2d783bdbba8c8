package decode

import (
	"bytes"
	"io"

	"github.com/youpy/go-wav"
)

func init() { Register(FormatWAV, wavDecoder{}) }

type wavDecoder struct{}

// Decode reads a WAV stream via go-wav and converts to interleaved f32
// PCM, scaling by the format's bit depth. go-wav's Sample type carries a
// fixed two-value array (mono or stereo); sources with more channels are
// clamped to stereo, which the downstream mono downmix absorbs anyway.
func (wavDecoder) Decode(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return Result{}, err
	}

	channels := int(format.NumChannels)
	if channels < 1 {
		channels = 1
	}
	if channels > 2 {
		channels = 2
	}

	scale := float32(int64(1) << (format.BitsPerSample - 1))
	samples := make([]float32, 0, 1<<16)

	for {
		batch, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}
		for _, s := range batch {
			for c := 0; c < channels; c++ {
				samples = append(samples, float32(s.Values[c])/scale)
			}
		}
	}

	return Result{
		Samples:    samples,
		SampleRate: format.SampleRate,
		Channels:   uint16(channels),
	}, nil
}
