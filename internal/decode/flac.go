package decode

import (
	"io"

	"github.com/mewkiz/flac"
)

func init() { Register(FormatFLAC, flacDecoder{}) }

type flacDecoder struct{}

// Decode reads a FLAC stream frame-by-frame via mewkiz/flac, converting
// each subframe's signed integer samples to interleaved f32 scaled by
// the stream's bit depth.
func (flacDecoder) Decode(r io.Reader) (Result, error) {
	stream, err := flac.New(r)
	if err != nil {
		return Result{}, err
	}

	channels := int(stream.Info.NChannels)
	if channels < 1 {
		channels = 1
	}
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	samples := make([]float32, 0, 1<<16)

	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}
		n := int(f.BlockSize)
		for i := 0; i < n; i++ {
			for c := 0; c < channels && c < len(f.Subframes); c++ {
				samples = append(samples, float32(f.Subframes[c].Samples[i])/scale)
			}
		}
	}

	return Result{
		Samples:    samples,
		SampleRate: stream.Info.SampleRate,
		Channels:   uint16(channels),
	}, nil
}
