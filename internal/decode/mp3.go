package decode

import (
	"io"

	"github.com/hajimehoshi/go-mp3"
)

func init() { Register(FormatMP3, mp3Decoder{}) }

type mp3Decoder struct{}

// Decode reads an MP3 stream via go-mp3, which always yields 16-bit
// little-endian stereo PCM regardless of the source's channel count.
func (mp3Decoder) Decode(r io.Reader) (Result, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return Result{}, err
	}

	const frameBytes = 4096 // 1024 interleaved stereo int16 frames per read
	raw := make([]byte, frameBytes)
	samples := make([]float32, 0, 1<<16)

	for {
		n, err := d.Read(raw)
		if n > 0 {
			for i := 0; i+1 < n; i += 2 {
				v := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
				samples = append(samples, float32(v)/32768.0)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Samples:    samples,
		SampleRate: uint32(d.SampleRate()),
		Channels:   2,
	}, nil
}
