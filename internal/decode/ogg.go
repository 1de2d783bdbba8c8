package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"
)

func init() { Register(FormatOGG, oggDecoder{}) }

type oggDecoder struct{}

// Decode reads an OGG/Vorbis stream via oggvorbis, which yields
// interleaved float32 PCM directly — no integer rescaling needed.
func (oggDecoder) Decode(r io.Reader) (Result, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return Result{}, err
	}

	buf := make([]float32, 4096)
	samples := make([]float32, 0, 1<<16)

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
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
		SampleRate: uint32(reader.SampleRate()),
		Channels:   uint16(reader.Channels()),
	}, nil
}
