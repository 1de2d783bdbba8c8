package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

func TestApplyGainClamps(t *testing.T) {
	out := ApplyGain([]float32{0.5, -0.5, 1.0}, 4.0)
	for _, v := range out {
		if v > 1 || v < -1 {
			t.Errorf("ApplyGain produced out-of-range sample %v", v)
		}
	}
}

func TestApplyGainScales(t *testing.T) {
	out := ApplyGain([]float32{0.25}, 2.0)
	if out[0] != 0.5 {
		t.Errorf("out[0] = %v, want 0.5", out[0])
	}
}

func TestDefaultPath(t *testing.T) {
	got := DefaultPath("/tmp/audio/take1.wav")
	want := filepath.Join("/tmp/audio", "take1_processed.wav")
	if got != want {
		t.Errorf("DefaultPath = %q, want %q", got, want)
	}
}

func TestNextAvailablePathNoCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")
	got, err := NextAvailablePath(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("NextAvailablePath = %q, want %q", got, path)
	}
}

func TestNextAvailablePathIncrementsOnCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := NextAvailablePath(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "out_2.wav")
	if got != want {
		t.Errorf("NextAvailablePath = %q, want %q", got, want)
	}
}

func TestWriteWAVRoundTripsChannelsAndRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	buf, err := audiobuf.New([]float32{0.5, -0.5, 1.0, -1.0}, 44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(path, buf); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty WAV file")
	}
}

func TestToInt16Clamps(t *testing.T) {
	if got := toInt16(2.0); got != 32767 {
		t.Errorf("toInt16(2.0) = %d, want 32767", got)
	}
	if got := toInt16(-2.0); got != -32767 {
		t.Errorf("toInt16(-2.0) = %d, want -32767", got)
	}
}
