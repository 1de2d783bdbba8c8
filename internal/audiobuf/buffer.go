// Package audiobuf defines the interleaved PCM buffer type shared between
// the Coordinator and the Playback Engine, and the hot-swappable handle
// that publishes new buffers to the real-time read path without ever
// blocking it for more than one lock-acquisition attempt.
package audiobuf

import (
	"fmt"
	"sync"
)

// Buffer is interleaved PCM, immutable once constructed. Never mutate the
// Samples slice of a published Buffer — replace the whole value instead.
type Buffer struct {
	Samples    []float32
	SampleRate uint32
	Channels   uint16
}

// New validates and constructs a Buffer. samples.length must be a multiple
// of channels.
func New(samples []float32, sampleRate uint32, channels uint16) (*Buffer, error) {
	if channels == 0 {
		return nil, fmt.Errorf("audiobuf: channels must be >= 1")
	}
	if len(samples)%int(channels) != 0 {
		return nil, fmt.Errorf("audiobuf: samples length %d not a multiple of %d channels", len(samples), channels)
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Frames returns the number of interleaved frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / int(b.Channels)
}

// Handle is a reader-preferring lock over a *Buffer pointer. The audio
// callback path calls TryRead and falls back to silence on contention; the
// Coordinator is the sole writer, via Swap.
type Handle struct {
	mu  sync.RWMutex
	buf *Buffer
}

// NewHandle returns a Handle initialised to buf (which may be nil).
func NewHandle(buf *Buffer) *Handle {
	return &Handle{buf: buf}
}

// TryRead attempts a non-blocking read of the current buffer. ok is false
// if a writer currently holds the lock — callers (the audio callback) must
// treat this as "emit silence for this period", never block.
func (h *Handle) TryRead() (buf *Buffer, ok bool) {
	if !h.mu.TryRLock() {
		return nil, false
	}
	defer h.mu.RUnlock()
	return h.buf, true
}

// Swap replaces the published buffer. If rescale is non-nil it is invoked
// while the write lock is held, with the outgoing and incoming frame
// counts, so callers can atomically rescale a playback position alongside
// the publish.
func (h *Handle) Swap(next *Buffer, rescale func(oldFrames, newFrames int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	oldFrames := h.buf.Frames()
	h.buf = next
	if rescale != nil {
		rescale(oldFrames, next.Frames())
	}
}
