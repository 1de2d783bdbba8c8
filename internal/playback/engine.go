// Package playback owns the output device stream: a real-time write loop
// that reads interleaved PCM through a hot-swappable buffer handle,
// applying live gain from a lock-free atomic, never blocking.
//
// PortAudio's blocking Write() API is used rather than a native callback
// closure; the write-loop goroutine is the real-time thread, and it must
// not allocate per period and must never block on anything but the
// stream write itself.
package playback

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/jvidal/voiceforge/internal/audiobuf"
)

// defaultFramesPerBuffer is the period size requested of PortAudio: a
// conservative, low-latency fixed period (~5.8ms at 44.1kHz).
const defaultFramesPerBuffer = 256

// paStream abstracts a PortAudio stream for testing.
type paStream interface {
	Start() error
	Stop() error
	Close() error
	Write() error
}

// Engine owns the output device stream and the single write-loop
// goroutine. It holds no audio data itself — that lives in the State's
// audiobuf.Handle — so swap_audio never needs to touch the Engine.
type Engine struct {
	mu             sync.Mutex
	stream         paStream
	deviceChannels int
	periodBuf      []float32
	stopCh         chan struct{}
	wg             sync.WaitGroup
	running        bool
}

// NewEngine returns a ready-to-use, stopped Engine.
func NewEngine() *Engine { return &Engine{} }

// Start opens a device stream (deviceID selects an output device index;
// -1 uses the PortAudio default) and begins the write loop against a
// freshly constructed State wrapping initial. The device's output channel
// count is discovered from PortAudio.
func (e *Engine) Start(initial *audiobuf.Buffer, deviceID int) (*State, error) {
	state := NewState(initial)
	if err := e.open(initial, deviceID); err != nil {
		return nil, err
	}
	e.run(state)
	return state, nil
}

// Rebuild tears down the current stream (if any) and opens a new one,
// reusing the atomics (Playing, LiveGain, LoopEnabled) from existing but
// starting Position at 0 against the new buffer. This is the fallback
// path used only when hot-swap (SwapAudio) is unavailable, e.g. the
// device needs reopening for a different channel count.
func (e *Engine) Rebuild(next *audiobuf.Buffer, existing *State, deviceID int) (*State, error) {
	e.Stop()

	state := NewState(next)
	if existing != nil {
		state.Playing.Store(existing.Playing.Load())
		state.LiveGain.Store(existing.LiveGain.Load())
		state.LoopEnabled.Store(existing.LoopEnabled.Load())
	}
	if err := e.open(next, deviceID); err != nil {
		return nil, err
	}
	e.run(state)
	return state, nil
}

// SwapAudio replaces state's published buffer in O(1) via the handle's
// reader-preferring lock, rescaling Position proportionally so the write
// loop never sees an out-of-range index.
func (e *Engine) SwapAudio(next *audiobuf.Buffer, state *State) {
	oldBuf, _ := state.Handle.TryRead()
	oldChannels := 1
	if oldBuf != nil && oldBuf.Channels > 0 {
		oldChannels = int(oldBuf.Channels)
	}
	newChannels := 1
	if next != nil && next.Channels > 0 {
		newChannels = int(next.Channels)
	}

	state.Handle.Swap(next, func(oldFrames, newFrames int) {
		if newFrames <= 0 {
			state.Position.Store(0)
			return
		}
		oldPos := int(state.Position.Load())
		oldFrameIdx := 0
		if oldChannels > 0 {
			oldFrameIdx = oldPos / oldChannels
		}
		newFrameIdx := 0
		if oldFrames > 0 {
			newFrameIdx = (oldFrameIdx * newFrames) / oldFrames
		}
		if newFrameIdx >= newFrames {
			newFrameIdx = newFrames - 1
		}
		if newFrameIdx < 0 {
			newFrameIdx = 0
		}
		state.Position.Store(uint64(newFrameIdx * newChannels))
	})
}

// open resolves the output device, opens and starts the stream, and
// stores the device's channel count.
func (e *Engine) open(initial *audiobuf.Buffer, deviceID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("playback: list devices: %w", err)
	}
	outputDev, err := resolveDevice(devices, deviceID, portaudio.DefaultOutputDevice)
	if err != nil {
		return fmt.Errorf("playback: resolve output device: %w", err)
	}

	channels := outputDev.MaxOutputChannels
	if channels <= 0 {
		channels = 2
	}
	if channels > 2 {
		channels = 2
	}

	sampleRate := float64(44100)
	if initial != nil && initial.SampleRate > 0 {
		sampleRate = float64(initial.SampleRate)
	}

	buf := make([]float32, defaultFramesPerBuffer*channels)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: channels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: defaultFramesPerBuffer,
	}
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("playback: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("playback: start stream: %w", err)
	}

	e.stream = stream
	e.deviceChannels = channels
	e.periodBuf = buf
	log.Printf("[playback] started output=%s channels=%d", outputDev.Name, channels)
	return nil
}

// resolveDevice returns the device at idx if valid, otherwise calls
// fallback.
func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

// run starts the write-loop goroutine against state.
func (e *Engine) run(state *State) {
	e.mu.Lock()
	e.stopCh = make(chan struct{})
	e.running = true
	stream := e.stream
	channels := e.deviceChannels
	buf := e.periodBuf
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		writeLoop(stream, buf, channels, state, e.stopCh)
	}()
}

// Stop halts the write loop and closes the device stream. Safe to call
// even if Start/Rebuild was never called.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopCh := e.stopCh
	stream := e.stream
	e.mu.Unlock()

	close(stopCh)
	if stream != nil {
		stream.Stop()
	}
	e.wg.Wait()
	if stream != nil {
		stream.Close()
	}

	e.mu.Lock()
	e.stream = nil
	e.mu.Unlock()
}
