package playback

// This file is the real-time read path, built on PortAudio's blocking
// Write() API. writeLoop is the audio thread: per period it must not
// allocate, must not block on anything but the stream write itself, and
// must read the shared buffer handle only through a non-blocking attempt.

// writeLoop fills buf (device-channel interleaved) once per period and
// writes it to stream, until stopCh is closed. buf is reused across
// periods — no per-period allocation.
func writeLoop(stream paStream, buf []float32, deviceChannels int, state *State, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		fillPeriod(buf, deviceChannels, state)

		if err := stream.Write(); err != nil {
			return
		}
	}
}

// fillPeriod renders one period into out:
//
//	load live gain, looping, playing, position
//	acquire shared buffer via non-blocking read attempt
//	  on failure: fill output with silence for this period; return
//	for each frame in output:
//	  if not playing or position beyond end:
//	    if looping and buffer length > 0: position <- 0
//	    else: write silence, continue
//	  sample = buffer[position_in_frame] per output channel (modulo map)
//	  multiplied by live gain, clamped to [-1, 1]
//	  advance position by audio channel count
//	store position
func fillPeriod(out []float32, deviceChannels int, s *State) {
	if deviceChannels <= 0 {
		return
	}
	gain := s.liveGain()
	looping := s.LoopEnabled.Load()
	playing := s.Playing.Load()
	position := s.Position.Load()

	buf, ok := s.Handle.TryRead()
	if !ok || buf == nil || buf.Channels == 0 || len(buf.Samples) == 0 {
		zero(out)
		return
	}

	audioChannels := int(buf.Channels)
	frames := buf.Frames()
	periodFrames := len(out) / deviceChannels

	for i := 0; i < periodFrames; i++ {
		frameIdx := int(position) / audioChannels
		if !playing || frameIdx >= frames {
			if looping && frames > 0 {
				position = 0
				frameIdx = 0
			} else {
				for c := 0; c < deviceChannels; c++ {
					out[i*deviceChannels+c] = 0
				}
				continue
			}
		}

		base := frameIdx * audioChannels
		for c := 0; c < deviceChannels; c++ {
			srcChan := c % audioChannels
			sample := buf.Samples[base+srcChan] * gain
			out[i*deviceChannels+c] = clampFloat32(sample)
		}
		position += uint64(audioChannels)
	}

	s.Position.Store(position)
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// clampFloat32 clamps v to [-1.0, 1.0].
func clampFloat32(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
