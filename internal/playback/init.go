package playback

import "github.com/gordonklaus/portaudio"

// InitAudio initializes the PortAudio runtime. Must be called once before
// any Engine is started; pair with TerminateAudio at process exit.
func InitAudio() error {
	return portaudio.Initialize()
}

// TerminateAudio releases the PortAudio runtime.
func TerminateAudio() {
	portaudio.Terminate()
}
