// Package worker implements the processing worker: the single long-lived
// goroutine that owns the large analysis state, drains and coalesces
// parameter updates, runs the vocoder analysis/synthesis cache, and
// produces new playback buffers.
package worker

import (
	"github.com/jvidal/voiceforge/internal/audiobuf"
	"github.com/jvidal/voiceforge/internal/params"
)

// Command is the sealed set of inputs the Worker accepts.
type Command interface{ isCommand() }

// Load decodes path and runs the Load sequence (decode, analyze).
type Load struct{ Path string }

// ScanDir lists a directory prefix for the file picker.
type ScanDir struct{ Prefix string }

// PrecheckAudio sniffs path's magic bytes before a Load is dispatched.
type PrecheckAudio struct{ Path string }

// Resynthesize runs the full Modifier -> Vocoder.Synthesize -> Effects
// pipeline (or the neutral shortcut) for the given parameters.
type Resynthesize struct {
	World params.WorldSliderValues
	FX    params.EffectsParams
}

// ReapplyEffects re-runs only the Effects Chain against the cached
// post-synthesis buffer.
type ReapplyEffects struct{ FX params.EffectsParams }

// Shutdown terminates the Worker loop.
type Shutdown struct{}

func (Load) isCommand()           {}
func (ScanDir) isCommand()        {}
func (PrecheckAudio) isCommand()  {}
func (Resynthesize) isCommand()   {}
func (ReapplyEffects) isCommand() {}
func (Shutdown) isCommand()       {}

// Result is the sealed set of outputs the Worker publishes.
type Result interface{ isResult() }

// AudioReady carries a freshly decoded buffer and the path it came from.
type AudioReady struct {
	Buffer *audiobuf.Buffer
	Path   string
}

// AnalysisDone carries the mono original used for A/B comparison.
type AnalysisDone struct{ MonoOriginal *audiobuf.Buffer }

// SynthesisDone carries a newly synthesized/effected buffer.
type SynthesisDone struct{ Buffer *audiobuf.Buffer }

// Status is a human-readable progress or error message.
type Status struct{ Message string }

// DirectoryListing echoes the prefix it was requested for, so the
// Coordinator can discard stale results.
type DirectoryListing struct {
	PrefixEcho string
	Entries    []DirEntry
}

// DirEntry is one file-picker row.
type DirEntry struct {
	Name  string
	IsDir bool
}

// AudioPrecheckOk reports path passed the magic-byte sniff.
type AudioPrecheckOk struct{ Path string }

// AudioPrecheckFail reports path failed the magic-byte sniff, with a
// human-readable reason.
type AudioPrecheckFail struct {
	Path   string
	Reason string
}

func (AudioReady) isResult()        {}
func (AnalysisDone) isResult()      {}
func (SynthesisDone) isResult()     {}
func (Status) isResult()            {}
func (DirectoryListing) isResult()  {}
func (AudioPrecheckOk) isResult()   {}
func (AudioPrecheckFail) isResult() {}
