package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jvidal/voiceforge/internal/audiobuf"
	"github.com/jvidal/voiceforge/internal/decode"
	"github.com/jvidal/voiceforge/internal/effects"
	"github.com/jvidal/voiceforge/internal/modifier"
	"github.com/jvidal/voiceforge/internal/params"
	"github.com/jvidal/voiceforge/internal/vocoder"
)

// maxScanEntries is the hard cap on ScanDir results.
const maxScanEntries = 1000

// snapshot is the Worker-private analysis/synthesis state. The vocoder
// params never cross the command/result channels; only the Worker ever
// touches them.
type snapshot struct {
	sampleRate     uint32
	originalMono   *audiobuf.Buffer
	vocoderParams  *vocoder.Params
	postSynthCache *audiobuf.Buffer
}

// Worker is the single long-lived goroutine serving Commands and
// producing Results.
type Worker struct {
	cmdCh    <-chan Command
	resultCh chan<- Result
	adapter  *vocoder.Adapter
	snapshot snapshot
}

// New returns a Worker reading from cmdCh and publishing to resultCh.
// Call Run in its own goroutine.
func New(cmdCh <-chan Command, resultCh chan<- Result) *Worker {
	return &Worker{cmdCh: cmdCh, resultCh: resultCh, adapter: vocoder.NewAdapter()}
}

// Run drains cmdCh until a Shutdown command or the channel closes. Every
// command is processed under panic containment: a panic in any handler
// becomes a Status result and the loop continues.
func (w *Worker) Run() {
	for {
		cmd, ok := <-w.cmdCh
		if !ok {
			return
		}
		if w.dispatch(cmd) {
			return
		}
	}
}

func (w *Worker) dispatch(cmd Command) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			w.resultCh <- Status{Message: fmt.Sprintf("Worker panic: %v", r)}
		}
	}()

	switch c := cmd.(type) {
	case Shutdown:
		return true
	case Load:
		w.handleLoad(c.Path)
	case ScanDir:
		w.handleScanDir(c.Prefix)
	case PrecheckAudio:
		w.handlePrecheck(c.Path)
	case Resynthesize:
		return w.handleParamUpdate(&c.World, c.FX)
	case ReapplyEffects:
		return w.handleParamUpdate(nil, c.FX)
	}
	return false
}

// handleParamUpdate implements the drain-and-coalesce behavior shared by
// Resynthesize and ReapplyEffects: it keeps pulling
// queued commands non-blockingly, retaining only the latest world/fx
// pair, processing ScanDir/PrecheckAudio inline, and abandoning the
// in-progress resynthesis if a Load arrives. initialWorld is nil when
// the triggering command was ReapplyEffects (no World value yet seen).
func (w *Worker) handleParamUpdate(initialWorld *params.WorldSliderValues, initialFX params.EffectsParams) (stop bool) {
	world := initialWorld
	fx := initialFX

drain:
	for {
		select {
		case cmd, ok := <-w.cmdCh:
			if !ok {
				break drain
			}
			switch c := cmd.(type) {
			case Resynthesize:
				wv := c.World
				world = &wv
				fx = c.FX
			case ReapplyEffects:
				fx = c.FX
			case Load:
				w.handleLoad(c.Path)
				return false
			case ScanDir:
				w.handleScanDir(c.Prefix)
			case PrecheckAudio:
				w.handlePrecheck(c.Path)
			case Shutdown:
				return true
			}
		default:
			break drain
		}
	}

	if world != nil {
		w.runResynthesize(*world, fx)
	} else {
		w.runReapplyEffects(fx)
	}
	return false
}

// handleLoad runs the load sequence: decode, publish the
// raw buffer, downmix to mono, analyze, and publish the analysis result.
// Any failure emits a Status and aborts the remaining steps.
func (w *Worker) handleLoad(path string) {
	w.resultCh <- Status{Message: "Decoding…"}

	res, err := decode.DecodeFile(path)
	if err != nil {
		w.resultCh <- Status{Message: fmt.Sprintf("%v", err)}
		return
	}
	buf, err := audiobuf.New(res.Samples, res.SampleRate, res.Channels)
	if err != nil {
		w.resultCh <- Status{Message: fmt.Sprintf("%v", err)}
		return
	}
	w.resultCh <- AudioReady{Buffer: buf, Path: path}

	monoF64 := vocoder.DownmixToMono(buf.Samples, int(buf.Channels))
	p, err := w.adapter.Analyze(monoF64, int(buf.SampleRate))
	if err != nil {
		w.resultCh <- Status{Message: fmt.Sprintf("%v", err)}
		return
	}

	monoBuf := float64ToMonoBuffer(monoF64, buf.SampleRate)
	w.snapshot = snapshot{
		sampleRate:    buf.SampleRate,
		originalMono:  monoBuf,
		vocoderParams: p,
	}
	w.resultCh <- AnalysisDone{MonoOriginal: monoBuf}
}

// runResynthesize runs the full modifier -> synthesis -> effects
// pipeline, or the neutral shortcut straight from the mono original.
func (w *Worker) runResynthesize(wv params.WorldSliderValues, fx params.EffectsParams) {
	if w.snapshot.originalMono == nil {
		return
	}
	var monoF64 []float64

	if wv.IsNeutral() || wv.Bypass {
		monoF64 = monoBufferToFloat64(w.snapshot.originalMono)
		w.snapshot.postSynthCache = w.snapshot.originalMono
	} else {
		if w.snapshot.vocoderParams == nil {
			w.resultCh <- Status{Message: "Synthesis error: no analysis available"}
			return
		}
		modified := modifier.Apply(w.snapshot.vocoderParams, wv)
		synthesized, err := w.adapter.Synthesize(modified, int(w.snapshot.sampleRate))
		if err != nil {
			w.resultCh <- Status{Message: fmt.Sprintf("Synthesis error: %v", err)}
			return
		}
		monoF64 = synthesized
		w.snapshot.postSynthCache = float64ToMonoBuffer(synthesized, w.snapshot.sampleRate)
	}

	final := effects.Apply(monoF64, float64(w.snapshot.sampleRate), fx)
	w.resultCh <- SynthesisDone{Buffer: float64ToMonoBuffer(final, w.snapshot.sampleRate)}
}

// runReapplyEffects re-runs only the effects chain against the cached
// post-synthesis buffer, silently skipping if nothing has been
// synthesized yet.
func (w *Worker) runReapplyEffects(fx params.EffectsParams) {
	if w.snapshot.postSynthCache == nil {
		return
	}
	monoF64 := monoBufferToFloat64(w.snapshot.postSynthCache)
	final := effects.Apply(monoF64, float64(w.snapshot.sampleRate), fx)
	w.resultCh <- SynthesisDone{Buffer: float64ToMonoBuffer(final, w.snapshot.sampleRate)}
}

// handleScanDir lists a directory for the file picker: hard cap of
// 1000 entries, prefix-matched filtering with
// dotfile hiding unless the prefix itself starts with ".", directories
// sorted before files, directories annotated with a trailing separator.
func (w *Worker) handleScanDir(prefix string) {
	dir := prefix
	filter := ""
	if prefix == "" {
		dir = "."
	} else if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		dir = filepath.Dir(prefix)
		filter = filepath.Base(prefix)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.resultCh <- Status{Message: fmt.Sprintf("%v", err)}
		return
	}

	showDotfiles := strings.HasPrefix(filter, ".")
	var dirs, files []DirEntry
	for _, e := range entries {
		name := e.Name()
		if !showDotfiles && strings.HasPrefix(name, ".") {
			continue
		}
		if filter != "" && !strings.HasPrefix(name, filter) {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, DirEntry{Name: name + string(filepath.Separator), IsDir: true})
		} else {
			files = append(files, DirEntry{Name: name})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	combined := append(dirs, files...)
	if len(combined) > maxScanEntries {
		combined = combined[:maxScanEntries]
	}

	w.resultCh <- DirectoryListing{PrefixEcho: prefix, Entries: combined}
}

// handlePrecheck sniffs the file's magic bytes, rejecting unsupported
// formats before the expensive load sequence runs.
func (w *Worker) handlePrecheck(path string) {
	f, err := decode.SniffFile(path)
	if err != nil {
		w.resultCh <- AudioPrecheckFail{Path: path, Reason: err.Error()}
		return
	}
	if f == decode.FormatUnknown {
		w.resultCh <- AudioPrecheckFail{Path: path, Reason: "unrecognized audio format"}
		return
	}
	w.resultCh <- AudioPrecheckOk{Path: path}
}

func monoBufferToFloat64(b *audiobuf.Buffer) []float64 {
	if b == nil {
		return nil
	}
	out := make([]float64, len(b.Samples))
	for i, v := range b.Samples {
		out[i] = float64(v)
	}
	return out
}

func float64ToMonoBuffer(samples []float64, sampleRate uint32) *audiobuf.Buffer {
	f32 := make([]float32, len(samples))
	for i, v := range samples {
		f32[i] = float32(v)
	}
	buf, _ := audiobuf.New(f32, sampleRate, 1)
	return buf
}
