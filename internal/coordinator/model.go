// Package coordinator binds the workbench together as a Bubbletea Model:
// the main thread that owns input state, the two debounce deadlines, and
// the result-handling switch that turns Worker results into hot-swaps of
// the published audio buffer.
package coordinator

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jvidal/voiceforge/internal/audiobuf"
	"github.com/jvidal/voiceforge/internal/config"
	"github.com/jvidal/voiceforge/internal/export"
	"github.com/jvidal/voiceforge/internal/params"
	"github.com/jvidal/voiceforge/internal/playback"
	"github.com/jvidal/voiceforge/internal/spectrum"
	"github.com/jvidal/voiceforge/internal/worker"
)

const (
	resynthDebounce = 150 * time.Millisecond
	effectsDebounce = 80 * time.Millisecond
	statusLifetime  = 5 * time.Second
	tickInterval    = 33 * time.Millisecond // ~30fps
	seekStep        = 5 * time.Second
)

// abMode selects which buffer the handle is currently publishing:
// processed (the latest SynthesisDone result) or original (the unmodified
// mono analysis source).
type abMode int

const (
	abProcessed abMode = iota
	abOriginal
)

// pickerState is the file-browser overlay's own input and result state.
type pickerState struct {
	active    bool
	input     string
	entries   []worker.DirEntry
	highlight int
	errMsg    string
}

// Model is the Coordinator. It is constructed once by cmd/voiceforge and
// driven entirely through Bubbletea's Update loop — there is no separate
// goroutine or busy loop on the main thread.
type Model struct {
	cmdCh    chan<- worker.Command
	resultCh <-chan tea.Msg

	engine   *playback.Engine
	state    *playback.State
	sampler  *spectrum.Sampler
	cfg      config.Config
	deviceID int

	world  params.WorldSliderValues
	fx     params.EffectsParams
	gainDb float64

	resynthDeadline time.Time
	effectsDeadline time.Time

	sliders     []slider
	activeSlide int

	currentPath      string
	awaitingLoadPath string
	originalMono     *audiobuf.Buffer
	processedBuf     *audiobuf.Buffer
	ab               abMode

	picker pickerState

	statusMsg string
	statusAt  time.Time

	spectrumBins []float64

	width, height int
	quitting      bool
}

// New builds a Model. resultCh is fed by the caller's pump goroutine,
// which wraps each worker.Result via WrapResult before sending it into the
// Bubbletea program — Model never reads the Worker's own result channel
// directly, keeping it decoupled from the channel's concrete element type.
// initialFile, if non-empty, is prechecked immediately (the CLI's optional
// positional file argument).
func New(cmdCh chan<- worker.Command, resultCh <-chan tea.Msg, engine *playback.Engine, cfg config.Config, deviceID int, initialFile string) Model {
	m := Model{
		cmdCh:    cmdCh,
		resultCh: resultCh,
		engine:   engine,
		sampler:  spectrum.NewSampler(),
		cfg:      cfg,
		deviceID: deviceID,
		world:    params.DefaultWorldSliderValues(),
		fx:       params.DefaultEffectsParams(),
		gainDb:   cfg.GainDB,
		sliders:  newSliders(),
		ab:       abProcessed,
	}
	if initialFile != "" {
		m.awaitingLoadPath = initialFile
		m.cmdCh <- worker.PrecheckAudio{Path: initialFile}
	}
	return m
}

// Init starts the result pump and the render tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForResult(m.resultCh), tick())
}

func waitForResult(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// Update dispatches key input, Worker results, and tick events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		m.applyResult(msg.result)
		return m, waitForResult(m.resultCh)

	case tickMsg:
		now := time.Time(msg)
		m.checkDebounce(now)
		if m.statusMsg != "" && now.Sub(m.statusAt) > statusLifetime {
			m.statusMsg = ""
		}
		if m.state != nil && m.state.Playing.Load() {
			m.spectrumBins = m.sampler.Sample(m.state)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.active {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.saveConfig()
		m.engine.Stop()
		return m, tea.Quit
	case "o":
		m.picker.active = true
		m.picker.input = ""
		m.picker.entries = nil
		m.picker.highlight = 0
		m.picker.errMsg = ""
		m.cmdCh <- worker.ScanDir{Prefix: ""}
		return m, nil
	case "tab":
		m.activeSlide = (m.activeSlide + 1) % len(m.sliders)
		return m, nil
	case "shift+tab":
		m.activeSlide = (m.activeSlide - 1 + len(m.sliders)) % len(m.sliders)
		return m, nil
	case "up", "k":
		m.adjustActive(1)
		return m, nil
	case "down", "j":
		m.adjustActive(-1)
		return m, nil
	case " ":
		m.togglePlayPause()
		return m, nil
	case "a":
		m.toggleAB()
		return m, nil
	case "l":
		m.toggleLoop()
		return m, nil
	case "e":
		m.handleExport()
		return m, nil
	case "left":
		m.seekBy(-seekStep)
		return m, nil
	case "right":
		m.seekBy(seekStep)
		return m, nil
	case "home":
		m.seekHome()
		return m, nil
	case "end":
		m.seekEnd()
		return m, nil
	}
	return m, nil
}

// View renders the workbench.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing…\n"
	}
	if m.picker.active {
		return m.renderPicker()
	}
	return m.renderWorkbench()
}

// applyResult folds one Worker result into the model, discarding stale
// ones via their path/prefix echoes.
func (m *Model) applyResult(r worker.Result) {
	switch v := r.(type) {
	case worker.AudioReady:
		if v.Path != m.currentPath {
			return
		}
		m.publishBuffer(v.Buffer)
		m.cmdCh <- worker.Resynthesize{World: m.world, FX: m.fx}

	case worker.AnalysisDone:
		m.originalMono = v.MonoOriginal

	case worker.SynthesisDone:
		m.processedBuf = v.Buffer
		if m.ab == abOriginal {
			return
		}
		m.publishBuffer(v.Buffer)

	case worker.Status:
		m.statusMsg = v.Message
		m.statusAt = time.Now()

	case worker.DirectoryListing:
		if v.PrefixEcho != m.picker.input {
			return
		}
		m.picker.entries = v.Entries
		m.picker.highlight = 0
		m.picker.errMsg = ""

	case worker.AudioPrecheckOk:
		if v.Path != m.awaitingLoadPath {
			return
		}
		m.prepareForLoad()
		m.currentPath = v.Path
		m.picker.active = false
		m.cmdCh <- worker.Load{Path: v.Path}

	case worker.AudioPrecheckFail:
		if v.Path != m.awaitingLoadPath {
			return
		}
		m.picker.errMsg = v.Reason
		m.awaitingLoadPath = ""
	}
}

// prepareForLoad resets per-file UI state ahead of a new Load. It never
// touches the currently playing buffer — the previous
// file keeps playing until the new one's AudioReady lands.
func (m *Model) prepareForLoad() {
	m.statusMsg = ""
	m.statusAt = time.Time{}
	m.spectrumBins = nil
	m.ab = abProcessed
	m.originalMono = nil
	m.processedBuf = nil
	m.awaitingLoadPath = ""
	m.resynthDeadline = time.Time{}
	m.effectsDeadline = time.Time{}
}

// publishBuffer opens the device stream on the very first playable buffer
// and hot-swaps it thereafter.
func (m *Model) publishBuffer(buf *audiobuf.Buffer) {
	if m.state == nil {
		state, err := m.engine.Start(buf, m.deviceID)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Device error: %v", err)
			m.statusAt = time.Now()
			return
		}
		state.SetLiveGain(params.GainDBToLinear(m.gainDb))
		state.LoopEnabled.Store(m.cfg.LoopPlayback)
		m.state = state
		return
	}
	m.engine.SwapAudio(buf, m.state)
}

// checkDebounce fires whichever debounce deadline has passed: resynthesis
// takes priority (it already reapplies effects), so only one command is
// ever dispatched per tick.
func (m *Model) checkDebounce(now time.Time) {
	if !m.resynthDeadline.IsZero() && !now.Before(m.resynthDeadline) {
		m.resynthDeadline = time.Time{}
		m.effectsDeadline = time.Time{}
		m.cmdCh <- worker.Resynthesize{World: m.world, FX: m.fx}
		return
	}
	if !m.effectsDeadline.IsZero() && !now.Before(m.effectsDeadline) {
		m.effectsDeadline = time.Time{}
		m.cmdCh <- worker.ReapplyEffects{FX: m.fx}
	}
}

func (m *Model) armResynth(now time.Time) {
	m.resynthDeadline = now.Add(resynthDebounce)
	m.effectsDeadline = time.Time{}
}

func (m *Model) armEffects(now time.Time) {
	m.effectsDeadline = now.Add(effectsDebounce)
}

// adjustActive nudges the selected slider by one step in dir's sign and
// arms the debounce (or writes live gain) appropriate to its kind.
func (m *Model) adjustActive(dir float64) {
	if len(m.sliders) == 0 {
		return
	}
	s := m.sliders[m.activeSlide]
	v := s.Get(m) + dir*s.Step
	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	s.Set(m, v)

	switch s.Kind {
	case kindWorld:
		m.armResynth(time.Now())
	case kindEffects:
		m.armEffects(time.Now())
	case kindGain:
		if m.state != nil {
			m.state.SetLiveGain(params.GainDBToLinear(v))
		}
	}
}

func (m *Model) togglePlayPause() {
	if m.state == nil {
		return
	}
	m.state.Playing.Store(!m.state.Playing.Load())
}

func (m *Model) toggleLoop() {
	if m.state == nil {
		return
	}
	m.state.LoopEnabled.Store(!m.state.LoopEnabled.Load())
}

// toggleAB swaps the published handle between the original mono source and
// the latest processed buffer, guarded on both existing.
func (m *Model) toggleAB() {
	if m.state == nil || m.originalMono == nil || m.processedBuf == nil {
		return
	}
	if m.ab == abProcessed {
		m.ab = abOriginal
		m.engine.SwapAudio(m.originalMono, m.state)
	} else {
		m.ab = abProcessed
		m.engine.SwapAudio(m.processedBuf, m.state)
	}
}

func (m *Model) seekBy(d time.Duration) {
	if m.state == nil {
		return
	}
	buf, ok := m.state.Handle.TryRead()
	if !ok || buf == nil || buf.Channels == 0 || buf.SampleRate == 0 {
		return
	}
	channels := int(buf.Channels)
	frames := buf.Frames()
	deltaFrames := int(d.Seconds() * float64(buf.SampleRate))

	curFrame := int(m.state.Position.Load()) / channels
	newFrame := curFrame + deltaFrames
	if newFrame < 0 {
		newFrame = 0
	}
	if newFrame >= frames {
		newFrame = frames - 1
	}
	if newFrame < 0 {
		newFrame = 0
	}
	m.state.Position.Store(uint64(newFrame * channels))
}

func (m *Model) seekHome() {
	if m.state != nil {
		m.state.Position.Store(0)
	}
}

func (m *Model) seekEnd() {
	if m.state == nil {
		return
	}
	buf, ok := m.state.Handle.TryRead()
	if !ok || buf == nil || buf.Channels == 0 {
		return
	}
	frames := buf.Frames()
	if frames == 0 {
		m.state.Position.Store(0)
		return
	}
	last := (frames - 1) * int(buf.Channels)
	m.state.Position.Store(uint64(last))
}

// handleExport bakes the current live gain into a copy of the published
// buffer and writes 16-bit PCM, auto-incrementing the filename on
// collision.
func (m *Model) handleExport() {
	if m.state == nil {
		m.setStatus("Nothing to export")
		return
	}
	buf, ok := m.state.Handle.TryRead()
	if !ok || buf == nil || len(buf.Samples) == 0 {
		m.setStatus("Export failed: no audio loaded")
		return
	}
	gain := math.Float32frombits(m.state.LiveGain.Load())
	gained := export.ApplyGain(buf.Samples, gain)
	outBuf, err := audiobuf.New(gained, buf.SampleRate, buf.Channels)
	if err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err))
		return
	}

	path := export.DefaultPath(m.currentPath)
	path, err = export.NextAvailablePath(path)
	if err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err))
		return
	}
	if err := export.WriteWAV(path, outBuf); err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err))
		return
	}
	m.setStatus("Exported to " + path)
}

// saveConfig persists session preferences on quit.
func (m *Model) saveConfig() {
	m.cfg.OutputDeviceID = m.deviceID
	m.cfg.GainDB = m.gainDb
	if m.state != nil {
		m.cfg.LoopPlayback = m.state.LoopEnabled.Load()
	}
	if dir := filepath.Dir(m.currentPath); dir != "." && dir != "" {
		m.cfg.LastDirectory = dir
	}
	_ = config.Save(m.cfg)
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusAt = time.Now()
}

// handlePickerKey processes keys while the file-picker overlay is active.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.saveConfig()
		m.engine.Stop()
		return m, tea.Quit
	case "esc":
		m.picker.active = false
		return m, nil
	case "enter":
		m.pickerSelectHighlighted()
		return m, nil
	case "up":
		if m.picker.highlight > 0 {
			m.picker.highlight--
		}
		return m, nil
	case "down":
		if m.picker.highlight < len(m.picker.entries)-1 {
			m.picker.highlight++
		}
		return m, nil
	case "backspace":
		m.pickerBackspace()
		return m, nil
	default:
		s := msg.String()
		if len([]rune(s)) == 1 {
			m.picker.input += s
			m.dispatchScan()
		}
		return m, nil
	}
}

func (m *Model) pickerBackspace() {
	if m.picker.input == "" {
		return
	}
	runes := []rune(m.picker.input)
	m.picker.input = string(runes[:len(runes)-1])
	m.dispatchScan()
}

func (m *Model) dispatchScan() {
	m.cmdCh <- worker.ScanDir{Prefix: m.picker.input}
}

// pickerSelectHighlighted descends into a highlighted directory entry
// (re-scanning) or prechecks a highlighted file entry.
func (m *Model) pickerSelectHighlighted() {
	if m.picker.highlight < 0 || m.picker.highlight >= len(m.picker.entries) {
		return
	}
	entry := m.picker.entries[m.picker.highlight]

	base := m.picker.input
	if !strings.HasSuffix(base, string(filepath.Separator)) {
		base = filepath.Dir(base) + string(filepath.Separator)
	}
	full := base + entry.Name

	if entry.IsDir {
		m.picker.input = full
		m.dispatchScan()
		return
	}

	m.awaitingLoadPath = full
	m.picker.errMsg = ""
	m.cmdCh <- worker.PrecheckAudio{Path: full}
}
