package coordinator

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette and styles: a small named color set feeding a handful of
// reusable lipgloss.Style values rather than one-off inline styling at
// each call site.
var (
	primaryColor = lipgloss.Color("#6C5CE7")
	accentColor  = lipgloss.Color("#00CEC9")
	mutedColor   = lipgloss.Color("#888888")
	errorColor   = lipgloss.Color("#D63031")
	activeColor  = lipgloss.Color("#FDCB6E")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginTop(1)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(activeColor)
)

// renderWorkbench draws the main view: title, sliders, spectrum, status.
func (m Model) renderWorkbench() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("VoiceForge"))
	b.WriteString("\n")

	if m.currentPath == "" {
		b.WriteString(mutedStyle.Render("No file loaded — press 'o' to open one."))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("%s  %s\n", m.renderTransport(), m.currentPath))
	}

	b.WriteString(headerStyle.Render("Parameters"))
	b.WriteString("\n")
	b.WriteString(m.renderSliders())

	b.WriteString(headerStyle.Render("Spectrum"))
	b.WriteString("\n")
	b.WriteString(renderSpectrumBars(m.spectrumBins, m.width))
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(mutedStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("tab/shift+tab select · up/down adjust · space play/pause · a A/B · l loop · e export · o open · q quit"))
	return b.String()
}

func (m Model) renderTransport() string {
	playing := "paused"
	if m.state != nil && m.state.Playing.Load() {
		playing = "playing"
	}
	ab := "processed"
	if m.ab == abOriginal {
		ab = "original"
	}
	loop := ""
	if m.state != nil && m.state.LoopEnabled.Load() {
		loop = " loop"
	}
	return mutedStyle.Render(fmt.Sprintf("[%s/%s%s]", playing, ab, loop))
}

func (m Model) renderSliders() string {
	var b strings.Builder
	for i, s := range m.sliders {
		marker := "  "
		line := fmt.Sprintf("%-18s %s", s.Name, s.Format(&m))
		if i == m.activeSlide {
			marker = "> "
			line = activeStyle.Render(line)
		}
		b.WriteString(marker)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderSpectrumBars draws a coarse single-line bar graph of the FFT
// magnitudes, bucketing bins to fit the terminal width.
func renderSpectrumBars(magsDb []float64, width int) string {
	if len(magsDb) == 0 {
		return mutedStyle.Render("(silence)")
	}
	cols := width - 2
	if cols < 8 {
		cols = 40
	}
	if cols > len(magsDb) {
		cols = len(magsDb)
	}
	levels := " .:-=+*#%@"
	binsPerCol := len(magsDb) / cols
	if binsPerCol < 1 {
		binsPerCol = 1
	}

	var b strings.Builder
	for c := 0; c < cols; c++ {
		start := c * binsPerCol
		end := start + binsPerCol
		if end > len(magsDb) {
			end = len(magsDb)
		}
		peak := -300.0
		for _, v := range magsDb[start:end] {
			if v > peak {
				peak = v
			}
		}
		// Map roughly [-90dB, 0dB] onto the level ramp.
		norm := (peak + 90) / 90
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		idx := int(norm * float64(len(levels)-1))
		b.WriteByte(levels[idx])
	}
	return b.String()
}

// renderPicker draws the file-browser overlay.
func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Open file"))
	b.WriteString("\n")
	b.WriteString(m.picker.input)
	b.WriteString("\n\n")

	if m.picker.errMsg != "" {
		b.WriteString(errorStyle.Render(m.picker.errMsg))
		b.WriteString("\n\n")
	}

	for i, e := range m.picker.entries {
		marker := "  "
		name := e.Name
		if i == m.picker.highlight {
			marker = "> "
			name = activeStyle.Render(name)
		}
		b.WriteString(marker)
		b.WriteString(name)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("type to filter · enter select/descend · esc cancel"))
	return b.String()
}
