package coordinator

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jvidal/voiceforge/internal/worker"
)

// resultMsg wraps a worker.Result as a tea.Msg so it can be delivered to
// Model.Update through the Model's result channel.
type resultMsg struct{ result worker.Result }

// WrapResult wraps a Worker result for delivery to the Model. The caller
// (cmd/voiceforge) runs a goroutine that reads the Worker's result channel
// and sends coordinator.WrapResult(r) for each one on the channel passed to
// New, which the Model drains one message at a time via waitForResult.
func WrapResult(r worker.Result) tea.Msg { return resultMsg{result: r} }

// tickMsg drives the ~30fps render/debounce loop.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
