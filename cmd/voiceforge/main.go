// Command voiceforge is the CLI entrypoint for the VoiceForge terminal
// voice-modulation workbench: kong flag parsing with a styled help
// printer, a Bubbletea program, and a background goroutine bridging the
// worker's results into the TUI over a channel the Model reads.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jvidal/voiceforge/internal/cli"
	"github.com/jvidal/voiceforge/internal/config"
	"github.com/jvidal/voiceforge/internal/coordinator"
	"github.com/jvidal/voiceforge/internal/playback"
	"github.com/jvidal/voiceforge/internal/worker"
)

// version is set via ldflags at build time (dev builds default to "dev").
var version = "dev"

// CLI defines the command-line interface.
type CLI struct {
	Version    bool    `short:"v" help:"Show version information"`
	Debug      bool    `short:"d" help:"Enable debug logging to voiceforge-debug.log"`
	DeviceIn   int     `help:"Input device index (unused — VoiceForge only plays audio)" default:"-1"`
	DeviceOut  int     `help:"Output device index" default:"-1"`
	Gain       float64 `help:"Initial output gain in dB" default:"0"`
	File       string  `arg:"" name:"file" help:"Audio file to open" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("voiceforge"),
		kong.Description("Terminal voice-modulation workbench"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	_ = ctx

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if err := playback.InitAudio(); err != nil {
		cli.PrintError(fmt.Sprintf("audio init failed: %v", err))
		os.Exit(1)
	}
	defer playback.TerminateAudio()

	if cliArgs.Debug {
		debugLog, err := os.Create("voiceforge-debug.log")
		if err == nil {
			defer debugLog.Close()
			log.SetOutput(debugLog)
		}
	} else {
		// Stray log writes would corrupt the alt-screen TUI.
		log.SetOutput(io.Discard)
	}

	cfg := config.Load()
	if cliArgs.Gain != 0 {
		cfg.GainDB = cliArgs.Gain
	}
	deviceID := cliArgs.DeviceOut
	if deviceID < 0 {
		deviceID = cfg.OutputDeviceID
	}

	cmdCh := make(chan worker.Command, 32)
	resultCh := make(chan worker.Result, 32)
	w := worker.New(cmdCh, resultCh)
	go w.Run()

	bridgeCh := make(chan tea.Msg, 32)
	go func() {
		for r := range resultCh {
			bridgeCh <- coordinator.WrapResult(r)
		}
	}()

	model := coordinator.New(cmdCh, bridgeCh, playback.NewEngine(), cfg, deviceID, cliArgs.File)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}

	cmdCh <- worker.Shutdown{}
}
