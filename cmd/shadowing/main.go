package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/xopclabs/shadowing/internal/audio"
	"github.com/xopclabs/shadowing/internal/cli"
	"github.com/xopclabs/shadowing/internal/config"
	"github.com/xopclabs/shadowing/internal/server"
	"github.com/xopclabs/shadowing/internal/spectrogram"
	"github.com/xopclabs/shadowing/internal/store"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Serve   ServeCmd  `cmd:"" help:"Run the HTTP API server." default:"1"`
	Render  RenderCmd `cmd:"" help:"Render a spectrogram PNG from an audio file."`
	Version bool      `help:"Show version information"`
}

// ServeCmd runs the API server with configuration from the environment.
type ServeCmd struct {
	Port int `help:"Listen port, overrides SHADOWING_PORT" default:"0"`
}

func (c *ServeCmd) Run() error {
	cfg := config.Load()
	if c.Port != 0 {
		cfg.Port = c.Port
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("creating data directories: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	cli.PrintBanner()
	cli.PrintInfo("Data directory", cfg.DataDir)
	cli.PrintInfo("Port", fmt.Sprintf("%d", cfg.Port))

	server.Version = version
	return server.New(cfg, st).ListenAndServe()
}

// RenderCmd renders a single spectrogram without starting the server.
type RenderCmd struct {
	Input       string  `arg:"" name:"input" help:"Input audio file (wav, mp3, flac)"`
	Output      string  `arg:"" name:"output" help:"Output PNG file"`
	MaxDuration float64 `help:"Reference duration in seconds for width scaling" default:"0"`
}

func (c *RenderCmd) Run() error {
	if _, err := os.Stat(c.Input); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", c.Input)
	}

	samples, err := audio.Decode(c.Input)
	if err != nil {
		return fmt.Errorf("decoding audio: %w", err)
	}

	png, duration := spectrogram.Render(samples, c.MaxDuration)
	if err := os.WriteFile(c.Output, png, 0o644); err != nil {
		return fmt.Errorf("writing PNG: %w", err)
	}

	cli.PrintInfo("Duration", fmt.Sprintf("%.2fs", duration))
	cli.PrintInfo("Size", cli.FormatBytes(int64(len(png))))
	cli.PrintSuccess(fmt.Sprintf("Done! Output: %s", c.Output))
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("shadowing"),
		kong.Description("Language shadowing practice backend."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
