// termania is a terminal rhythm game for osu!mania and StepMania charts.
//
// Usage:
//
//	termania play <beatmap>     - Play a chart (difficulty menu when there are several)
//	termania info <beatmap>     - Show the difficulties in a chart file
//	termania scores <beatmap>   - Show local results for a chart
//	termania calibrate          - Measure audio latency against a metronome
//	termania replay <beatmap> <trace> - Re-judge a recorded input trace
//	termania formats            - List supported chart formats
//	termania serve              - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>    - Config file (default: ~/.termania/config.yaml)
//	--db <path>        - Results database (enables history)
//	--log-file <path>  - Log file (default: ~/.termania/termania.log)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/storage"

	// Import formats to register them
	_ "github.com/vovakirdan/termania/internal/formats/osu"
	_ "github.com/vovakirdan/termania/internal/formats/osz"
	_ "github.com/vovakirdan/termania/internal/formats/stepmania"
)

var (
	// Global flags
	flagConfig  string
	flagDBPath  string
	flagLogFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "termania",
	Short: "termania - a vertical scrolling rhythm game for the terminal",
	Long: `termania plays osu!mania (.osu, .osz) and StepMania (.sm) charts in
the terminal, judged against the music clock.

Available commands:
  play       - Play a chart
  info       - Show the difficulties in a chart file
  scores     - View local results
  calibrate  - Find your audio offset
  replay     - Re-judge a recorded input trace
  formats    - List supported chart formats
  serve      - Start SSH server for remote play

Examples:
  termania play ./songs/song.osz
  termania play chart.osu --offset -25
  termania calibrate --bpm 100
  termania serve --beatmaps ./songs`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to results database (overrides storage.db_path)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Path to log file (overrides logging.file)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config and key bindings and applies flag overrides.
func loadConfig(o config.Overrides) (config.AppConfig, config.Keybinds, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.ApplyOverrides(o); err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	kb, err := config.LoadKeybinds(cfg.Input.KeybindsFile)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, kb, nil
}

// newFileLogger opens the log file. The TUI owns stdout, so play logs go
// to a file instead.
func newFileLogger(cfg config.AppConfig) (*log.Logger, func(), error) {
	path := cfg.Logging.File
	if flagLogFile != "" {
		path = flagLogFile
	}
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "termania",
		Level:           logLevel(cfg),
	})
	return logger, func() { f.Close() }, nil
}

func logLevel(cfg config.AppConfig) log.Level {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// dbPath returns the results database path, or "" when history is off.
func dbPath(cfg config.AppConfig) string {
	if flagDBPath != "" {
		return flagDBPath
	}
	if cfg.Storage.Enabled {
		return cfg.Storage.DBPath
	}
	return ""
}

// openStore opens the results database if one is configured. Failure is
// reported and play continues without history.
func openStore(cfg config.AppConfig) *storage.Store {
	path := dbPath(cfg)
	if path == "" {
		return nil
	}
	store, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		return nil
	}
	return store
}

// runtimeConfig reads the terminal size.
func runtimeConfig(cfg config.AppConfig) core.RuntimeConfig {
	rt := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rt = rt.WithSize(w, h)
	}
	rt.FPS = cfg.Visual.FPSTarget
	return rt
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
