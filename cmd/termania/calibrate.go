package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/audio"
	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/platform/tui"
)

var (
	flagCalBPM   float64
	flagCalBeats int
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure audio latency against a metronome",
	Long: `Play a metronome and press any lane key on every click. The mean
hit error is turned into a suggested audio.offset_ms for your config.

The first four clicks are a count-in and are not judged.

Examples:
  termania calibrate
  termania calibrate --bpm 90 --beats 32`,
	Run: runCalibrate,
}

func init() {
	calibrateCmd.Flags().Float64Var(&flagCalBPM, "bpm", 120, "Metronome tempo")
	calibrateCmd.Flags().IntVar(&flagCalBeats, "beats", 16, "Number of judged clicks")
}

func runCalibrate(cmd *cobra.Command, args []string) {
	if flagCalBPM <= 0 || flagCalBeats <= 0 {
		fail("--bpm and --beats must be positive")
	}

	cfg, kb, err := loadConfig(overrides(cmd))
	if err != nil {
		fail("%v", err)
	}
	labels, err := kb.For(beatmap.MinKeys)
	if err != nil {
		fail("%v", err)
	}
	keys, err := input.NewKeymap(labels)
	if err != nil {
		fail("%v", err)
	}

	logger, closeLog, err := newFileLogger(cfg)
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()
	defer audio.Shutdown()

	result, err := tui.RunCalibration(cfg, keys, flagCalBPM, flagCalBeats, runtimeConfig(cfg), logger)
	switch {
	case errors.Is(err, tui.ErrNoCalibrationHits):
		fmt.Println("No clicks were hit, so no offset can be suggested.")
		return
	case err != nil:
		fail("%v", err)
	}

	fmt.Printf("Hits:        %d of %d\n", result.Hits, flagCalBeats)
	fmt.Printf("Mean error:  %+.1f ms (positive is late)\n", result.MeanError)
	fmt.Printf("Spread:      %.1f ms\n", result.StdDev)
	fmt.Println()
	fmt.Printf("Current audio.offset_ms:   %d\n", cfg.Audio.OffsetMs)
	fmt.Printf("Suggested audio.offset_ms: %d\n", result.Suggested)
}
