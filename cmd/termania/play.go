package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/termania/internal/audio"
	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/platform/tui"
	"github.com/vovakirdan/termania/internal/registry"
	"github.com/vovakirdan/termania/internal/session"
	"github.com/vovakirdan/termania/internal/storage"
	"github.com/vovakirdan/termania/internal/timing"
)

var (
	flagDifficulty string
	flagLeadIn     int64
	flagOffset     int64
	flagScroll     float64
	flagFPS        int
	flagRate       float64
	flagMute       bool
	flagRecord     string
)

var playCmd = &cobra.Command{
	Use:   "play <beatmap>",
	Short: "Play a chart",
	Long: `Play a chart file. When the file holds several difficulties a menu
lets you pick one; after each play the results screen offers a retry.

Controls:
  Lane keys  - From keybinds.yaml (4K default: D F J K)
  Esc        - Quit the song
  Ctrl+C     - Quit the song

Examples:
  termania play song.osz
  termania play chart.osu --difficulty Hard
  termania play chart.sm --offset -30 --scroll 30
  termania play chart.osu --mute --record trace.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty name or 1-based index (skips the menu)")
	playCmd.Flags().Int64Var(&flagLeadIn, "lead-in", 0, "Lead-in before the song starts (ms)")
	playCmd.Flags().Int64Var(&flagOffset, "offset", 0, "Audio offset (ms, positive when audio is heard late)")
	playCmd.Flags().Float64Var(&flagScroll, "scroll", 0, "Scroll speed (rows per second)")
	playCmd.Flags().IntVar(&flagFPS, "fps", 0, "Frame rate")
	playCmd.Flags().Float64Var(&flagRate, "rate", 1.0, "Playback rate (only 1.0 is supported)")
	playCmd.Flags().BoolVar(&flagMute, "mute", false, "Play without audio on the wall clock")
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Write the input trace to this YAML file")
}

// overrides collects the flags the user actually set.
func overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("lead-in") {
		o.LeadInMs = &flagLeadIn
	}
	if flags.Changed("offset") {
		o.OffsetMs = &flagOffset
	}
	if flags.Changed("scroll") {
		o.ScrollRowsPerSecond = &flagScroll
	}
	if flags.Changed("fps") {
		o.FPS = &flagFPS
	}
	if flags.Changed("rate") {
		o.Rate = &flagRate
	}
	return o
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, kb, err := loadConfig(overrides(cmd))
	if err != nil {
		fail("%v", err)
	}

	maps, err := registry.Load(args[0])
	if err != nil {
		fail("%v", err)
	}

	logger, closeLog, err := newFileLogger(cfg)
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()
	defer audio.Shutdown()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	p := &player{
		cfg:      cfg,
		keybinds: kb,
		store:    store,
		logger:   logger,
		runtime:  runtimeConfig(cfg),
	}

	if flagDifficulty != "" {
		bm, err := findDifficulty(maps, flagDifficulty)
		if err != nil {
			fail("%v", err)
		}
		if _, err := p.playLoop(bm); err != nil {
			fail("%v", err)
		}
		return
	}

	if err := p.menuLoop(maps); err != nil {
		fail("%v", err)
	}
}

// findDifficulty matches a version name (case-insensitive) or a 1-based index.
func findDifficulty(maps []*beatmap.Beatmap, want string) (*beatmap.Beatmap, error) {
	for _, bm := range maps {
		if strings.EqualFold(bm.Metadata.Version, want) {
			return bm, nil
		}
	}
	if i, err := strconv.Atoi(want); err == nil && i >= 1 && i <= len(maps) {
		return maps[i-1], nil
	}
	names := make([]string, len(maps))
	for i, bm := range maps {
		names[i] = bm.Metadata.Version
	}
	return nil, fmt.Errorf("no difficulty %q (available: %s)", want, strings.Join(names, ", "))
}

// player runs plays and their results screens against one configuration.
type player struct {
	cfg      config.AppConfig
	keybinds config.Keybinds
	store    *storage.Store
	logger   *log.Logger
	runtime  core.RuntimeConfig
}

// playLoop plays bm until the player leaves the results screen. It reports
// whether the player asked to quit entirely.
func (p *player) playLoop(bm *beatmap.Beatmap) (quit bool, err error) {
	for {
		m, err := p.playOnce(bm)
		if err != nil {
			return true, err
		}
		p.runtime = m.Runtime()

		snap := m.Snapshot()
		previous, err := tui.SaveResult(p.store, bm, snap)
		if err != nil {
			p.logger.Warn("could not save result", "error", err)
		}

		outcome, err := tui.RunResults(bm, snap.State, snap.Score, previous, p.runtime.ScreenW, p.runtime.ScreenH)
		if err != nil {
			return true, err
		}
		if !outcome.Retry {
			return outcome.Quit, nil
		}
	}
}

func (p *player) playOnce(bm *beatmap.Beatmap) (tui.PlayModel, error) {
	labels, err := p.keybinds.For(bm.KeyCount)
	if err != nil {
		return tui.PlayModel{}, err
	}
	keys, err := input.NewKeymap(labels)
	if err != nil {
		return tui.PlayModel{}, err
	}

	clock, closeAudio := p.openAudio(bm)
	defer closeAudio()

	m, err := tui.RunPlay(tui.PlayConfig{
		Beatmap:     bm,
		Audio:       clock,
		Keys:        keys,
		App:         p.cfg,
		Runtime:     p.runtime,
		Logger:      p.logger,
		RecordTrace: flagRecord != "",
	})
	if err != nil {
		return m, err
	}

	if flagRecord != "" {
		if err := writeTrace(flagRecord, bm, p.cfg.Audio.OffsetMs, m.Session().Trace()); err != nil {
			p.logger.Warn("could not write trace", "path", flagRecord, "error", err)
		}
	}
	return m, nil
}

// openAudio opens the chart's music, falling back to the silent clock when
// muted or when the file cannot be decoded.
func (p *player) openAudio(bm *beatmap.Beatmap) (timing.AudioClock, func()) {
	length := time.Duration(bm.TotalLength()) * time.Millisecond
	silent := audio.NewSilent(length, nil)
	if flagMute || bm.AudioPath == "" {
		return silent, func() {}
	}

	music, err := audio.Open(bm.AudioPath, p.cfg.Audio.Gain())
	if err != nil {
		p.logger.Warn("audio unavailable, playing on the wall clock", "path", bm.AudioPath, "error", err)
		return silent, func() {}
	}
	return music, func() { music.Close() }
}

// traceFile is the YAML layout of a recorded play.
type traceFile struct {
	Beatmap  string              `yaml:"beatmap"`
	Source   string              `yaml:"source,omitempty"`
	OffsetMs int64               `yaml:"offset_ms"`
	Ticks    []session.TraceTick `yaml:"ticks"`
}

func writeTrace(path string, bm *beatmap.Beatmap, offset int64, ticks []session.TraceTick) error {
	data, err := yaml.Marshal(traceFile{
		Beatmap:  bm.Key(),
		Source:   bm.Metadata.Source,
		OffsetMs: offset,
		Ticks:    ticks,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readTrace(path string) (traceFile, error) {
	var tf traceFile
	data, err := os.ReadFile(path)
	if err != nil {
		return tf, err
	}
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("failed to parse trace %s: %w", path, err)
	}
	return tf, nil
}
