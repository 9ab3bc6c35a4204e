package tui

import (
	"errors"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termania/internal/audio"
	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/session"
)

// calibrationCountIn is the number of clicks before the first note.
const calibrationCountIn = 4

// ErrNoCalibrationHits is returned when a calibration run hit nothing.
var ErrNoCalibrationHits = errors.New("calibrate: no notes were hit")

// Calibration is the outcome of a metronome run.
type Calibration struct {
	State     session.State
	Hits      int
	MeanError float64 // ms, positive when pressing late
	StdDev    float64
	Suggested int64 // audio.offset_ms that centers the mean error
}

// CalibrationChart builds a one-lane chart with a tap on every click after
// the count-in. The chart is 4K so it passes validation; only column 0 has
// notes.
func CalibrationChart(beatTimes []int64, bpm float64) *beatmap.Beatmap {
	bm := &beatmap.Beatmap{
		Metadata: beatmap.Metadata{Title: "Calibration", Version: "metronome"},
		KeyCount: beatmap.MinKeys,
	}
	if len(beatTimes) > 0 && bpm > 0 {
		bm.TimingPoints = []beatmap.TimingPoint{{
			TimeMs:      beatTimes[0],
			MsPerBeat:   60000 / bpm,
			Meter:       4,
			Uninherited: true,
		}}
	}
	for i, t := range beatTimes {
		if i < calibrationCountIn {
			continue
		}
		bm.Notes = append(bm.Notes, beatmap.Note{TimeMs: t, Column: 0, Kind: beatmap.Tap})
	}
	return bm
}

// SuggestedOffset returns the offset that moves the mean hit error to zero.
func SuggestedOffset(current int64, meanError float64) int64 {
	return current - int64(math.Round(meanError))
}

// CalibrationConfig returns a copy of cfg suited to a calibration run:
// no failing and no empty-press penalties.
func CalibrationConfig(cfg config.AppConfig) config.AppConfig {
	cfg.Gameplay.FailEnabled = false
	cfg.Gameplay.EmptyPress = judge.EmptyPressIgnore.String()
	cfg.Gameplay.EndGraceMs = 500
	return cfg
}

// RunCalibration plays a metronome and measures the hit error of presses
// on any lane key.
func RunCalibration(cfg config.AppConfig, keys *input.Keymap, bpm float64, beats int, rt core.RuntimeConfig, logger *log.Logger, opts ...tea.ProgramOption) (Calibration, error) {
	cfg = CalibrationConfig(cfg)
	metronome := audio.NewMetronome(bpm, beats+calibrationCountIn, cfg.Audio.Gain())
	bm := CalibrationChart(metronome.Track().BeatTimes(), bpm)

	m, err := RunPlay(PlayConfig{
		Beatmap:  bm,
		Audio:    metronome,
		Keys:     keys,
		App:      cfg,
		Runtime:  rt,
		Logger:   logger,
		Collapse: true,
	}, opts...)
	if err != nil {
		return Calibration{}, err
	}
	return measure(m.Snapshot(), cfg.Audio.OffsetMs)
}

func measure(snap session.Snapshot, offset int64) (Calibration, error) {
	sum := snap.Score
	c := Calibration{
		State:     snap.State,
		Hits:      sum.Judged - sum.Counts[judge.Miss],
		MeanError: sum.MeanError,
		StdDev:    sum.StdDev,
	}
	if c.Hits <= 0 {
		return c, ErrNoCalibrationHits
	}
	c.Suggested = SuggestedOffset(offset, sum.MeanError)
	return c, nil
}
