package config

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
	"github.com/vovakirdan/termania/internal/session"
)

// Validate reports every problem in the configuration at once.
func (c AppConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("config: "+format, args...))
	}

	a := c.Audio
	if a.MasterVolume < 0 || a.MasterVolume > 1 {
		bad("audio.master_volume %.2f outside [0, 1]", a.MasterVolume)
	}
	if a.MusicVolume < 0 || a.MusicVolume > 1 {
		bad("audio.music_volume %.2f outside [0, 1]", a.MusicVolume)
	}

	g := c.Gameplay
	if g.Rate != 1.0 {
		errs = append(errs, fmt.Errorf("%w (gameplay.rate %g)", ErrRateUnsupported, g.Rate))
	}
	if g.ScrollRowsPerSecond <= 0 {
		bad("gameplay.scroll_rows_per_second must be positive")
	}
	if g.ChartPreloadMs < 0 || g.LeadInMs < 0 || g.EndGraceMs < 0 {
		bad("gameplay.chart_preload_ms, lead_in_ms and end_grace_ms must not be negative")
	}
	if g.HitLineRowFromBottom < 1 {
		bad("gameplay.hit_line_row_from_bottom must be at least 1")
	}
	if g.ReleaseWindowMs <= 0 {
		bad("gameplay.release_window_ms must be positive")
	}
	if g.ReleaseTimeoutMs <= 0 {
		bad("gameplay.release_timeout_ms must be positive")
	}
	if _, err := judge.ParseEmptyPress(g.EmptyPress); err != nil {
		bad("gameplay.empty_press: %v", err)
	}
	if _, err := g.Windows(); err != nil {
		errs = append(errs, err)
	}
	if _, err := g.Rules(); err != nil {
		errs = append(errs, err)
	}

	v := c.Visual
	if v.FPSTarget < 1 || v.FPSTarget > 240 {
		bad("visual.fps_target %d outside [1, 240]", v.FPSTarget)
	}
	if v.LaneSpacing < 0 {
		bad("visual.lane_spacing must not be negative")
	}
	if v.LaneWidth < 1 {
		bad("visual.lane_width must be at least 1")
	}
	for name, s := range map[string]string{
		"lanes_char_vertical": v.LaneChar,
		"hit_line_char":       v.HitLineChar,
		"note_char":           v.NoteChar,
		"long_note_body_char": v.LongNoteBodyChar,
		"long_note_head_char": v.LongNoteHeadChar,
	} {
		if utf8.RuneCountInString(s) != 1 {
			bad("visual.%s must be a single character, got %q", name, s)
		}
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		bad("logging.level: %v", err)
	}
	return errors.Join(errs...)
}

// Windows builds the head windows. miss_window_ms is the miss window; a
// MISS entry in windows_ms must agree with it.
func (g GameplayConfig) Windows() (judge.Windows, error) {
	for name := range g.WindowsMs {
		if _, err := judge.ParseTier(name); err != nil {
			return judge.Windows{}, fmt.Errorf("config: gameplay.windows_ms: %w", err)
		}
	}
	if m, ok := g.WindowsMs["MISS"]; ok && m != g.MissWindowMs {
		return judge.Windows{}, fmt.Errorf("config: gameplay.windows_ms.MISS %d conflicts with miss_window_ms %d", m, g.MissWindowMs)
	}
	w := judge.Windows{
		Marv:  g.WindowsMs["MARV"],
		Perf:  g.WindowsMs["PERF"],
		Great: g.WindowsMs["GREAT"],
		Good:  g.WindowsMs["GOOD"],
		OK:    g.WindowsMs["OK"],
		Miss:  g.MissWindowMs,
	}
	if err := w.Validate(); err != nil {
		return w, fmt.Errorf("config: gameplay.windows_ms: %w", err)
	}
	return w, nil
}

// Rules builds the scoring table.
func (g GameplayConfig) Rules() (scoring.Rules, error) {
	r := scoring.DefaultRules()
	floor, err := judge.ParseTier(g.ComboFloor)
	if err != nil {
		return r, fmt.Errorf("config: gameplay.combo_floor: %w", err)
	}
	r.ComboFloor = floor
	r.ComboStep = g.ComboStep
	r.MultiplierCap = g.ComboMultiplierCap
	r.MaxHealth = g.MaxHealth
	r.FailThreshold = g.FailThreshold
	r.FailEnabled = g.FailEnabled

	for name, v := range g.ScoreValues {
		t, err := judge.ParseTier(name)
		if err != nil {
			return r, fmt.Errorf("config: gameplay.score_values: %w", err)
		}
		r.ScoreValues[t] = v
	}
	for name, v := range g.AccuracyWeights {
		t, err := judge.ParseTier(name)
		if err != nil {
			return r, fmt.Errorf("config: gameplay.accuracy_weights: %w", err)
		}
		r.AccuracyWeights[t] = v
	}
	for name, v := range g.HealthGain {
		t, err := judge.ParseTier(name)
		if err != nil {
			return r, fmt.Errorf("config: gameplay.health_gain: %w", err)
		}
		r.HealthDelta[t] = v
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("config: gameplay: %w", err)
	}
	return r, nil
}

// SessionOptions turns the gameplay section into session options.
func (c AppConfig) SessionOptions(logger *log.Logger) (session.Options, error) {
	g := c.Gameplay
	w, err := g.Windows()
	if err != nil {
		return session.Options{}, err
	}
	rules, err := g.Rules()
	if err != nil {
		return session.Options{}, err
	}
	empty, err := judge.ParseEmptyPress(g.EmptyPress)
	if err != nil {
		return session.Options{}, fmt.Errorf("config: gameplay.empty_press: %w", err)
	}
	return session.Options{
		Judge: judge.Options{
			Windows:     w,
			TailWindows: w.Widen(g.ReleaseWindowMs),
			EmptyPress:  empty,
		},
		Rules:      rules,
		EndGraceMs: g.EndGraceMs,
		PreloadMs:  g.ChartPreloadMs,
		Logger:     logger,
	}, nil
}

// ReleaseTimeout is how long a lane may go without a repeat before it
// counts as released.
func (g GameplayConfig) ReleaseTimeout() time.Duration {
	return time.Duration(g.ReleaseTimeoutMs) * time.Millisecond
}

// TickInterval is the frame period for the target FPS.
func (v VisualConfig) TickInterval() time.Duration {
	if v.FPSTarget <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(v.FPSTarget)
}
