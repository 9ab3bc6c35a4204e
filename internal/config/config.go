// Package config provides YAML-based configuration for termania: audio
// levels, judgment windows, scoring tables, visuals and key bindings.
package config

// AppConfig is the whole configuration file.
type AppConfig struct {
	Version  int            `yaml:"version"`
	Audio    AudioConfig    `yaml:"audio"`
	Gameplay GameplayConfig `yaml:"gameplay"`
	Visual   VisualConfig   `yaml:"visual"`
	Input    InputConfig    `yaml:"input"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`

	// Source is where the configuration was read from.
	Source string `yaml:"-"`
}

// AudioConfig sets playback levels and the latency offset.
type AudioConfig struct {
	MasterVolume float64 `yaml:"master_volume"` // 0..1
	MusicVolume  float64 `yaml:"music_volume"`  // 0..1
	OffsetMs     int64   `yaml:"offset_ms"`     // added to the audio position
}

// Gain is the linear playback gain.
func (a AudioConfig) Gain() float64 {
	return a.MasterVolume * a.MusicVolume
}

// GameplayConfig holds timing windows, scoring tables and health rules.
// Per-tier maps are keyed by tier name (MARV, PERF, GREAT, GOOD, OK, MISS).
type GameplayConfig struct {
	ScrollRowsPerSecond  float64 `yaml:"scroll_rows_per_second"`
	ChartPreloadMs       int64   `yaml:"chart_preload_ms"`
	LeadInMs             int64   `yaml:"lead_in_ms"`
	HitLineRowFromBottom int     `yaml:"hit_line_row_from_bottom"`
	EndGraceMs           int64   `yaml:"end_grace_ms"`
	Rate                 float64 `yaml:"rate"`

	MissWindowMs     int64            `yaml:"miss_window_ms"`
	WindowsMs        map[string]int64 `yaml:"windows_ms"`
	ReleaseWindowMs  int64            `yaml:"release_window_ms"`
	ReleaseTimeoutMs int64            `yaml:"release_timeout_ms"`
	EmptyPress       string           `yaml:"empty_press"`

	ComboFloor         string `yaml:"combo_floor"`
	ComboStep          int    `yaml:"combo_step"`
	ComboMultiplierCap int    `yaml:"combo_multiplier_cap"`

	FailEnabled     bool               `yaml:"fail_enabled"`
	FailThreshold   float64            `yaml:"fail_threshold"`
	MaxHealth       float64            `yaml:"max_health"`
	HealthGain      map[string]float64 `yaml:"health_gain"`
	ScoreValues     map[string]int64   `yaml:"score_values"`
	AccuracyWeights map[string]float64 `yaml:"accuracy_weights"`
}

// VisualConfig controls playfield glyphs and frame rate.
type VisualConfig struct {
	LaneChar         string `yaml:"lanes_char_vertical"`
	HitLineChar      string `yaml:"hit_line_char"`
	NoteChar         string `yaml:"note_char"`
	LongNoteBodyChar string `yaml:"long_note_body_char"`
	LongNoteHeadChar string `yaml:"long_note_head_char"`
	LaneWidth        int    `yaml:"lane_width"`
	LaneSpacing      int    `yaml:"lane_spacing"`
	FPSTarget        int    `yaml:"fps_target"`
}

// InputConfig locates key bindings.
type InputConfig struct {
	KeybindsFile string `yaml:"keybinds_file"`
	QueueSize    int    `yaml:"queue_size"`
}

// LoggingConfig sets the log level and file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// StorageConfig enables the local results history.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}
