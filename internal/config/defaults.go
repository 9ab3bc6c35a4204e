package config

import (
	_ "embed"
)

//go:embed defaults/termania.yaml
var defaultConfigYAML []byte

//go:embed defaults/keybinds.yaml
var defaultKeybindsYAML []byte

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		Version: 1,
		Audio: AudioConfig{
			MasterVolume: 0.8,
			MusicVolume:  1.0,
			OffsetMs:     0,
		},
		Gameplay: GameplayConfig{
			ScrollRowsPerSecond:  24,
			ChartPreloadMs:       2000,
			LeadInMs:             1500,
			HitLineRowFromBottom: 2,
			EndGraceMs:           2000,
			Rate:                 1.0,
			MissWindowMs:         200,
			WindowsMs: map[string]int64{
				"MARV":  16,
				"PERF":  34,
				"GREAT": 67,
				"GOOD":  100,
				"OK":    150,
			},
			ReleaseWindowMs:    80,
			ReleaseTimeoutMs:   600,
			EmptyPress:         "ignore",
			ComboFloor:         "OK",
			ComboStep:          10,
			ComboMultiplierCap: 4,
			FailEnabled:        true,
			FailThreshold:      0,
			MaxHealth:          100,
			HealthGain: map[string]float64{
				"MARV":  0.5,
				"PERF":  0.4,
				"GREAT": 0.2,
				"GOOD":  0.1,
				"OK":    -1.0,
				"MISS":  -4.0,
			},
			ScoreValues: map[string]int64{
				"MARV":  320,
				"PERF":  300,
				"GREAT": 200,
				"GOOD":  100,
				"OK":    50,
				"MISS":  0,
			},
			AccuracyWeights: map[string]float64{
				"MARV":  1.0,
				"PERF":  0.99,
				"GREAT": 0.88,
				"GOOD":  0.77,
				"OK":    0.5,
				"MISS":  0,
			},
		},
		Visual: VisualConfig{
			LaneChar:         "│",
			HitLineChar:      "═",
			NoteChar:         "█",
			LongNoteBodyChar: "▓",
			LongNoteHeadChar: "█",
			LaneWidth:        3,
			LaneSpacing:      1,
			FPSTarget:        60,
		},
		Input: InputConfig{
			QueueSize: 256,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "~/.termania/termania.log",
		},
		Storage: StorageConfig{
			Enabled: false,
			DBPath:  "~/.termania/results.db",
		},
	}
}

// DefaultKeybinds returns the built-in bindings for 4 to 7 keys.
func DefaultKeybinds() Keybinds {
	return Keybinds{
		4: {"d", "f", "j", "k"},
		5: {"d", "f", "space", "j", "k"},
		6: {"s", "d", "f", "j", "k", "l"},
		7: {"s", "d", "f", "space", "j", "k", "l"},
	}
}
