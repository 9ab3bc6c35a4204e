package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrRateUnsupported is returned for any playback rate other than 1.0.
var ErrRateUnsupported = errors.New("config: playback rate must be 1.0")

// Load reads the configuration over the built-in defaults, so a file only
// needs the keys it changes.
// Search order: customPath -> ~/.termania/config.yaml -> ./configs/termania.yaml -> embedded default
func Load(customPath string) (AppConfig, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.Source = customPath
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if c, ok := decodeOver(data); ok {
				c.Source = userCfgPath
				return c, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/termania.yaml"); err == nil {
		if c, ok := decodeOver(data); ok {
			c.Source = "configs/termania.yaml"
			return c, nil
		}
	}

	// Use embedded default YAML
	if c, ok := decodeOver(defaultConfigYAML); ok {
		c.Source = "embedded"
		return c, nil
	}
	cfg.Source = "builtin" // Fallback to hardcoded if embed fails
	return cfg, nil
}

func decodeOver(data []byte) (AppConfig, bool) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".termania", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Overrides are command-line values applied on top of the file. Nil
// fields leave the configuration unchanged.
type Overrides struct {
	LeadInMs            *int64
	OffsetMs            *int64
	ScrollRowsPerSecond *float64
	FPS                 *int
	Rate                *float64
}

// ApplyOverrides copies set overrides into the configuration.
func (c *AppConfig) ApplyOverrides(o Overrides) error {
	if o.Rate != nil {
		if *o.Rate != 1.0 {
			return fmt.Errorf("%w (got %g)", ErrRateUnsupported, *o.Rate)
		}
		c.Gameplay.Rate = *o.Rate
	}
	if o.LeadInMs != nil {
		c.Gameplay.LeadInMs = *o.LeadInMs
	}
	if o.OffsetMs != nil {
		c.Audio.OffsetMs = *o.OffsetMs
	}
	if o.ScrollRowsPerSecond != nil {
		c.Gameplay.ScrollRowsPerSecond = *o.ScrollRowsPerSecond
	}
	if o.FPS != nil {
		c.Visual.FPSTarget = *o.FPS
	}
	return nil
}

// Keybinds maps a key count to lane key labels, left to right.
type Keybinds map[int][]string

// LoadKeybinds reads bindings from path, or from the user and local config
// directories and finally the embedded default when path is empty.
func LoadKeybinds(path string) (Keybinds, error) {
	if path != "" {
		expanded, err := ExpandHome(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to read keybinds %s: %w", path, err)
		}
		return ParseKeybinds(data)
	}

	candidates := []string{"configs/keybinds.yaml"}
	if p := userConfigPath("keybinds.yaml"); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if data, err := os.ReadFile(p); err == nil {
			if kb, err := ParseKeybinds(data); err == nil {
				return kb, nil
			}
		}
	}
	if kb, err := ParseKeybinds(defaultKeybindsYAML); err == nil {
		return kb, nil
	}
	return DefaultKeybinds(), nil
}

// ParseKeybinds decodes and checks a keybinds document.
func ParseKeybinds(data []byte) (Keybinds, error) {
	var kb Keybinds
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("config: keybinds: %w", err)
	}
	if len(kb) == 0 {
		return nil, fmt.Errorf("config: keybinds: no entries")
	}
	for keys, labels := range kb {
		if len(labels) != keys {
			return nil, fmt.Errorf("config: keybinds for %dK must have exactly %d keys, got %d", keys, keys, len(labels))
		}
	}
	return kb, nil
}

// For returns the lane labels for a key count.
func (k Keybinds) For(keys int) ([]string, error) {
	labels, ok := k[keys]
	if !ok {
		var avail []string
		for n := range k {
			avail = append(avail, fmt.Sprintf("%dK", n))
		}
		sort.Strings(avail)
		return nil, fmt.Errorf("config: no keybinds for %dK (available: %s); add a %q entry to keybinds.yaml",
			keys, strings.Join(avail, ", "), fmt.Sprint(keys))
	}
	return labels, nil
}
