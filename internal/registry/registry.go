// Package registry provides a global registry of beatmap format loaders.
// Formats register themselves in init() functions, keyed by file extension,
// so the CLI can open any supported chart without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vovakirdan/termania/internal/beatmap"
)

// ErrUnknownFormat is returned when no loader handles a file extension.
var ErrUnknownFormat = errors.New("registry: unknown beatmap format")

// Loader reads every difficulty contained in a file.
// Single-chart formats return a one-element slice.
type Loader interface {
	// Name is a short human readable format name (e.g., "osu!mania").
	Name() string

	// Load parses the file at path. Returned beatmaps are validated.
	Load(path string) ([]*beatmap.Beatmap, error)
}

// FormatInfo describes a registered format.
type FormatInfo struct {
	Ext  string
	Name string
}

var (
	loaders = make(map[string]Loader)
	mu      sync.RWMutex
)

// Register adds a loader for a file extension such as ".osu".
// Panics if the extension is already registered.
func Register(ext string, l Loader) {
	mu.Lock()
	defer mu.Unlock()

	ext = strings.ToLower(ext)
	if _, exists := loaders[ext]; exists {
		panic(fmt.Sprintf("registry: format %q already registered", ext))
	}
	loaders[ext] = l
}

// List returns information about all registered formats, sorted by extension.
func List() []FormatInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]FormatInfo, 0, len(loaders))
	for ext, l := range loaders {
		result = append(result, FormatInfo{Ext: ext, Name: l.Name()})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ext < result[j].Ext
	})
	return result
}

// Lookup returns the loader for the given path's extension.
func Lookup(path string) (Loader, error) {
	mu.RLock()
	defer mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	l, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return l, nil
}

// Supported reports whether a loader exists for the path's extension.
func Supported(path string) bool {
	_, err := Lookup(path)
	return err == nil
}

// Load opens path with the matching loader.
func Load(path string) ([]*beatmap.Beatmap, error) {
	l, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	maps, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("registry: %s contains no playable charts", path)
	}
	return maps, nil
}

// LoadDir loads every supported chart under dir. Files that fail to load
// are reported in errs and skipped; the walk itself failing is err.
func LoadDir(dir string) (maps []*beatmap.Beatmap, errs []error, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		loaded, loadErr := Load(path)
		if loadErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, loadErr))
			return nil
		}
		maps = append(maps, loaded...)
		return nil
	})
	if err != nil {
		return nil, errs, fmt.Errorf("registry: cannot scan %s: %w", dir, err)
	}
	return maps, errs, nil
}
