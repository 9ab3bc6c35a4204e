// Package osz loads .osz archives: zip files bundling one audio track with
// several .osu difficulties.
package osz

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/formats/osu"
	"github.com/vovakirdan/termania/internal/registry"
)

// ErrNoCharts is returned when an archive holds no osu!mania difficulty.
var ErrNoCharts = errors.New("osz: archive contains no osu!mania charts")

func init() {
	registry.Register(".osz", Loader{})
}

// Loader opens .osz archives, extracting audio next to a cache directory.
type Loader struct {
	// Dir receives extracted audio. Empty means a directory under os.TempDir.
	Dir string
}

func (Loader) Name() string { return "osu! archive" }

func (l Loader) Load(archive string) ([]*beatmap.Beatmap, error) {
	dir := l.Dir
	if dir == "" {
		name := strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
		dir = filepath.Join(os.TempDir(), "termania", name)
	}
	return Open(archive, dir)
}

// Open parses every mania difficulty in archive and extracts the audio files
// they reference into dir. Difficulties are sorted by note count.
func Open(archive, dir string) ([]*beatmap.Beatmap, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("osz: cannot open %s: %w", archive, err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[strings.ToLower(path.Clean(f.Name))] = f
	}

	var maps []*beatmap.Beatmap
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".osu") {
			continue
		}
		bm, err := parseEntry(f)
		if errors.Is(err, osu.ErrNotMania) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("osz: %s: %w", f.Name, err)
		}

		audio, ok := entries[strings.ToLower(path.Clean(bm.AudioPath))]
		if !ok {
			return nil, fmt.Errorf("osz: %s: audio %q not in archive", f.Name, bm.AudioPath)
		}
		dst, err := extract(audio, dir)
		if err != nil {
			return nil, err
		}

		bm.AudioPath = dst
		bm.Metadata.Source = archive + "#" + f.Name
		maps = append(maps, bm)
	}

	if len(maps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCharts, archive)
	}

	sort.SliceStable(maps, func(i, j int) bool {
		return len(maps[i].Notes) < len(maps[j].Notes)
	})
	return maps, nil
}

func parseEntry(f *zip.File) (*beatmap.Beatmap, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return osu.Parse(rc)
}

// extract writes one archive entry under dir, skipping it if already present
// with the same size.
func extract(f *zip.File, dir string) (string, error) {
	name := filepath.FromSlash(path.Clean("/" + f.Name))
	dst := filepath.Join(dir, name)
	if !strings.HasPrefix(dst, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("osz: illegal entry path %q", f.Name)
	}

	if st, err := os.Stat(dst); err == nil && st.Size() == int64(f.UncompressedSize64) {
		return dst, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("osz: cannot create %s: %w", filepath.Dir(dst), err)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("osz: cannot read %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("osz: cannot create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", fmt.Errorf("osz: cannot extract %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("osz: cannot extract %s: %w", f.Name, err)
	}
	return dst, nil
}
