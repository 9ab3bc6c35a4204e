// Package osu parses osu!mania .osu beatmap files.
package osu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/registry"
)

// ModeMania is the [General] Mode value for mania charts.
const ModeMania = 3

// playfieldWidth is the osu! x coordinate range used to derive columns.
const playfieldWidth = 512

// typeHold is the hit object type bit marking a mania hold note.
const typeHold = 128

var (
	ErrNotMania     = errors.New("osu: beatmap is not an osu!mania chart")
	ErrNoAudio      = errors.New("osu: AudioFilename missing in [General]")
	ErrNoHitObjects = errors.New("osu: no hit objects")
)

func init() {
	registry.Register(".osu", Loader{})
}

// Loader opens standalone .osu files.
type Loader struct{}

func (Loader) Name() string { return "osu!mania" }

func (Loader) Load(path string) ([]*beatmap.Beatmap, error) {
	bm, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return []*beatmap.Beatmap{bm}, nil
}

// ParseFile reads a .osu file. The audio path is resolved relative to the file.
func ParseFile(path string) (*beatmap.Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("osu: cannot open %s: %w", path, err)
	}
	defer f.Close()

	bm, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bm.Metadata.Source = path
	bm.AudioPath = filepath.Join(filepath.Dir(path), bm.AudioPath)
	return bm, nil
}

// file groups the raw sections of a .osu file.
type file struct {
	values     map[string]map[string]string // key:value sections
	timing     []string
	hitObjects []string
}

func (f *file) get(section, key, def string) string {
	if v, ok := f.values[section][key]; ok && v != "" {
		return v
	}
	return def
}

// Parse reads a .osu chart from r. AudioPath is left as written in the file.
// The returned beatmap is sorted and validated.
func Parse(r io.Reader) (*beatmap.Beatmap, error) {
	f, err := readSections(r)
	if err != nil {
		return nil, err
	}

	if mode, err := strconv.Atoi(f.get("General", "Mode", "0")); err != nil || mode != ModeMania {
		return nil, fmt.Errorf("%w (Mode %s)", ErrNotMania, f.get("General", "Mode", "0"))
	}

	audio := f.get("General", "AudioFilename", "")
	if audio == "" {
		return nil, ErrNoAudio
	}

	cs, err := strconv.ParseFloat(f.get("Difficulty", "CircleSize", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("osu: invalid CircleSize: %w", err)
	}
	keys := int(math.Round(cs))

	leadIn, err := strconv.ParseInt(f.get("General", "AudioLeadIn", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("osu: invalid AudioLeadIn: %w", err)
	}

	bm := &beatmap.Beatmap{
		Metadata: beatmap.Metadata{
			Title:   f.get("Metadata", "Title", "Unknown"),
			Artist:  f.get("Metadata", "Artist", "Unknown"),
			Version: f.get("Metadata", "Version", "Unknown"),
			Creator: f.get("Metadata", "Creator", "Unknown"),
		},
		KeyCount:    keys,
		AudioPath:   audio,
		AudioLeadIn: max(leadIn, 0),
	}

	for i, line := range f.timing {
		tp, err := parseTimingPoint(line)
		if err != nil {
			return nil, fmt.Errorf("osu: timing point %d: %w", i+1, err)
		}
		bm.TimingPoints = append(bm.TimingPoints, tp)
	}

	if len(f.hitObjects) == 0 {
		return nil, ErrNoHitObjects
	}
	for i, line := range f.hitObjects {
		n, err := parseHitObject(line, keys)
		if err != nil {
			return nil, fmt.Errorf("osu: hit object %d: %w", i+1, err)
		}
		bm.Notes = append(bm.Notes, n)
	}

	bm.SortNotes()
	if err := bm.Validate(); err != nil {
		return nil, err
	}
	return bm, nil
}

func readSections(r io.Reader) (*file, error) {
	f := &file{values: make(map[string]map[string]string)}
	section := ""

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		switch section {
		case "":
			// file format header
		case "TimingPoints":
			f.timing = append(f.timing, line)
		case "HitObjects":
			f.hitObjects = append(f.hitObjects, line)
		default:
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			if f.values[section] == nil {
				f.values[section] = make(map[string]string)
			}
			f.values[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("osu: read failed: %w", err)
	}
	return f, nil
}

// parseTimingPoint reads "time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects".
// Older files stop after beatLength.
func parseTimingPoint(line string) (beatmap.TimingPoint, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return beatmap.TimingPoint{}, fmt.Errorf("too few fields in %q", line)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return beatmap.TimingPoint{}, fmt.Errorf("bad time: %w", err)
	}
	beat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return beatmap.TimingPoint{}, fmt.Errorf("bad beat length: %w", err)
	}

	tp := beatmap.TimingPoint{
		TimeMs:      int64(t),
		MsPerBeat:   beat,
		Meter:       4,
		Uninherited: true,
	}
	if len(parts) > 2 {
		if m, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil {
			tp.Meter = m
		}
	}
	if len(parts) > 6 {
		tp.Uninherited = strings.TrimSpace(parts[6]) == "1"
	}
	return tp, nil
}

// parseHitObject reads "x,y,time,type,hitSound[,endTime:extras]".
func parseHitObject(line string, keys int) (beatmap.Note, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return beatmap.Note{}, fmt.Errorf("too few fields in %q", line)
	}

	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return beatmap.Note{}, fmt.Errorf("bad x: %w", err)
	}
	t, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return beatmap.Note{}, fmt.Errorf("bad time: %w", err)
	}
	typ, err := strconv.Atoi(parts[3])
	if err != nil {
		return beatmap.Note{}, fmt.Errorf("bad type: %w", err)
	}

	n := beatmap.Note{
		TimeMs: int64(t),
		Column: Column(x, keys),
		Kind:   beatmap.Tap,
	}

	if typ&typeHold != 0 {
		if len(parts) < 6 {
			return beatmap.Note{}, fmt.Errorf("hold without end time in %q", line)
		}
		endStr, _, _ := strings.Cut(parts[5], ":")
		end, err := strconv.ParseFloat(endStr, 64)
		if err != nil {
			return beatmap.Note{}, fmt.Errorf("bad hold end: %w", err)
		}
		n.Kind = beatmap.Hold
		n.EndMs = int64(end)
	}
	return n, nil
}

// Column maps an osu! x coordinate onto a lane index.
func Column(x float64, keys int) int {
	if keys <= 0 {
		return 0
	}
	c := int(math.Floor(x * float64(keys) / playfieldWidth))
	return min(max(c, 0), keys-1)
}
