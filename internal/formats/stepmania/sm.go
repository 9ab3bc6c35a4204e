// Package stepmania parses StepMania .sm simfiles.
package stepmania

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/registry"
)

// KeyCounts maps chart types to lane counts. Other types are skipped.
var KeyCounts = map[string]int{
	"dance-single": 4,
	"pump-single":  5,
	"dance-solo":   6,
	"kb7-single":   7,
}

var (
	ErrNoBPM    = errors.New("stepmania: missing #BPMS")
	ErrNoCharts = errors.New("stepmania: no supported charts")
)

func init() {
	registry.Register(".sm", Loader{})
}

// Loader opens .sm simfiles.
type Loader struct{}

func (Loader) Name() string { return "StepMania" }

func (Loader) Load(path string) ([]*beatmap.Beatmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stepmania: cannot read %s: %w", path, err)
	}
	maps, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, bm := range maps {
		bm.Metadata.Source = path
		bm.AudioPath = filepath.Join(filepath.Dir(path), bm.AudioPath)
	}
	return maps, nil
}

type tag struct {
	name  string
	value string
}

// bpmChange starts a tempo at a beat.
type bpmChange struct {
	beat float64
	bpm  float64
}

// stop pauses the chart at a beat.
type stop struct {
	beat    float64
	seconds float64
}

// tempo converts beats to seconds.
type tempo struct {
	offset float64 // seconds, positive means notes later
	bpms   []bpmChange
	stops  []stop
}

func (t tempo) seconds(beat float64) float64 {
	s := t.offset
	for i, c := range t.bpms {
		end := beat
		if i+1 < len(t.bpms) && t.bpms[i+1].beat < beat {
			end = t.bpms[i+1].beat
		}
		if end <= c.beat {
			break
		}
		s += (end - c.beat) * 60 / c.bpm
	}
	for _, st := range t.stops {
		if st.beat < beat {
			s += st.seconds
		}
	}
	return s
}

// Parse reads every supported chart in a simfile. Audio paths are left
// as written in #MUSIC.
func Parse(src string) ([]*beatmap.Beatmap, error) {
	tags := splitTags(src)

	meta := beatmap.Metadata{Title: "Unknown", Artist: "Unknown"}
	var audio string
	var tm tempo
	var charts []tag

	for _, t := range tags {
		switch t.name {
		case "TITLE":
			meta.Title = t.value
		case "ARTIST":
			meta.Artist = t.value
		case "CREDIT":
			meta.Creator = t.value
		case "MUSIC":
			audio = t.value
		case "OFFSET":
			v, err := strconv.ParseFloat(t.value, 64)
			if err != nil {
				return nil, fmt.Errorf("stepmania: bad #OFFSET: %w", err)
			}
			tm.offset = -v
		case "BPMS":
			pairs, err := parsePairs(t.value)
			if err != nil {
				return nil, fmt.Errorf("stepmania: bad #BPMS: %w", err)
			}
			for _, p := range pairs {
				if p[1] <= 0 {
					return nil, fmt.Errorf("stepmania: bad #BPMS: non-positive tempo %v", p[1])
				}
				tm.bpms = append(tm.bpms, bpmChange{beat: p[0], bpm: p[1]})
			}
		case "STOPS":
			pairs, err := parsePairs(t.value)
			if err != nil {
				return nil, fmt.Errorf("stepmania: bad #STOPS: %w", err)
			}
			for _, p := range pairs {
				tm.stops = append(tm.stops, stop{beat: p[0], seconds: p[1]})
			}
		case "NOTES":
			charts = append(charts, t)
		}
	}

	if len(tm.bpms) == 0 {
		return nil, ErrNoBPM
	}
	sort.Slice(tm.bpms, func(i, j int) bool { return tm.bpms[i].beat < tm.bpms[j].beat })

	var maps []*beatmap.Beatmap
	for _, c := range charts {
		bm, err := parseChart(c.value, tm)
		if err != nil {
			return nil, err
		}
		if bm == nil {
			continue
		}
		bm.Metadata.Title = meta.Title
		bm.Metadata.Artist = meta.Artist
		if bm.Metadata.Creator == "" {
			bm.Metadata.Creator = meta.Creator
		}
		bm.AudioPath = audio
		bm.TimingPoints = timingPoints(tm)
		maps = append(maps, bm)
	}

	if len(maps) == 0 {
		return nil, ErrNoCharts
	}
	return maps, nil
}

// parseChart reads "type:description:difficulty:meter:radar:notes".
// Returns nil for unsupported chart types.
func parseChart(value string, tm tempo) (*beatmap.Beatmap, error) {
	fields := strings.SplitN(value, ":", 6)
	if len(fields) < 6 {
		return nil, fmt.Errorf("stepmania: #NOTES has %d fields, expected 6", len(fields))
	}
	chartType := strings.TrimSpace(fields[0])
	keys, ok := KeyCounts[chartType]
	if !ok {
		return nil, nil
	}

	version := strings.TrimSpace(fields[2])
	if meter := strings.TrimSpace(fields[3]); meter != "" {
		version += " " + meter
	}
	bm := &beatmap.Beatmap{
		KeyCount: keys,
		Metadata: beatmap.Metadata{Version: version, Creator: strings.TrimSpace(fields[1])},
	}

	open := make([]int, keys) // index of unfinished hold per column
	for c := range open {
		open[c] = -1
	}

	measures := strings.Split(fields[5], ",")
	for m, measure := range measures {
		var rows []string
		for _, line := range strings.Split(measure, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				rows = append(rows, line)
			}
		}

		for r, row := range rows {
			if len(row) != keys {
				return nil, fmt.Errorf("stepmania: %s measure %d row %q has %d columns, expected %d", chartType, m, row, len(row), keys)
			}
			beat := float64(m)*4 + float64(r)*4/float64(len(rows))
			ms := int64(math.Round(tm.seconds(beat) * 1000))

			for c, ch := range row {
				switch ch {
				case '1':
					bm.Notes = append(bm.Notes, beatmap.Note{TimeMs: ms, Column: c, Kind: beatmap.Tap})
				case '2', '4':
					open[c] = len(bm.Notes)
					bm.Notes = append(bm.Notes, beatmap.Note{TimeMs: ms, Column: c, Kind: beatmap.Hold})
				case '3':
					if open[c] < 0 {
						return nil, fmt.Errorf("stepmania: %s hold tail without head in column %d at beat %.2f", chartType, c, beat)
					}
					bm.Notes[open[c]].EndMs = ms
					open[c] = -1
				}
			}
		}
	}

	for c, i := range open {
		if i >= 0 {
			return nil, fmt.Errorf("stepmania: %s hold in column %d at %dms never ends", chartType, c, bm.Notes[i].TimeMs)
		}
	}

	bm.SortNotes()
	if err := bm.Validate(); err != nil {
		return nil, fmt.Errorf("stepmania: %s %s: %w", chartType, version, err)
	}
	return bm, nil
}

// splitTags returns "#NAME:value;" pairs with comments stripped.
func splitTags(src string) []tag {
	var clean strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r", ""), "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		clean.WriteString(line)
		clean.WriteByte('\n')
	}

	var tags []tag
	rest := clean.String()
	for {
		start := strings.IndexByte(rest, '#')
		if start < 0 {
			break
		}
		rest = rest[start+1:]
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			end = len(rest)
		}
		name, value, _ := strings.Cut(rest[:end], ":")
		tags = append(tags, tag{
			name:  strings.ToUpper(strings.TrimSpace(name)),
			value: strings.TrimSpace(value),
		})
		if end == len(rest) {
			break
		}
		rest = rest[end+1:]
	}
	return tags
}

// parsePairs reads "beat=value,beat=value".
func parsePairs(s string) ([][2]float64, error) {
	var out [][2]float64
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("missing '=' in %q", item)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(k), 64)
		if err != nil {
			return nil, err
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]float64{a, b})
	}
	return out, nil
}

func timingPoints(tm tempo) []beatmap.TimingPoint {
	tps := make([]beatmap.TimingPoint, 0, len(tm.bpms))
	for _, c := range tm.bpms {
		tps = append(tps, beatmap.TimingPoint{
			TimeMs:      int64(math.Round(tm.seconds(c.beat) * 1000)),
			MsPerBeat:   60000 / c.bpm,
			Meter:       4,
			Uninherited: true,
		})
	}
	return tps
}
