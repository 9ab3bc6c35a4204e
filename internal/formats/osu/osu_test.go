package osu

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/registry"
)

const sampleChart = "\ufeffosu file format v14\n" + `
[General]
AudioFilename: audio.mp3
AudioLeadIn: 500
Mode: 3

[Metadata]
Title:Test Song
Artist:Tester
Creator:someone
Version:4K Easy

[Difficulty]
CircleSize:4
OverallDifficulty:7

[TimingPoints]
0,500,4,2,0,60,1,0
1000,-100,4,2,0,60,0,0

[HitObjects]
192,192,2000,1,0,0:0:0:0:
64,192,1000,1,0,0:0:0:0:
320,192,1500,128,0,1800:0:0:0:0:
448,192,1000,1,0,0:0:0:0:
`

func TestParse(t *testing.T) {
	bm, err := Parse(strings.NewReader(sampleChart))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if bm.KeyCount != 4 {
		t.Errorf("KeyCount = %d, expected 4", bm.KeyCount)
	}
	if bm.AudioPath != "audio.mp3" {
		t.Errorf("AudioPath = %q, expected audio.mp3", bm.AudioPath)
	}
	if bm.AudioLeadIn != 500 {
		t.Errorf("AudioLeadIn = %d, expected 500", bm.AudioLeadIn)
	}
	if bm.Metadata.Title != "Test Song" || bm.Metadata.Version != "4K Easy" {
		t.Errorf("Metadata = %+v", bm.Metadata)
	}
	if len(bm.TimingPoints) != 2 || bm.InitialBPM() != 120 {
		t.Errorf("TimingPoints = %+v", bm.TimingPoints)
	}

	want := []beatmap.Note{
		{TimeMs: 1000, Column: 0, Kind: beatmap.Tap},
		{TimeMs: 1000, Column: 3, Kind: beatmap.Tap},
		{TimeMs: 1500, Column: 2, Kind: beatmap.Hold, EndMs: 1800},
		{TimeMs: 2000, Column: 1, Kind: beatmap.Tap},
	}
	if len(bm.Notes) != len(want) {
		t.Fatalf("len(Notes) = %d, expected %d", len(bm.Notes), len(want))
	}
	for i, n := range bm.Notes {
		if n != want[i] {
			t.Errorf("Notes[%d] = %+v, expected %+v", i, n, want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr error
	}{
		{"not mania", [2]string{"Mode: 3", "Mode: 0"}, ErrNotMania},
		{"no audio", [2]string{"AudioFilename: audio.mp3", ""}, ErrNoAudio},
		{"bad key count", [2]string{"CircleSize:4", "CircleSize:9"}, beatmap.ErrKeyCount},
		{"duplicate note", [2]string{"192,192,2000", "64,192,1000"}, beatmap.ErrDuplicateTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Replace(sampleChart, tt.replace[0], tt.replace[1], 1)
			_, err := Parse(strings.NewReader(src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseNoHitObjects(t *testing.T) {
	src := sampleChart[:strings.Index(sampleChart, "[HitObjects]")]
	if _, err := Parse(strings.NewReader(src)); !errors.Is(err, ErrNoHitObjects) {
		t.Errorf("Parse() = %v, expected ErrNoHitObjects", err)
	}
}

func TestColumn(t *testing.T) {
	tests := []struct {
		x    float64
		keys int
		want int
	}{
		{64, 4, 0},
		{192, 4, 1},
		{320, 4, 2},
		{448, 4, 3},
		{512, 4, 3},
		{-5, 4, 0},
		{36, 7, 0},
		{475, 7, 6},
	}
	for _, tt := range tests {
		if got := Column(tt.x, tt.keys); got != tt.want {
			t.Errorf("Column(%v, %d) = %d, expected %d", tt.x, tt.keys, got, tt.want)
		}
	}
}

func TestLoaderRegistered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.osu")
	if err := os.WriteFile(path, []byte(sampleChart), 0o600); err != nil {
		t.Fatal(err)
	}

	maps, err := registry.Load(path)
	if err != nil {
		t.Fatalf("registry.Load() failed: %v", err)
	}
	if got := maps[0].AudioPath; got != filepath.Join(dir, "audio.mp3") {
		t.Errorf("AudioPath = %q, expected it resolved next to the chart", got)
	}
	if maps[0].Metadata.Source != path {
		t.Errorf("Source = %q, expected %q", maps[0].Metadata.Source, path)
	}
}
