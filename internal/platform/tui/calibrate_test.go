package tui

import (
	"errors"
	"testing"

	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
	"github.com/vovakirdan/termania/internal/session"
)

func TestCalibrationChart(t *testing.T) {
	beats := []int64{0, 500, 1000, 1500, 2000, 2500}
	bm := CalibrationChart(beats, 120)

	if err := bm.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(bm.Notes) != 2 {
		t.Fatalf("len(Notes) = %d, expected 2", len(bm.Notes))
	}
	if bm.Notes[0].TimeMs != 2000 || bm.Notes[1].TimeMs != 2500 {
		t.Errorf("note times = %d, %d, expected 2000, 2500", bm.Notes[0].TimeMs, bm.Notes[1].TimeMs)
	}
	for i, n := range bm.Notes {
		if n.Column != 0 {
			t.Errorf("note %d column = %d, expected 0", i, n.Column)
		}
	}
	if len(bm.TimingPoints) != 1 || bm.TimingPoints[0].MsPerBeat != 500 {
		t.Errorf("TimingPoints = %+v, expected one point at 500ms per beat", bm.TimingPoints)
	}
}

func TestSuggestedOffset(t *testing.T) {
	tests := []struct {
		current int64
		mean    float64
		want    int64
	}{
		{0, 23.4, -23},
		{10, -5.6, 16},
		{-20, 0, -20},
	}
	for _, tt := range tests {
		if got := SuggestedOffset(tt.current, tt.mean); got != tt.want {
			t.Errorf("SuggestedOffset(%d, %v) = %d, expected %d", tt.current, tt.mean, got, tt.want)
		}
	}
}

func TestCalibrationConfig(t *testing.T) {
	cfg := CalibrationConfig(config.Default())
	if cfg.Gameplay.FailEnabled {
		t.Errorf("FailEnabled = true, expected false")
	}
	if cfg.Gameplay.EmptyPress != "ignore" {
		t.Errorf("EmptyPress = %q, expected \"ignore\"", cfg.Gameplay.EmptyPress)
	}
}

func TestMeasure(t *testing.T) {
	var counts [judge.NumTiers]int
	counts[judge.Marv] = 6
	counts[judge.Great] = 2
	counts[judge.Miss] = 2
	snap := session.Snapshot{
		State: session.Cleared,
		Score: scoring.Summary{Judged: 10, Counts: counts, MeanError: 12.6, StdDev: 4},
	}

	c, err := measure(snap, 5)
	if err != nil {
		t.Fatalf("measure() error = %v", err)
	}
	if c.Hits != 8 {
		t.Errorf("Hits = %d, expected 8", c.Hits)
	}
	if c.Suggested != -8 {
		t.Errorf("Suggested = %d, expected -8", c.Suggested)
	}

	var misses [judge.NumTiers]int
	misses[judge.Miss] = 4
	_, err = measure(session.Snapshot{Score: scoring.Summary{Judged: 4, Counts: misses}}, 0)
	if !errors.Is(err, ErrNoCalibrationHits) {
		t.Errorf("measure() error = %v, expected ErrNoCalibrationHits", err)
	}
}
