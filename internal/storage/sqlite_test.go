package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func result(key string, score int64, acc float64) Result {
	var s scoring.Summary
	s.Score = score
	s.Accuracy = acc
	s.MaxCombo = 42
	s.Grade = scoring.GradeFor(acc, false)
	s.Counts[judge.Marv] = 40
	s.Counts[judge.Miss] = 2
	s.MeanError = -3.5
	return NewResult(key, "Artist - Song [Hard]", 4, s)
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndTopResults(t *testing.T) {
	store := openTestStore(t)

	for _, r := range []Result{
		result("song.osu#Hard", 100, 90),
		result("song.osu#Hard", 50, 80),
		result("song.osu#Hard", 200, 99),
		result("song.osu#Easy", 500, 100),
	} {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	top, err := store.TopResults("song.osu#Hard", 10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("TopResults() returned %d results, expected 3", len(top))
	}
	if top[0].Score != 200 || top[1].Score != 100 || top[2].Score != 50 {
		t.Errorf("TopResults() order = %d, %d, %d, expected 200, 100, 50", top[0].Score, top[1].Score, top[2].Score)
	}

	best := top[0]
	if best.Grade != scoring.GradeS {
		t.Errorf("Grade = %s, expected S", best.Grade)
	}
	if best.Counts[judge.Marv] != 40 || best.Counts[judge.Miss] != 2 {
		t.Errorf("Counts = %v, expected 40 MARV and 2 MISS", best.Counts)
	}
	if best.MaxCombo != 42 || best.KeyCount != 4 || best.MeanError != -3.5 || best.Failed {
		t.Errorf("round trip lost fields: %+v", best)
	}
	if best.Title != "Artist - Song [Hard]" {
		t.Errorf("Title = %q", best.Title)
	}
}

func TestStoreTopResultsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveResult(result("k", int64(i+1)*100, 95))
	}

	top, err := store.TopResults("k", 3)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(top) != 3 {
		t.Errorf("Expected 3 results with limit, got %d", len(top))
	}
	if top[0].Score != 500 || top[2].Score != 300 {
		t.Errorf("Results not in expected order: %+v", top)
	}
}

func TestStoreBestAndStats(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestResult("none")
	if err != nil || best != nil {
		t.Errorf("BestResult(empty) = %v, %v, expected nil, nil", best, err)
	}

	store.SaveResult(result("k", 300, 91))
	store.SaveResult(result("k", 700, 97))

	best, err = store.BestResult("k")
	if err != nil || best == nil || best.Score != 700 {
		t.Fatalf("BestResult() = %v, %v, expected score 700", best, err)
	}

	stats, err := store.Stats("k")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Plays != 2 || stats.BestScore != 700 || stats.BestAccuracy != 97 {
		t.Errorf("Stats() = %+v, expected 2 plays, best 700 / 97", stats)
	}

	empty, err := store.Stats("none")
	if err != nil || empty.Plays != 0 {
		t.Errorf("Stats(empty) = %+v, %v", empty, err)
	}
}

func TestStoreRecentAndClear(t *testing.T) {
	store := openTestStore(t)

	store.SaveResult(result("a", 1, 50))
	store.SaveResult(result("b", 2, 50))

	recent, err := store.RecentResults(10)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].BeatmapKey != "b" {
		t.Errorf("RecentResults() = %+v, expected newest first", recent)
	}

	if err := store.ClearResults("a"); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}
	top, _ := store.TopResults("a", 10)
	if len(top) != 0 {
		t.Errorf("ClearResults() left %d results", len(top))
	}
}
