package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
	"github.com/vovakirdan/termania/internal/session"
	"github.com/vovakirdan/termania/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func finished(state session.State, score int64) session.Snapshot {
	var counts [judge.NumTiers]int
	counts[judge.Marv] = 1
	return session.Snapshot{
		State: state,
		Score: scoring.Summary{Score: score, Accuracy: 100, MaxCombo: 1, Judged: 1, Counts: counts, Grade: scoring.GradeS},
	}
}

func TestSaveResult(t *testing.T) {
	store := openTestStore(t)
	bm := testChart()

	previous, err := SaveResult(store, bm, finished(session.Cleared, 500))
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if previous != nil {
		t.Errorf("previous = %+v, expected nil on first play", previous)
	}

	previous, err = SaveResult(store, bm, finished(session.Aborted, 900))
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if previous == nil || previous.Score != 500 {
		t.Errorf("previous = %+v, expected score 500", previous)
	}

	top, err := store.TopResults(bm.Key(), 10)
	if err != nil {
		t.Fatalf("TopResults() error = %v", err)
	}
	if len(top) != 1 {
		t.Errorf("len(TopResults()) = %d, expected 1 (aborted plays are not saved)", len(top))
	}

	if _, err := SaveResult(store, bm, finished(session.Failed, 100)); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	top, _ = store.TopResults(bm.Key(), 10)
	if len(top) != 2 {
		t.Errorf("len(TopResults()) = %d, expected 2 after a failed play", len(top))
	}
}

func TestSaveResultNilStore(t *testing.T) {
	previous, err := SaveResult(nil, testChart(), finished(session.Cleared, 500))
	if err != nil || previous != nil {
		t.Errorf("SaveResult(nil) = (%v, %v), expected (nil, nil)", previous, err)
	}
}

func TestResultsModelKeys(t *testing.T) {
	tests := []struct {
		name  string
		msg   tea.KeyMsg
		check func(ResultsModel) bool
	}{
		{"retry", runeKey('r'), ResultsModel.Retry},
		{"continue", tea.KeyMsg{Type: tea.KeyEnter}, ResultsModel.Closed},
		{"quit", runeKey('q'), ResultsModel.IsQuitting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := finished(session.Cleared, 500)
			m := NewResultsModel(testChart(), snap.State, snap.Score, nil, 80, 24)
			next, cmd := m.Update(tt.msg)
			if !tt.check(next.(ResultsModel)) {
				t.Errorf("Update(%q) did not set the expected flag", tt.msg.String())
			}
			if cmd == nil {
				t.Errorf("Update(%q) should quit the program", tt.msg.String())
			}
		})
	}
}

func TestResultsModelView(t *testing.T) {
	snap := finished(session.Cleared, 900)
	previous := &storage.Result{Score: 500, Grade: scoring.GradeA}
	m := NewResultsModel(testChart(), snap.State, snap.Score, previous, 100, 30)

	view := m.View()
	for _, want := range []string{"Band - Song [Easy]", "CLEARED", "Score      900", "NEW BEST", "Judgment"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
