package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
)

func newTestSession(maps []*beatmap.Beatmap, kb config.Keybinds) SessionModel {
	return NewSessionModel(maps, nil, config.Default(), kb, core.DefaultConfig(), log.New(io.Discard))
}

func step(t *testing.T, m SessionModel, msg tea.Msg) SessionModel {
	t.Helper()
	next, _ := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T, expected SessionModel", next)
	}
	return sm
}

func TestSessionModelFlow(t *testing.T) {
	m := newTestSession([]*beatmap.Beatmap{testChart()}, config.DefaultKeybinds())
	if got := m.Screen(); got != "menu" {
		t.Fatalf("Screen() = %q, expected menu", got)
	}
	if !strings.Contains(m.View(), "Easy") {
		t.Errorf("menu view does not list the difficulty")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Screen(); got != "play" {
		t.Fatalf("Screen() = %q, expected play", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = step(t, m, TickMsg{})
	if got := m.Screen(); got != "results" {
		t.Fatalf("Screen() = %q, expected results after abort", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Screen(); got != "menu" {
		t.Errorf("Screen() = %q, expected menu", got)
	}
}

func TestSessionModelScoreboard(t *testing.T) {
	m := newTestSession([]*beatmap.Beatmap{testChart()}, config.DefaultKeybinds())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Screen(); got != "scores" {
		t.Fatalf("Screen() = %q, expected scores", got)
	}
	if !strings.Contains(m.View(), "disabled") {
		t.Errorf("scoreboard without a store should say history is disabled")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Screen(); got != "menu" {
		t.Errorf("Screen() = %q, expected menu", got)
	}
}

func TestSessionModelMissingKeybinds(t *testing.T) {
	m := newTestSession([]*beatmap.Beatmap{testChart()}, config.Keybinds{7: {"s", "d", "f", "space", "j", "k", "l"}})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Screen(); got != "menu" {
		t.Fatalf("Screen() = %q, expected menu", got)
	}
	if m.menu.status == "" {
		t.Errorf("menu status is empty, expected the key binding error")
	}
}

func TestSessionModelQuit(t *testing.T) {
	m := newTestSession([]*beatmap.Beatmap{testChart()}, config.DefaultKeybinds())
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Errorf("quit returned no command")
	}
	if view := next.(SessionModel).View(); view != "" {
		t.Errorf("View() after quit = %q, expected empty", view)
	}
}
