package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
	"github.com/vovakirdan/termania/internal/session"
	"github.com/vovakirdan/termania/internal/storage"
)

// ResultsKeyMap defines the key bindings for the results screen.
type ResultsKeyMap struct {
	Retry key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Retry, k.Back, k.Quit}}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Back: key.NewBinding(
			key.WithKeys("enter", "esc", "b"),
			key.WithHelp("enter", "continue"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResultsModel shows the outcome of a finished session.
type ResultsModel struct {
	beatmap  *beatmap.Beatmap
	state    session.State
	summary  scoring.Summary
	previous *storage.Result // best before this play, nil if none
	table    table.Model
	help     help.Model
	keys     ResultsKeyMap
	width    int
	height   int
	retry    bool
	closed   bool
	quitting bool
}

// NewResultsModel creates a results screen. previous may be nil.
func NewResultsModel(bm *beatmap.Beatmap, state session.State, sum scoring.Summary, previous *storage.Result, width, height int) ResultsModel {
	m := ResultsModel{
		beatmap:  bm,
		state:    state,
		summary:  sum,
		previous: previous,
		help:     help.New(),
		keys:     DefaultResultsKeyMap(),
		width:    width,
		height:   height,
	}
	m.table = judgmentTable(sum)
	return m
}

func judgmentTable(sum scoring.Summary) table.Model {
	columns := []table.Column{
		{Title: "Judgment", Width: 10},
		{Title: "Count", Width: 7},
		{Title: "Share", Width: 8},
	}
	rows := make([]table.Row, 0, judge.NumTiers)
	for t := judge.Marv; t <= judge.Miss; t++ {
		share := 0.0
		if sum.Judged > 0 {
			share = 100 * float64(sum.Counts[t]) / float64(sum.Judged)
		}
		rows = append(rows, table.Row{
			t.String(),
			fmt.Sprintf("%d", sum.Counts[t]),
			fmt.Sprintf("%.1f%%", share),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(judge.NumTiers+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t
}

// Init initializes the results model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results screen.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Retry):
			m.retry = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.closed = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

var (
	resultsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	gradeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 2)
)

func gradeColor(g scoring.Grade) lipgloss.Color {
	switch g {
	case scoring.GradeS:
		return lipgloss.Color("220")
	case scoring.GradeA:
		return lipgloss.Color("10")
	case scoring.GradeB:
		return lipgloss.Color("14")
	case scoring.GradeC:
		return lipgloss.Color("12")
	case scoring.GradeD:
		return lipgloss.Color("13")
	default:
		return lipgloss.Color("9")
	}
}

// View renders the results.
func (m ResultsModel) View() string {
	if m.quitting || m.closed || m.retry {
		return ""
	}
	sum := m.summary

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(m.beatmap.Title()), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(menuDimStyle.Render(strings.ToUpper(m.state.String())), m.width))
	b.WriteString("\n\n")

	var stats strings.Builder
	fmt.Fprintf(&stats, "Score      %d\n", sum.Score)
	fmt.Fprintf(&stats, "Accuracy   %.2f%%\n", sum.Accuracy)
	fmt.Fprintf(&stats, "Max combo  %d", sum.MaxCombo)
	if sum.FullCombo() {
		stats.WriteString("  FC")
	}
	stats.WriteString("\n")
	fmt.Fprintf(&stats, "Hit error  %+.1f ms ± %.1f\n", sum.MeanError, sum.StdDev)
	if m.previous != nil {
		fmt.Fprintf(&stats, "Best       %d (%s)", m.previous.Score, m.previous.Grade)
		if sum.Score > m.previous.Score && m.state != session.Aborted {
			stats.WriteString("  NEW BEST")
		}
		stats.WriteString("\n")
	}

	grade := gradeStyle.Foreground(gradeColor(sum.Grade)).Render(string(sum.Grade))
	left := lipgloss.JoinVertical(lipgloss.Center, grade, "", stats.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		resultsBoxStyle.Render(left), "  ", resultsBoxStyle.Render(m.table.View()))
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.help.View(m.keys), m.width))
	return b.String()
}

// Retry reports that the player asked to play again.
func (m ResultsModel) Retry() bool { return m.retry }

// Closed reports that the player dismissed the results.
func (m ResultsModel) Closed() bool { return m.closed }

// IsQuitting returns true if user wants to quit entirely.
func (m ResultsModel) IsQuitting() bool { return m.quitting }

// SaveResult stores a cleared or failed play and returns the best result
// recorded before it. Aborted plays are not stored. A nil store is a no-op.
func SaveResult(store *storage.Store, bm *beatmap.Beatmap, snap session.Snapshot) (*storage.Result, error) {
	if store == nil {
		return nil, nil
	}
	previous, err := store.BestResult(bm.Key())
	if err != nil {
		return nil, err
	}
	if snap.State != session.Cleared && snap.State != session.Failed {
		return previous, nil
	}
	_, err = store.SaveResult(storage.NewResult(bm.Key(), bm.Title(), bm.KeyCount, snap.Score))
	return previous, err
}

// ResultsOutcome is what the player chose on the results screen.
type ResultsOutcome struct {
	Retry bool
	Quit  bool
}

// RunResults shows the results screen in its own program.
func RunResults(bm *beatmap.Beatmap, state session.State, sum scoring.Summary, previous *storage.Result, width, height int) (ResultsOutcome, error) {
	model := NewResultsModel(bm, state, sum, previous, width, height)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return ResultsOutcome{}, err
	}
	m, ok := finalModel.(ResultsModel)
	if !ok {
		return ResultsOutcome{Quit: true}, nil
	}
	return ResultsOutcome{Retry: m.Retry(), Quit: m.IsQuitting()}, nil
}
