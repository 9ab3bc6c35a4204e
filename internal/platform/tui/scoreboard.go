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
	"github.com/vovakirdan/termania/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the difficulty sidebar
	sidebarWidth       = 24  // Width of difficulty sidebar
	maxResults         = 100 // Max results to load
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next difficulty"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev difficulty"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel lists stored results per difficulty.
type ScoreboardModel struct {
	maps      []*beatmap.Beatmap
	cursor    int
	store     *storage.Store
	results   []storage.Result
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard over the given difficulties.
func NewScoreboardModel(maps []*beatmap.Beatmap, store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		maps:   maps,
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *ScoreboardModel) showSidebar() bool {
	return m.width >= minWidthForSidebar && len(m.maps) > 1
}

func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Score", Width: 10},
		{Title: "Acc", Width: 8},
		{Title: "Grade", Width: 5},
		{Title: "Combo", Width: 6},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *ScoreboardModel) load() {
	m.results, m.loadErr = nil, nil
	if m.store != nil && len(m.maps) > 0 {
		m.results, m.loadErr = m.store.TopResults(m.maps[m.cursor].Key(), maxResults)
	}

	rows := make([]table.Row, len(m.results))
	for i, r := range m.results {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%.2f%%", r.Accuracy),
			string(r.Grade),
			fmt.Sprintf("%d", r.MaxCombo),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			if len(m.maps) > 0 {
				m.cursor = (m.cursor + 1) % len(m.maps)
				m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			if len(m.maps) > 0 {
				m.cursor = (m.cursor - 1 + len(m.maps)) % len(m.maps)
				m.load()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.load()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	title := "RESULTS"
	if len(m.maps) > 0 {
		title = "RESULTS - " + m.maps[m.cursor].Title()
	}
	b.WriteString(centerText(menuTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	content := resultsBoxStyle.Render(m.tableContent())
	if m.showSidebar() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), "  ", content)
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, content))
	b.WriteString("\n")
	b.WriteString(menuDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) sidebar() string {
	var sb strings.Builder
	sb.WriteString("Difficulties\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")
	for i, bm := range m.maps {
		name := bm.Metadata.Version
		if name == "" {
			name = fmt.Sprintf("%dK", bm.KeyCount)
		}
		name = truncate(name, sidebarWidth-6)
		if i == m.cursor {
			sb.WriteString(menuCursorStyle.Render("> " + name))
		} else {
			sb.WriteString("  " + name)
		}
		sb.WriteString("\n")
	}
	return resultsBoxStyle.Width(sidebarWidth).Render(sb.String())
}

func (m ScoreboardModel) tableContent() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.store == nil:
		return empty.Render("Results history is disabled.\nPass --db or set storage.enabled.")
	case m.loadErr != nil:
		return empty.Render("Could not load results:\n" + m.loadErr.Error())
	case len(m.results) == 0:
		return empty.Render("No results recorded yet.\nPlay this difficulty to set one!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to the menu, false if quitting.
func RunScoreboard(maps []*beatmap.Beatmap, store *storage.Store, width, height int) (goBack bool, err error) {
	model := NewScoreboardModel(maps, store, width, height)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
