package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/storage"
)

// MenuItem is one selectable difficulty.
type MenuItem struct {
	Beatmap *beatmap.Beatmap
	Best    *storage.Result // nil without history
}

// MenuModel is the Bubble Tea model for the difficulty picker.
type MenuModel struct {
	title          string
	items          []MenuItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem // Set when user selects a difficulty
	openScoreboard bool      // True if user pressed Tab for scores
	status         string
}

// NewMenuModel creates a menu over the given difficulties. store may be nil.
func NewMenuModel(title string, maps []*beatmap.Beatmap, store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	items := make([]MenuItem, 0, len(maps))
	for _, bm := range maps {
		item := MenuItem{Beatmap: bm}
		if store != nil {
			if best, err := store.BestResult(bm.Key()); err == nil {
				item.Best = best
			}
		}
		items = append(items, item)
	}

	return MenuModel{
		title:     title,
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(nil),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "tab" {
			m.openScoreboard = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config = m.config.WithSize(msg.Width, msg.Height)
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	menuDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(m.title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a difficulty", m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(menuDimStyle.Render("No playable charts found."), m.width))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		line := describe(item)
		if i == m.cursor {
			line = menuCursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(centerText(menuDimStyle.Render(m.status), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

func describe(item MenuItem) string {
	bm := item.Beatmap
	name := bm.Metadata.Version
	if name == "" {
		name = bm.Title()
	}
	line := fmt.Sprintf("%-24s %dK  %4d notes  %s", truncate(name, 24), bm.KeyCount, len(bm.Notes), formatLength(bm.TotalLength()))
	if item.Best != nil {
		line += fmt.Sprintf("  best %s %d", item.Best.Grade, item.Best.Score)
	}
	return line
}

func formatLength(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// WithStatus returns the menu with a message shown under the list.
func (m MenuModel) WithStatus(status string) MenuModel {
	m.status = status
	return m
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scores.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Beatmap         *beatmap.Beatmap
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the difficulty picker and returns the selection.
func RunMenu(title string, maps []*beatmap.Beatmap, store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(title, maps, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}
	switch {
	case m.WantsScoreboard():
		result.WantsScoreboard = true
	case m.Selected() != nil:
		result.Beatmap = m.Selected().Beatmap
	default:
		result.Quit = true
	}
	return result, nil
}
