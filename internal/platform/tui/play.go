package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/session"
	"github.com/vovakirdan/termania/internal/timing"
)

const hudWidth = 28

// PlayConfig is everything a play screen needs.
type PlayConfig struct {
	Beatmap *beatmap.Beatmap
	Audio   timing.AudioClock
	Keys    *input.Keymap
	App     config.AppConfig
	Runtime core.RuntimeConfig
	Logger  *log.Logger

	// Wall stamps key presses and drives the stopwatch. Nil means the
	// system clock.
	Wall timing.WallClock

	// Collapse routes every lane key to column 0.
	Collapse bool

	RecordTrace bool
}

// PlayModel is the Bubble Tea model for one play-through. Key messages are
// the input source: they are stamped on arrival, turned into press and
// synthesized release edges, and queued for the session's next tick.
type PlayModel struct {
	cfg     PlayConfig
	session *session.Session
	clock   *timing.Engine
	queue   *input.Queue
	release *input.ReleaseTracker
	keys    *KeyMapper
	layout  Layout
	screen  *core.Screen
	health  progress.Model
	song    progress.Model
	runtime core.RuntimeConfig
	log     *log.Logger
	snap    session.Snapshot
	done    bool
}

// NewPlayModel prepares the clock, queue and session for a beatmap.
func NewPlayModel(cfg PlayConfig) (PlayModel, error) {
	bm := cfg.Beatmap
	if bm == nil {
		return PlayModel{}, fmt.Errorf("play: no beatmap")
	}
	if cfg.Keys == nil {
		return PlayModel{}, fmt.Errorf("play: no key bindings")
	}
	if !cfg.Collapse && cfg.Keys.Lanes() != bm.KeyCount {
		return PlayModel{}, fmt.Errorf("play: %d key bindings for a %dK chart", cfg.Keys.Lanes(), bm.KeyCount)
	}
	if cfg.Wall == nil {
		cfg.Wall = timing.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Runtime.ScreenW == 0 || cfg.Runtime.ScreenH == 0 {
		cfg.Runtime = core.DefaultConfig()
	}
	if cfg.Runtime.FPS == 0 {
		cfg.Runtime.FPS = cfg.App.Visual.FPSTarget
	}

	opts, err := cfg.App.SessionOptions(logger)
	if err != nil {
		return PlayModel{}, err
	}
	opts.RecordTrace = cfg.RecordTrace

	clock := timing.NewEngine(timing.Config{
		Audio:    cfg.Audio,
		Wall:     cfg.Wall,
		OffsetMs: cfg.App.Audio.OffsetMs,
		LeadInMs: max(cfg.App.Gameplay.LeadInMs, bm.AudioLeadIn),
	})
	queue := input.NewQueue(cfg.App.Input.QueueSize)
	s, err := session.New(bm, clock, queue, opts)
	if err != nil {
		return PlayModel{}, err
	}

	labels := make([]string, bm.KeyCount)
	if cfg.Collapse {
		labels[0] = "any"
	} else {
		for i := range labels {
			labels[i] = cfg.Keys.Label(i)
		}
	}

	health := progress.New(progress.WithScaledGradient("#FF0000", "#00FF00"))
	health.Width = hudWidth - 8
	health.ShowPercentage = false
	song := progress.New(progress.WithSolidFill("#5A56E0"))
	song.Width = hudWidth - 8
	song.ShowPercentage = false

	m := PlayModel{
		cfg:     cfg,
		session: s,
		clock:   clock,
		queue:   queue,
		release: input.NewReleaseTracker(cfg.Keys.Lanes(), cfg.App.Gameplay.ReleaseTimeout()),
		keys:    NewKeyMapper(cfg.Keys),
		layout:  NewLayout(cfg.App, bm.KeyCount, labels),
		health:  health,
		song:    song,
		runtime: cfg.Runtime,
		log:     logger,
	}
	m.screen = core.NewScreen(m.layout.Width(), m.fieldHeight())
	m.snap.KeyCount = bm.KeyCount
	m.snap.SongTime = -clock.LeadIn()
	return m, nil
}

func (m PlayModel) fieldHeight() int {
	return max(m.runtime.ScreenH-1, 4)
}

// Init starts the tick loop.
func (m PlayModel) Init() tea.Cmd {
	return tickCmd(m.runtime.FPS)
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.runtime = m.runtime.WithSize(msg.Width, msg.Height)
		m.screen.Resize(m.layout.Width(), m.fieldHeight())
		return m, nil

	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	action, lane := m.keys.MapKey(msg)
	switch action {
	case PlayActionAbort:
		m.session.Abort()
	case PlayActionLane:
		col := lane
		if m.cfg.Collapse {
			col = 0
		}
		holding := m.session.Judge().Active(col) >= 0
		for _, ev := range m.release.Key(lane, m.cfg.Wall.Now(), holding) {
			m.push(ev)
		}
	}
	return m, nil
}

func (m PlayModel) push(ev input.Event) {
	if m.cfg.Collapse {
		ev.Column = 0
	}
	if !m.queue.Push(ev) {
		m.log.Warn("input dropped", "column", ev.Column, "pressed", ev.Pressed, "dropped", m.queue.Dropped())
	}
}

func (m PlayModel) handleTick() (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	for _, ev := range m.release.Expire(m.cfg.Wall.Now()) {
		m.push(ev)
	}
	m.snap = m.session.Tick()
	if m.snap.State.Terminal() {
		m.done = true
		return m, tea.Quit
	}
	return m, tickCmd(m.runtime.FPS)
}

// View renders the playfield with the HUD beside it.
func (m PlayModel) View() string {
	if m.screen.Width() == 0 || m.screen.Height() == 0 {
		return ""
	}
	m.screen.Clear()
	DrawPlayfield(m.screen, m.snap, m.layout, m.screen.Bounds())

	field := RenderScreen(m.screen)
	body := lipgloss.JoinHorizontal(lipgloss.Top, field, "  ", m.hud())
	return lipgloss.Place(m.runtime.ScreenW, m.runtime.ScreenH, lipgloss.Center, lipgloss.Top, body)
}

var (
	hudTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hudLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hudValueStyle = lipgloss.NewStyle().Bold(true)
)

func (m PlayModel) hud() string {
	sum := m.snap.Score
	var b strings.Builder

	b.WriteString(hudTitleStyle.Render(truncate(m.cfg.Beatmap.Title(), hudWidth)))
	b.WriteString("\n\n")
	line := func(label, value string) {
		b.WriteString(hudLabelStyle.Render(fmt.Sprintf("%-8s", label)))
		b.WriteString(hudValueStyle.Render(value))
		b.WriteString("\n")
	}
	line("Score", fmt.Sprintf("%d", sum.Score))
	line("Combo", fmt.Sprintf("%d  x%d", sum.Combo, sum.Multiplier))
	line("Acc", fmt.Sprintf("%.2f%%", sum.Accuracy))
	b.WriteString("\n")
	b.WriteString(hudLabelStyle.Render(fmt.Sprintf("%-8s", "Health")))
	b.WriteString(m.health.ViewAs(sum.HealthRatio()))
	b.WriteString("\n")
	b.WriteString(hudLabelStyle.Render(fmt.Sprintf("%-8s", "Song")))
	b.WriteString(m.song.ViewAs(m.snap.Progress))
	b.WriteString("\n\n")

	for t := judge.Marv; t <= judge.Miss; t++ {
		style := styleFor(TierColor(t))
		b.WriteString(style.Render(fmt.Sprintf("%-6s %5d", t, sum.Counts[t])))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hudLabelStyle.Render("esc: quit"))
	if m.snap.Dropped > 0 {
		b.WriteString(hudLabelStyle.Render(fmt.Sprintf("  dropped %d", m.snap.Dropped)))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Done reports that the session reached a terminal state.
func (m PlayModel) Done() bool { return m.done }

// Snapshot returns the latest snapshot.
func (m PlayModel) Snapshot() session.Snapshot { return m.snap }

// Session returns the underlying session.
func (m PlayModel) Session() *session.Session { return m.session }

// Clock returns the song-time engine.
func (m PlayModel) Clock() *timing.Engine { return m.clock }

// Runtime returns the current terminal size and frame rate.
func (m PlayModel) Runtime() core.RuntimeConfig { return m.runtime }

// RunPlay plays a beatmap in its own Bubble Tea program and returns the
// finished model.
func RunPlay(cfg PlayConfig, opts ...tea.ProgramOption) (PlayModel, error) {
	model, err := NewPlayModel(cfg)
	if err != nil {
		return PlayModel{}, err
	}

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	final, err := p.Run()
	if err != nil {
		return model, err
	}
	m, ok := final.(PlayModel)
	if !ok {
		return model, fmt.Errorf("play: unexpected model %T", final)
	}
	if !m.done {
		// The program ended without a terminal tick (for example on a
		// signal): close the session out as aborted.
		m.session.Abort()
		m.snap = m.session.Tick()
		m.done = true
	}
	return m, nil
}
