package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/termania/internal/audio"
	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/registry"
	"github.com/vovakirdan/termania/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.termania/host_key.
	HostKeyPath string

	// BeatmapDir is scanned for charts when the server starts.
	BeatmapDir string

	// DBPath enables results history when set.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	App      config.AppConfig
	Keybinds config.Keybinds
	Logger   *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		BeatmapDir:  ".",
		IdleTimeout: 30 * time.Minute,
		App:         config.Default(),
		Keybinds:    config.DefaultKeybinds(),
	}
}

// SSHServer serves termania over SSH. Audio cannot reach the client, so
// every session runs on the silent clock.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	maps   []*beatmap.Beatmap
	logger *log.Logger
}

// NewSSHServer loads the chart library and creates the SSH server.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "termania-ssh",
		})
	}

	maps, loadErrs, err := registry.LoadDir(cfg.BeatmapDir)
	if err != nil {
		return nil, err
	}
	for _, e := range loadErrs {
		logger.Warn("skipping chart", "error", e)
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("no playable charts under %s", cfg.BeatmapDir)
	}
	logger.Info("chart library loaded", "dir", cfg.BeatmapDir, "charts", len(maps))

	var store *storage.Store
	if cfg.DBPath != "" {
		store, err = storage.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("could not open results database", "error", err)
			store = nil
		}
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		maps:   maps,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".termania", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	rt := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		FPS:     s.config.App.Visual.FPSTarget,
	}
	logger := s.logger.With("user", sshSession.User())
	model := NewSessionModel(s.maps, s.store, s.config.App, s.config.Keybinds, rt, logger)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type screen int

const (
	screenMenu screen = iota
	screenPlay
	screenResults
	screenScores
)

// SessionModel runs the full flow for one connection:
// menu -> play -> results -> menu, with the scoreboard reachable from the menu.
type SessionModel struct {
	maps     []*beatmap.Beatmap
	store    *storage.Store
	app      config.AppConfig
	keybinds config.Keybinds
	runtime  core.RuntimeConfig
	logger   *log.Logger

	screen   screen
	menu     MenuModel
	play     PlayModel
	results  ResultsModel
	scores   ScoreboardModel
	current  *beatmap.Beatmap
	quitting bool
}

// NewSessionModel creates a session model over a chart library.
func NewSessionModel(maps []*beatmap.Beatmap, store *storage.Store, app config.AppConfig, kb config.Keybinds, rt core.RuntimeConfig, logger *log.Logger) SessionModel {
	return SessionModel{
		maps:     maps,
		store:    store,
		app:      app,
		keybinds: kb,
		runtime:  rt,
		logger:   logger,
		menu:     NewMenuModel("T E R M A N I A", maps, store, rt),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.runtime = m.runtime.WithSize(wsm.Width, wsm.Height)
	}

	switch m.screen {
	case screenPlay:
		return m.updatePlay(msg)
	case screenResults:
		return m.updateResults(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) backToMenu(status string) (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel("T E R M A N I A", m.maps, m.store, m.runtime).WithStatus(status)
	return m, m.menu.Init()
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.menu.WantsScoreboard():
		m.screen = screenScores
		m.scores = NewScoreboardModel(m.maps, m.store, m.runtime.ScreenW, m.runtime.ScreenH)
		return m, m.scores.Init()
	case m.menu.Selected() != nil:
		return m.startPlay(m.menu.Selected().Beatmap)
	}
	return m, cmd
}

func (m SessionModel) startPlay(bm *beatmap.Beatmap) (tea.Model, tea.Cmd) {
	labels, err := m.keybinds.For(bm.KeyCount)
	if err != nil {
		return m.backToMenu(err.Error())
	}
	keys, err := input.NewKeymap(labels)
	if err != nil {
		return m.backToMenu(err.Error())
	}

	length := time.Duration(bm.TotalLength()) * time.Millisecond
	play, err := NewPlayModel(PlayConfig{
		Beatmap: bm,
		Audio:   audio.NewSilent(length, nil),
		Keys:    keys,
		App:     m.app,
		Runtime: m.runtime,
		Logger:  m.logger,
	})
	if err != nil {
		return m.backToMenu(err.Error())
	}

	m.logger.Info("play started", "chart", bm.Title())
	m.current = bm
	m.play = play
	m.screen = screenPlay
	return m, m.play.Init()
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPlay, cmd := m.play.Update(msg)
	if playModel, ok := newPlay.(PlayModel); ok {
		m.play = playModel
	}
	if !m.play.Done() {
		return m, cmd
	}

	snap := m.play.Snapshot()
	previous, err := SaveResult(m.store, m.current, snap)
	if err != nil {
		m.logger.Warn("could not save result", "error", err)
	}
	m.results = NewResultsModel(m.current, snap.State, snap.Score, previous, m.runtime.ScreenW, m.runtime.ScreenH)
	m.screen = screenResults
	return m, m.results.Init()
}

func (m SessionModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	newResults, cmd := m.results.Update(msg)
	if resultsModel, ok := newResults.(ResultsModel); ok {
		m.results = resultsModel
	}

	switch {
	case m.results.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.results.Retry():
		return m.startPlay(m.current)
	case m.results.Closed():
		return m.backToMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newScores, cmd := m.scores.Update(msg)
	if scoresModel, ok := newScores.(ScoreboardModel); ok {
		m.scores = scoresModel
	}

	switch {
	case m.scores.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scores.IsGoingBack():
		return m.backToMenu("")
	}
	return m, cmd
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenPlay:
		return m.play.View()
	case screenResults:
		return m.results.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// Screen reports which screen is active, for tests.
func (m SessionModel) Screen() string {
	switch m.screen {
	case screenPlay:
		return "play"
	case screenResults:
		return "results"
	case screenScores:
		return "scores"
	default:
		return "menu"
	}
}
