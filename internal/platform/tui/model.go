package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghost-match/internal/audio"
	"github.com/vovakirdan/ghost-match/internal/core"
	"github.com/vovakirdan/ghost-match/internal/registry"
	"github.com/vovakirdan/ghost-match/internal/storage"
)

// Deps are the services a game screen uses. Every field is optional.
type Deps struct {
	Store  storage.Store
	Audio  *audio.Player
	Logger *log.Logger

	// SaveProgress stores an unfinished game on quit so it can be resumed.
	SaveProgress bool

	// ScreenshotDir receives ctrl+s captures; empty disables them.
	ScreenshotDir string
}

// resizer is implemented by games that can adapt to a new window size
// without restarting.
type resizer interface {
	Resize(w, h int)
}

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	deps       Deps
	logger     *log.Logger
	config     core.RuntimeConfig
	keys       *KeyMapper
	help       help.Model
	showHelp   bool
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
	backToMenu bool
	recorded   bool // Whether the current game over has been stored
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, deps Deps) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		deps:       deps,
		logger:     logger,
		config:     cfg,
		keys:       NewKeyMapper(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	// A saved game handed to the game's options is resumed here.
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Keys
	switch {
	case key.Matches(msg, keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, keys.Mute):
		m.toggleMute()
		return m, nil
	}

	if m.showHelp {
		if key.Matches(msg, keys.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	// Back leaves the game from the pause screen or after game over.
	if key.Matches(msg, keys.Back) && (m.gameState.Paused || m.gameState.GameOver) {
		m.saveProgress()
		m.backToMenu = true
		return m, tea.Quit
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.saveProgress()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	// Restart after game over starts a fresh board with a new seed.
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.recorded = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver && !m.recorded {
		m.recordGame()
		m.recorded = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// recordGame stores a finished game's score and stats and drops any saved
// progress for the variant.
func (m *Model) recordGame() {
	store := m.deps.Store
	session := m.game.Session()
	if store == nil || session == nil {
		return
	}
	id := m.game.ID()

	if err := store.ClearGame(id); err != nil {
		m.logger.Warn("could not clear saved game", "game", id, "err", err)
	}

	status := session.Status()
	if status.Moves == 0 {
		return
	}
	total, err := storage.RecordGame(store, id, status, session.ScoreStats())
	if err != nil {
		m.logger.Error("could not record game", "game", id, "err", err)
		return
	}
	m.logger.Info("game recorded", "game", id, "score", status.Score, "games_played", total.GamesPlayed)
}

// saveProgress stores an unfinished game so the next run can resume it.
func (m *Model) saveProgress() {
	store := m.deps.Store
	session := m.game.Session()
	if !m.deps.SaveProgress || store == nil || session == nil || m.gameState.GameOver {
		return
	}
	if session.Status().Moves == 0 {
		return
	}

	saved, err := session.Save()
	if err != nil {
		m.logger.Warn("could not snapshot game", "err", err)
		return
	}
	if err := store.SaveGame(m.game.ID(), saved); err != nil {
		m.logger.Error("could not save game", "game", m.game.ID(), "err", err)
		return
	}
	m.logger.Info("game saved", "game", m.game.ID(), "score", saved.Score, "moves", saved.Moves)
}

// toggleMute flips audio mute and persists it.
func (m *Model) toggleMute() {
	player := m.deps.Audio
	if player == nil {
		return
	}
	muted := player.ToggleMute()

	store := m.deps.Store
	if store == nil {
		return
	}
	settings, err := store.LoadSettings()
	if err != nil {
		settings = storage.DefaultSettings()
	}
	settings.AudioEnabled = !muted
	if err := store.SaveSettings(settings); err != nil {
		m.logger.Warn("could not save settings", "err", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.deps.ScreenshotDir == "" {
		return
	}
	m.game.Render(m.screen)

	if err := os.MkdirAll(m.deps.ScreenshotDir, 0o755); err != nil {
		m.logger.Warn("could not create screenshot dir", "err", err)
		return
	}
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(m.deps.ScreenshotDir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	if m.showHelp {
		m.help.ShowAll = true
		panel := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Render("Controls\n\n" + m.help.View(m.keys.Keys))
		return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, panel)
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program for one game. It reports whether the
// player asked to go back to the menu.
func Run(game registry.Game, cfg core.RuntimeConfig, deps Deps) (backToMenu bool, err error) {
	p := tea.NewProgram(
		NewModel(game, cfg, deps),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	if !ok {
		return false, errors.New("tui: unexpected model type")
	}
	return m.BackToMenu(), nil
}
