// Package ghostmatch adapts the match-3 engine to the platform Game
// interface: cursor input, chain replay animation and rendering.
package ghostmatch

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/core"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
	"github.com/vovakirdan/ghost-match/internal/registry"
)

// Variant IDs.
const (
	IDClassic = "ghostmatch"
	IDMini    = "ghostmatch_mini"
)

// messageTicks is how long a turn message stays on screen.
const messageTicks = 90

func init() {
	registry.Register(IDClassic, func(opts registry.Options) registry.Game {
		return New(IDClassic, opts)
	})
	registry.Register(IDMini, func(opts registry.Options) registry.Game {
		return New(IDMini, opts)
	})
}

// Game is one Ghost Match variant.
type Game struct {
	id   string
	opts registry.Options
	cfg  config.GhostMatchConfig

	session  *engine.Session
	logger   *log.Logger
	tick     uint64
	tickRate int

	screenW  int
	screenH  int
	tooSmall bool

	cursor    engine.Position
	selected  engine.Position
	hasSelect bool

	hintA, hintB engine.Position
	showHint     bool
	idleTicks    int

	display engine.Board // what Render draws; trails the session during replay
	replay  *replay

	message      string
	messageColor core.Color
	messageLeft  int
	lastGain     int
}

// New creates a variant. The session is built on the first Reset.
func New(id string, opts registry.Options) *Game {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Game{
		id:     id,
		opts:   opts,
		cfg:    opts.Config,
		logger: opts.Logger,
	}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.id == IDMini {
		return "Ghost Match Mini"
	}
	return "Ghost Match"
}

// Session returns the engine session; nil before the first Reset.
func (g *Game) Session() *engine.Session {
	return g.session
}

// boardSize returns the side length for this variant.
func (g *Game) boardSize() int {
	switch {
	case g.opts.Saved != nil:
		return g.opts.Saved.Size
	case g.opts.Fixture != nil:
		return g.opts.Fixture.Size()
	case g.id == IDMini:
		return g.cfg.Board.MiniSize
	default:
		return g.cfg.Board.Size
	}
}

// Reset starts a new game. A saved game in the options is resumed once;
// a fixture is used for every game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	high := g.opts.HighScore
	if g.session != nil {
		high = max(high, g.session.Status().HighScore)
	}

	ecfg, err := g.cfg.EngineConfig(g.boardSize())
	if err != nil {
		g.logger.Error("invalid config, using defaults", "err", err)
		ecfg = engine.DefaultConfig()
		ecfg.Size = g.boardSize()
	}
	ecfg.Seed = cfg.Seed
	ecfg.Logger = g.logger
	ecfg.Listener = g.opts.Listener

	var start *engine.SavedGame
	switch {
	case g.opts.Saved != nil:
		start = g.opts.Saved
		g.opts.Saved = nil
	case g.opts.Fixture != nil:
		start = g.fixtureStart()
	}
	if start != nil {
		ecfg.Symbols = start.Symbols
	}

	g.session = engine.NewSession(ecfg)
	g.session.SetHighScore(high)
	if start != nil {
		if err := g.session.Restore(*start); err != nil {
			g.logger.Warn("could not restore board, starting fresh", "err", err)
			start = nil
		}
	}
	if start == nil {
		//nolint:errcheck // a new session is always Ready
		g.session.StartGame()
	}

	g.tick = 0
	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = g.cfg.Animation.TickRate
	}
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.cursor = engine.Pos(0, 0)
	g.hasSelect = false
	g.showHint = false
	g.idleTicks = 0
	g.replay = nil
	g.display = g.session.Board()
	g.message = ""
	g.messageLeft = 0
	g.lastGain = 0

	g.checkScreenSize()
}

// fixtureStart converts the fixture into a resumable game at score zero.
func (g *Game) fixtureStart() *engine.SavedGame {
	start, err := g.opts.Fixture.SavedGame()
	if err != nil {
		g.logger.Warn("invalid fixture", "id", g.opts.Fixture.ID, "err", err)
		return nil
	}
	return start
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	if g.messageLeft > 0 {
		g.messageLeft--
	}

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if g.replay != nil {
		if g.replay.advance() {
			g.finishReplay()
		}
		return core.StepResult{State: g.State(), Changed: true}
	}

	st := g.session.Status()

	if in.Has(core.ActionPause) {
		g.togglePause(st.State)
		return core.StepResult{State: g.State(), Changed: true}
	}
	if st.State == engine.StatePaused {
		return core.StepResult{State: g.State()}
	}

	// Restart after game over is handled by the platform through Reset.
	if in.Has(core.ActionRestart) && st.State == engine.StatePlaying {
		g.restart()
		return core.StepResult{State: g.State(), Changed: true}
	}
	if st.State != engine.StatePlaying {
		return core.StepResult{State: g.State()}
	}

	changed := g.handleInput(in)
	if in.Empty() {
		g.idleTicks++
		if after := g.cfg.Animation.HintAfter; after > 0 && !g.showHint && g.idleTicks >= after*g.tickRate {
			g.revealHint()
			changed = true
		}
	} else {
		g.idleTicks = 0
	}
	return core.StepResult{State: g.State(), Changed: changed}
}

func (g *Game) togglePause(state engine.State) {
	var err error
	switch state {
	case engine.StatePlaying:
		err = g.session.Pause()
	case engine.StatePaused:
		err = g.session.Resume()
	}
	if err != nil {
		g.logger.Debug("pause toggle ignored", "err", err)
	}
}

func (g *Game) restart() {
	if err := g.session.Restart(); err != nil {
		g.logger.Warn("restart failed", "err", err)
		return
	}
	g.hasSelect = false
	g.showHint = false
	g.display = g.session.Board()
	g.setMessage("New board", core.ColorGray)
}

// handleInput applies cursor movement and selection. Returns true if
// anything visible changed.
func (g *Game) handleInput(in core.InputFrame) bool {
	n := len(g.display)
	changed := false

	move := func(dr, dc int) {
		g.cursor = engine.Pos(core.Clamp(g.cursor.Row+dr, 0, n-1), core.Clamp(g.cursor.Col+dc, 0, n-1))
		changed = true
	}
	switch {
	case in.Has(core.ActionUp):
		move(-1, 0)
	case in.Has(core.ActionDown):
		move(1, 0)
	case in.Has(core.ActionLeft):
		move(0, -1)
	case in.Has(core.ActionRight):
		move(0, 1)
	}

	if in.Has(core.ActionBack) {
		g.hasSelect = false
		g.showHint = false
		changed = true
	}
	if in.Has(core.ActionHint) {
		g.revealHint()
		changed = true
	}
	if in.Has(core.ActionSelect) {
		g.selectAtCursor()
		changed = true
	}
	return changed
}

// selectAtCursor picks up the tile under the cursor, drops it, or swaps it
// with the held tile when the two are adjacent.
func (g *Game) selectAtCursor() {
	switch {
	case !g.hasSelect:
		g.selected = g.cursor
		g.hasSelect = true
	case g.selected == g.cursor:
		g.hasSelect = false
	case engine.AreAdjacent(g.selected, g.cursor):
		a, b := g.selected, g.cursor
		g.hasSelect = false
		g.trySwap(a, b)
	default:
		g.selected = g.cursor
	}
}

// trySwap submits a swap to the session and starts the replay if accepted.
func (g *Game) trySwap(a, b engine.Position) {
	before := g.session.Board()
	res := g.session.AttemptSwap(a, b)
	if !res.Accepted {
		g.setMessage(rejectMessage(res.Reason), core.ColorRed)
		return
	}

	g.showHint = false
	g.lastGain = res.ScoreGained
	g.replay = newReplay(before, res, g.cfg.Animation)
	g.setMessage(turnMessage(res), turnColor(res))
	if g.replay.done() {
		g.finishReplay()
	}
}

func (g *Game) finishReplay() {
	g.display = g.replay.final
	g.replay = nil
}

func (g *Game) revealHint() {
	a, b, ok := g.session.Hint()
	if !ok {
		return
	}
	g.hintA, g.hintB = a, b
	g.showHint = true
}

func (g *Game) setMessage(msg string, c core.Color) {
	g.message = msg
	g.messageColor = c
	g.messageLeft = messageTicks
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{}
	}
	st := g.session.Status()
	return core.GameState{
		Score:     st.Score,
		HighScore: st.HighScore,
		Moves:     st.Moves,
		GameOver:  st.State == engine.StateGameOver && g.replay == nil,
		Paused:    st.State == engine.StatePaused || g.tooSmall,
		Busy:      g.replay != nil,
	}
}

// Cursor returns the cursor position.
func (g *Game) Cursor() engine.Position {
	return g.cursor
}

// Selection returns the held tile, if any.
func (g *Game) Selection() (engine.Position, bool) {
	return g.selected, g.hasSelect
}

// checkScreenSize checks if the screen is large enough for the board and HUD.
func (g *Game) checkScreenSize() {
	w, h := layoutSize(len(g.display))
	g.tooSmall = g.screenW < w || g.screenH < h
}

// rejectMessage explains a refused swap.
func rejectMessage(reason string) string {
	switch reason {
	case engine.ReasonNoMatch:
		return "No match there"
	case engine.ReasonNotAdjacent:
		return "Tiles must be adjacent"
	case engine.ReasonBusy:
		return "Still resolving"
	default:
		return "Can't swap: " + reason
	}
}

// turnMessage summarizes an accepted turn.
func turnMessage(res engine.TurnResult) string {
	msg := fmt.Sprintf("+%d", res.ScoreGained)
	if n := res.Chain.TotalPasses; n > 1 {
		msg += fmt.Sprintf("  Chain x%d", n)
	}
	if len(res.Milestones) > 0 {
		msg += fmt.Sprintf("  Milestone %s!", engine.FormatScore(res.Milestones[len(res.Milestones)-1]))
	}
	return msg
}

func turnColor(res engine.TurnResult) core.Color {
	switch {
	case len(res.Milestones) > 0:
		return core.ColorBrightYellow
	case res.Chain.TotalPasses > 1:
		return core.ColorBrightMagenta
	default:
		return core.ColorBrightGreen
	}
}
