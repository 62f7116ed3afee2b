package ghostmatch

import "github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"

// Snapshot captures the game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	State     string
	Score     int
	HighScore int
	Moves     int
	LastGain  int
	Cursor    engine.Position
	Selected  *engine.Position
	Board     engine.Board
	Animating bool
}

// Snapshot returns the current game snapshot. Board is the settled board,
// not the frame being replayed.
func (g *Game) Snapshot() Snapshot {
	st := g.session.Status()
	state := st.State.String()
	if g.tooSmall {
		state = "paused_small_window"
	}

	snap := Snapshot{
		Tick:      g.tick,
		State:     state,
		Score:     st.Score,
		HighScore: st.HighScore,
		Moves:     st.Moves,
		LastGain:  g.lastGain,
		Cursor:    g.cursor,
		Board:     g.session.Board(),
		Animating: g.replay != nil,
	}
	if g.hasSelect {
		sel := g.selected
		snap.Selected = &sel
	}
	return snap
}

// Resize updates the screen size and re-checks whether the board fits.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	g.checkScreenSize()
}
