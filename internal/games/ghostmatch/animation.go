package ghostmatch

import (
	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// frameKind selects how highlighted cells are drawn.
type frameKind int

const (
	frameSwap frameKind = iota
	frameFlash
	frameFall
	frameSpawn
)

// frame is one still of the replay, held for ticks steps.
type frame struct {
	kind      frameKind
	board     engine.Board
	highlight map[engine.Position]bool
	pass      int
	ticks     int
}

// replay plays back a resolved turn. The engine resolves the whole chain
// at once; the replay rebuilds the intermediate boards from the pass records.
type replay struct {
	frames []frame
	idx    int
	left   int
	final  engine.Board
}

func newReplay(before engine.Board, res engine.TurnResult, anim config.AnimationConfig) *replay {
	r := &replay{final: res.Board}
	board := before.Clone()

	swapCells(board, res.Swap.A, res.Swap.B)
	r.push(frame{
		kind:      frameSwap,
		board:     board.Clone(),
		highlight: cellSet(res.Swap.A, res.Swap.B),
		ticks:     anim.SwapTicks,
	})

	fallTicks := max(anim.FallTicks/2, 1)
	for _, p := range res.Chain.Passes {
		removed := make(map[engine.Position]bool, len(p.Removed))
		for _, rm := range p.Removed {
			removed[rm.Pos] = true
		}
		r.push(frame{kind: frameFlash, board: board.Clone(), highlight: removed, pass: p.Index, ticks: anim.FlashTicks})

		for _, rm := range p.Removed {
			board[rm.Pos.Row][rm.Pos.Col] = engine.Empty
		}
		for _, mv := range p.Movements {
			board[mv.From.Row][mv.From.Col] = engine.Empty
			board[mv.To.Row][mv.To.Col] = mv.Symbol
		}
		r.push(frame{kind: frameFall, board: board.Clone(), pass: p.Index, ticks: fallTicks})

		spawned := make(map[engine.Position]bool, len(p.NewTiles))
		for _, sp := range p.NewTiles {
			board[sp.Pos.Row][sp.Pos.Col] = sp.Symbol
			spawned[sp.Pos] = true
		}
		r.push(frame{kind: frameSpawn, board: board.Clone(), highlight: spawned, pass: p.Index, ticks: anim.FallTicks - fallTicks})
	}

	if len(r.frames) > 0 {
		r.left = r.frames[0].ticks
	}
	return r
}

// push appends f unless it has no duration.
func (r *replay) push(f frame) {
	if f.ticks > 0 {
		r.frames = append(r.frames, f)
	}
}

// current returns the frame on screen.
func (r *replay) current() frame {
	return r.frames[r.idx]
}

// done reports whether every frame has been shown.
func (r *replay) done() bool {
	return r.idx >= len(r.frames)
}

// advance moves one tick forward and reports whether the replay finished.
func (r *replay) advance() bool {
	if r.done() {
		return true
	}
	r.left--
	for r.left <= 0 {
		r.idx++
		if r.done() {
			return true
		}
		r.left = r.frames[r.idx].ticks
	}
	return false
}

func swapCells(b engine.Board, a, c engine.Position) {
	b[a.Row][a.Col], b[c.Row][c.Col] = b[c.Row][c.Col], b[a.Row][a.Col]
}

func cellSet(ps ...engine.Position) map[engine.Position]bool {
	m := make(map[engine.Position]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}
