package engine

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

// ChainPass is the immutable record of one detect/score/remove/fall/refill cycle.
type ChainPass struct {
	Index        int // 1-based
	Matches      []Match
	BaseScore    int
	Multiplier   decimal.Decimal
	FinalScore   int
	RemovedCount int
	Removed      []Removal
	Movements    []Movement
	NewTiles     []Spawn
}

// ChainResult aggregates a full resolution.
type ChainResult struct {
	Success         bool
	Passes          []ChainPass
	TotalPasses     int
	TotalScore      int
	FinalMultiplier decimal.Decimal
	CapReached      bool
	Err             error
}

// ChainStats accumulates totals over every resolution run by an engine.
type ChainStats struct {
	Resolutions   int
	TotalPasses   int
	TotalScore    int
	TotalMatches  int
	MaxChain      int
	MaxMultiplier decimal.Decimal
	CapHits       int
	Failures      int
}

// AveragePasses returns passes per resolution.
func (s ChainStats) AveragePasses() float64 {
	if s.Resolutions == 0 {
		return 0
	}
	return float64(s.TotalPasses) / float64(s.Resolutions)
}

// ChainEngine resolves cascades on one grid. Only one resolution may run at a time.
type ChainEngine struct {
	grid     *Grid
	detector *Detector
	logger   *log.Logger

	resolving bool
	stats     ChainStats

	passHook func(pass int) // test seam, runs at the start of each pass
}

// NewChainEngine creates an engine bound to grid. A nil logger discards output.
func NewChainEngine(grid *Grid, detector *Detector, logger *log.Logger) *ChainEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ChainEngine{
		grid:     grid,
		detector: detector,
		logger:   logger,
		stats:    ChainStats{MaxMultiplier: decimal.NewFromInt(1)},
	}
}

// Grid returns the grid the engine operates on.
func (e *ChainEngine) Grid() *Grid {
	return e.grid
}

// Resolving reports whether a resolution is in flight.
func (e *ChainEngine) Resolving() bool {
	return e.resolving
}

// Stats returns accumulated totals.
func (e *ChainEngine) Stats() ChainStats {
	return e.stats
}

// ResetStats clears accumulated totals.
func (e *ChainEngine) ResetStats() {
	e.stats = ChainStats{MaxMultiplier: decimal.NewFromInt(1)}
}

// Resolve runs passes until the board is stable, the pass cap is reached,
// or a pass fails.
func (e *ChainEngine) Resolve() ChainResult {
	run, err := e.Begin()
	if err != nil {
		return ChainResult{Err: err, FinalMultiplier: decimal.NewFromInt(1)}
	}
	return run.Result()
}

// Begin starts a resolution that the caller advances one pass at a time.
func (e *ChainEngine) Begin() (*ChainRun, error) {
	if e.resolving {
		return nil, ErrChainInProgress
	}
	e.resolving = true
	return &ChainRun{engine: e}, nil
}

// ChainRun is an in-flight resolution.
type ChainRun struct {
	engine *ChainEngine
	result ChainResult
	done   bool
}

// Next computes the next pass. It returns false once the chain has stopped.
func (r *ChainRun) Next() (ChainPass, bool) {
	if r.done {
		return ChainPass{}, false
	}
	e := r.engine
	index := len(r.result.Passes) + 1
	rules := e.detector.Rules()

	if index > rules.MaxPasses {
		if e.detector.FindAll(e.grid.cells).HasMatches {
			r.result.CapReached = true
			e.logger.Warn("chain pass cap reached", "passes", rules.MaxPasses, "board", e.grid.String())
		}
		r.finish(true, nil)
		return ChainPass{}, false
	}

	pass, found, err := e.runPass(index)
	if err != nil {
		e.logger.Error("chain pass failed", "pass", index, "error", err)
		r.finish(false, err)
		return ChainPass{}, false
	}
	if !found {
		r.finish(true, nil)
		return ChainPass{}, false
	}

	r.result.Passes = append(r.result.Passes, pass)
	r.result.TotalScore += pass.FinalScore
	return pass, true
}

// Result drains any remaining passes and returns the aggregate.
func (r *ChainRun) Result() ChainResult {
	for !r.done {
		r.Next()
	}
	return r.result
}

func (r *ChainRun) finish(success bool, err error) {
	r.done = true
	r.result.Success = success
	r.result.Err = err
	r.result.TotalPasses = len(r.result.Passes)
	r.result.FinalMultiplier = decimal.NewFromInt(1)
	if n := len(r.result.Passes); n > 0 {
		r.result.FinalMultiplier = r.result.Passes[n-1].Multiplier
	}

	e := r.engine
	e.resolving = false
	e.record(r.result)
}

func (e *ChainEngine) record(res ChainResult) {
	st := &e.stats
	st.Resolutions++
	st.TotalPasses += res.TotalPasses
	st.TotalScore += res.TotalScore
	for _, p := range res.Passes {
		st.TotalMatches += len(p.Matches)
	}
	if res.TotalPasses > st.MaxChain {
		st.MaxChain = res.TotalPasses
	}
	if res.FinalMultiplier.GreaterThan(st.MaxMultiplier) {
		st.MaxMultiplier = res.FinalMultiplier
	}
	if res.CapReached {
		st.CapHits++
	}
	if !res.Success {
		st.Failures++
	}
}

// runPass performs one cycle. found is false when the board has no matches.
// Panics inside the pass are converted to errors wrapping ErrChainResolution.
func (e *ChainEngine) runPass(index int) (pass ChainPass, found bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: pass %d: %v", ErrChainResolution, index, rec)
			found = false
		}
	}()

	if e.passHook != nil {
		e.passHook(index)
	}

	det := e.detector.FindAll(e.grid.cells)
	if !det.HasMatches {
		return ChainPass{}, false, nil
	}

	matches := e.detector.ResolveOverlaps(det.All())
	rules := e.detector.Rules()
	one := decimal.NewFromInt(1)

	base := 0
	for _, m := range matches {
		base += rules.MatchScore(m, one)
	}
	mult := rules.PassMultiplier(index)

	removed := e.grid.RemoveAt(Positions(matches))
	moves := e.grid.ApplyGravity()
	spawns := e.grid.FillEmptyIntelligently()

	if !e.grid.IsFull() {
		return ChainPass{}, false, fmt.Errorf("%w: pass %d left %d empty cells",
			ErrChainResolution, index, len(e.grid.EmptyPositions()))
	}

	pass = ChainPass{
		Index:        index,
		Matches:      matches,
		BaseScore:    base,
		Multiplier:   mult,
		FinalScore:   ApplyMultiplier(base, mult),
		RemovedCount: len(removed),
		Removed:      removed,
		Movements:    moves,
		NewTiles:     spawns,
	}
	e.logger.Debug("chain pass",
		"pass", index,
		"matches", len(matches),
		"removed", len(removed),
		"base", base,
		"multiplier", mult.String(),
		"score", pass.FinalScore,
	)
	return pass, true, nil
}

// Settle clears any matches without scoring, for recovering a board left
// dirty by a failed or truncated resolution. If the board is still unstable
// after the pass cap it is regenerated. Returns true if the board changed.
func (e *ChainEngine) Settle() bool {
	changed := false
	rules := e.detector.Rules()
	for i := 0; i < rules.MaxPasses; i++ {
		if e.grid.NeedsGravity() || !e.grid.IsFull() {
			e.grid.ProcessGravityAndFill()
			changed = true
		}
		det := e.detector.FindAll(e.grid.cells)
		if !det.HasMatches {
			return changed
		}
		e.grid.RemoveAt(Positions(det.All()))
		e.grid.ProcessGravityAndFill()
		changed = true
	}
	if e.detector.FindAll(e.grid.cells).HasMatches {
		e.logger.Warn("board would not settle, regenerating")
		e.grid.Initialize()
		changed = true
	}
	return changed
}

// PredictChain simulates a resolution on a copy of g and reports the passes
// it would produce, capped at maxSteps. g is not modified.
func PredictChain(g *Grid, d *Detector, maxSteps int) ChainResult {
	if maxSteps <= 0 {
		maxSteps = 5
	}
	rules := d.Rules()
	rules.MaxPasses = maxSteps
	sim := NewChainEngine(g.Clone(), NewDetector(rules), nil)
	return sim.Resolve()
}

// ValidateChain checks a result for internal consistency.
func ValidateChain(res ChainResult, rules Rules) error {
	if res.TotalPasses != len(res.Passes) {
		return fmt.Errorf("total passes %d != recorded %d", res.TotalPasses, len(res.Passes))
	}
	if res.TotalPasses > rules.MaxPasses {
		return fmt.Errorf("%d passes exceed cap %d", res.TotalPasses, rules.MaxPasses)
	}
	sum := 0
	prev := decimal.Zero
	for i, p := range res.Passes {
		if p.Index != i+1 {
			return fmt.Errorf("pass %d has index %d", i+1, p.Index)
		}
		if p.Multiplier.LessThan(prev) {
			return fmt.Errorf("pass %d multiplier %s below previous %s", p.Index, p.Multiplier, prev)
		}
		if len(p.Matches) == 0 {
			return fmt.Errorf("pass %d has no matches", p.Index)
		}
		if p.FinalScore != ApplyMultiplier(p.BaseScore, p.Multiplier) {
			return fmt.Errorf("pass %d final score %d does not match base %d x %s",
				p.Index, p.FinalScore, p.BaseScore, p.Multiplier)
		}
		if p.RemovedCount != len(p.Removed) || p.RemovedCount != len(p.NewTiles) {
			return fmt.Errorf("pass %d removed %d but spawned %d", p.Index, p.RemovedCount, len(p.NewTiles))
		}
		prev = p.Multiplier
		sum += p.FinalScore
	}
	if sum != res.TotalScore {
		return fmt.Errorf("total score %d != sum of passes %d", res.TotalScore, sum)
	}
	return nil
}
