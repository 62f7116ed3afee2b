// Package sim plays Ghost Match headlessly with an auto-player and checks
// the engine's guarantees after every turn.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// Strategy picks the auto-player's next swap.
type Strategy string

const (
	// StrategyFirst plays the first legal swap, scanning row by row.
	StrategyFirst Strategy = "first"
	// StrategyGreedy previews every legal swap and plays the best scoring one.
	StrategyGreedy Strategy = "greedy"
)

// ParseStrategy validates a strategy name. The empty string means first.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyFirst:
		return StrategyFirst, nil
	case StrategyGreedy:
		return StrategyGreedy, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want first or greedy)", name)
	}
}

// Options configures a simulation run.
type Options struct {
	Games        int
	Seed         int64 // game i uses Seed+i
	Engine       engine.Config
	Start        *engine.SavedGame // start every game from this board
	Strategy     Strategy
	MaxMoves     int // per game; 0 means until no moves remain
	PreviewSteps int
	Workers      int
	Logger       *log.Logger
}

// GameReport is the outcome of one simulated game.
type GameReport struct {
	Index        int      `json:"index"`
	Seed         int64    `json:"seed"`
	Score        int      `json:"score"`
	Grade        string   `json:"grade"`
	Moves        int      `json:"moves"`
	LongestChain int      `json:"longest_chain"`
	Matches      int      `json:"matches"`
	CapHits      int      `json:"cap_hits"`
	EndReason    string   `json:"end_reason"`
	Violations   []string `json:"violations,omitempty"`
}

// Report summarizes a run.
type Report struct {
	Games        []GameReport `json:"games"`
	TotalScore   int          `json:"total_score"`
	AverageScore float64      `json:"average_score"`
	BestScore    int          `json:"best_score"`
	LongestChain int          `json:"longest_chain"`
	Violations   int          `json:"violations"`
}

// ErrViolations is returned by Run when any game broke an invariant.
var ErrViolations = errors.New("sim: engine invariants violated")

// Run plays opts.Games games across opts.Workers goroutines. The report is
// ordered by game index. A cancelled context stops games between moves.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Games <= 0 {
		opts.Games = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	games := make([]GameReport, opts.Games)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for range min(opts.Workers, opts.Games) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				games[i] = PlayGame(ctx, i, opts)
			}
		}()
	}

feed:
	for i := range opts.Games {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep := summarize(games)
	if rep.Violations > 0 {
		return rep, fmt.Errorf("%w: %d in %d games", ErrViolations, rep.Violations, len(games))
	}
	return rep, nil
}

func summarize(games []GameReport) Report {
	rep := Report{Games: games}
	for _, g := range games {
		rep.TotalScore += g.Score
		rep.BestScore = max(rep.BestScore, g.Score)
		rep.LongestChain = max(rep.LongestChain, g.LongestChain)
		rep.Violations += len(g.Violations)
	}
	if len(games) > 0 {
		rep.AverageScore = float64(rep.TotalScore) / float64(len(games))
	}
	return rep
}

// PlayGame plays one game to the end, or until MaxMoves or cancellation.
func PlayGame(ctx context.Context, index int, opts Options) GameReport {
	cfg := opts.Engine
	cfg.Seed = opts.Seed + int64(index)
	cfg.Logger = opts.Logger.With("game", index)
	if opts.Start != nil {
		cfg.Size = opts.Start.Size
		cfg.Symbols = opts.Start.Symbols
	}

	rep := GameReport{Index: index, Seed: cfg.Seed}
	violate := func(format string, args ...any) {
		rep.Violations = append(rep.Violations, fmt.Sprintf("move %d: ", rep.Moves)+fmt.Sprintf(format, args...))
	}

	s := engine.NewSession(cfg)
	if opts.Start != nil {
		if err := s.Restore(*opts.Start); err != nil {
			violate("restore: %v", err)
			return rep
		}
	} else if err := s.StartGame(); err != nil {
		violate("start: %v", err)
		return rep
	}
	checkStable(s, violate)

	rules := s.Detector().Rules()
	for ctx.Err() == nil && s.Status().State == engine.StatePlaying {
		if opts.MaxMoves > 0 && rep.Moves >= opts.MaxMoves {
			if err := s.End(engine.EndQuit); err != nil {
				violate("end: %v", err)
			}
			break
		}

		a, b, ok := nextMove(s, opts)
		if !ok {
			violate("playing with no legal move")
			break
		}

		prev := s.Status().Score
		res := s.AttemptSwap(a, b)
		if !res.Accepted {
			violate("legal swap %v-%v rejected: %s", a, b, res.Reason)
			break
		}
		rep.Moves++

		if err := engine.ValidateChain(res.Chain, rules); err != nil {
			violate("chain: %v", err)
		}
		if res.Chain.TotalPasses == 0 {
			violate("accepted swap resolved no passes")
		}
		if res.Chain.CapReached {
			rep.CapHits++
		}
		if res.Score < prev || res.Score != prev+res.ScoreGained {
			violate("score went from %d to %d with gain %d", prev, res.Score, res.ScoreGained)
		}
		if res.GameOver == s.HasAnyLegalMove() {
			violate("game over %v but legal move available %v", res.GameOver, s.HasAnyLegalMove())
		}
		checkStable(s, violate)
	}

	st := s.Status()
	rep.Score = st.Score
	rep.Grade = engine.RankFor(st.Score).Grade
	rep.LongestChain = st.LongestChain
	rep.EndReason = st.EndReason
	rep.Matches = s.ScoreStats().TotalMatches
	return rep
}

// checkStable reports a board that is not full or still holds a match.
func checkStable(s *engine.Session, violate func(string, ...any)) {
	board := s.Board()
	for r, row := range board {
		for c, sym := range row {
			if sym.IsEmpty() {
				violate("empty cell at (%d,%d)", r, c)
			}
		}
	}
	if det := s.Detector().FindAll(board); det.HasMatches {
		violate("board left with %d matches", det.Count)
	}
}

// nextMove chooses a swap according to the strategy.
func nextMove(s *engine.Session, opts Options) (engine.Position, engine.Position, bool) {
	if opts.Strategy != StrategyGreedy {
		return s.Hint()
	}

	var bestA, bestB engine.Position
	best, found := -1, false
	n := s.Status().Size
	for r := range n {
		for c := range n {
			a := engine.Pos(r, c)
			for _, b := range []engine.Position{a.Offset(0, 1), a.Offset(1, 0)} {
				res, ok := s.PreviewSwap(a, b, opts.PreviewSteps)
				if !ok || res.TotalScore <= best {
					continue
				}
				bestA, bestB, best, found = a, b, res.TotalScore, true
			}
		}
	}
	return bestA, bestB, found
}
