package engine

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// State is a session lifecycle state.
type State int

const (
	StateInitializing State = iota
	StateReady
	StatePlaying
	StatePaused
	StateGameOver
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Game-over reasons.
const (
	EndNoMoves = "no_moves"
	EndQuit    = "quit"
	EndRestart = "restart"
)

// SaveVersion tags saved games; other versions are refused on restore.
const SaveVersion = 1

// Config configures a Session.
type Config struct {
	Size               int
	Symbols            int
	Seed               int64
	Source             Source // overrides Seed when set
	Rules              Rules
	GenerationAttempts int
	Logger             *log.Logger
	Listener           Listener
	Now                func() time.Time
}

// DefaultConfig returns an 8×8, six-symbol configuration with standard rules.
func DefaultConfig() Config {
	return Config{
		Size:               DefaultSize,
		Symbols:            DefaultSymbols,
		Rules:              DefaultRules(),
		GenerationAttempts: DefaultGenerationAttempts,
	}
}

// Status is a read-only view of session counters.
type Status struct {
	State        State
	Score        int
	HighScore    int
	Moves        int
	ChainLevel   int // passes in the most recent turn
	LongestChain int
	EndReason    string
	Elapsed      time.Duration
	Size         int
	Symbols      int
	Processing   bool
}

// TurnResult describes one swap attempt and everything it caused.
type TurnResult struct {
	Accepted    bool
	Reason      string
	Swap        SwapRecord
	Chain       ChainResult
	ScoreGained int
	Score       int
	Milestones  []int
	GameOver    bool
	EndReason   string
	Board       Board
}

// SavedGame is a resumable snapshot of a game in progress.
type SavedGame struct {
	Version   int           `json:"version"`
	Size      int           `json:"size"`
	Symbols   int           `json:"symbols"`
	Board     Board         `json:"board"`
	Score     int           `json:"score"`
	HighScore int           `json:"high_score"`
	Moves     int           `json:"moves"`
	Elapsed   time.Duration `json:"elapsed"`
	SavedAt   time.Time     `json:"saved_at"`
}

// Session is the game state machine. AttemptSwap is its only board-mutating
// entry point during play.
type Session struct {
	mu         sync.Mutex
	processing atomic.Bool

	cfg      Config
	rng      Source
	grid     *Grid
	detector *Detector
	chain    *ChainEngine
	book     *ScoreBook
	logger   *log.Logger
	listener Listener
	now      func() time.Time

	state        State
	score        int
	highScore    int
	moves        int
	chainLevel   int
	longestChain int
	endReason    string

	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	endedAt     time.Time

	pending []Event
}

// NewSession creates a session with a freshly generated board in StateReady.
func NewSession(cfg Config) *Session {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Symbols <= 0 {
		cfg.Symbols = DefaultSymbols
	}
	if cfg.Rules.MaxPasses <= 0 {
		cfg.Rules = DefaultRules()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var src Source = rand.New(rand.NewSource(cfg.Seed))
	if cfg.Source != nil {
		src = cfg.Source
	}

	s := &Session{
		cfg:      cfg,
		rng:      src,
		detector: NewDetector(cfg.Rules),
		book:     NewScoreBook(),
		logger:   cfg.Logger,
		listener: cfg.Listener,
		now:      cfg.Now,
		state:    StateInitializing,
	}
	s.grid = NewGrid(cfg.Size, cfg.Symbols, s.rng)
	if cfg.GenerationAttempts > 0 {
		s.grid.SetMaxAttempts(cfg.GenerationAttempts)
	}
	s.chain = NewChainEngine(s.grid, s.detector, s.logger)
	s.generateBoard()
	s.transition(StateReady)
	s.flush()
	return s
}

// generateBoard fills a fresh board and makes sure it is stable.
func (s *Session) generateBoard() {
	attempts := s.grid.Initialize()
	if s.chain.Settle() {
		s.logger.Debug("initial board needed settling", "attempts", attempts)
	}
	if attempts > 1 {
		s.logger.Debug("board regenerated", "attempts", attempts)
	}
}

// SetListener replaces the event listener.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// SetHighScore installs a previously persisted high score.
func (s *Session) SetHighScore(score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highScore = max(score, s.score)
}

// StartGame begins a new game from Ready or GameOver.
func (s *Session) StartGame() error {
	s.mu.Lock()
	err := s.startLocked()
	s.mu.Unlock()
	s.flush()
	return err
}

func (s *Session) startLocked() error {
	if s.state != StateReady && s.state != StateGameOver {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.state)
	}
	s.generateBoard()
	s.score = 0
	s.moves = 0
	s.chainLevel = 0
	s.longestChain = 0
	s.endReason = ""
	s.startedAt = s.now()
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.endedAt = time.Time{}
	s.book.ResetSession()
	s.chain.ResetStats()
	s.transition(StatePlaying)
	s.logger.Info("game started", "size", s.grid.Size(), "symbols", s.grid.SymbolCount(), "high_score", s.highScore)
	return nil
}

// AttemptSwap tries to swap a and b. Rejections are reported in the result,
// never as errors. A swap attempted while another is being resolved is
// rejected with ReasonBusy.
func (s *Session) AttemptSwap(a, b Position) TurnResult {
	if !s.processing.CompareAndSwap(false, true) {
		s.emitNow(SwapRejected{A: a, B: b, Reason: ReasonBusy})
		return TurnResult{Reason: ReasonBusy, Swap: SwapRecord{A: a, B: b}}
	}
	defer s.processing.Store(false)

	s.mu.Lock()
	res := s.turnLocked(a, b)
	s.mu.Unlock()
	s.flush()
	return res
}

func (s *Session) turnLocked(a, b Position) TurnResult {
	res := TurnResult{Swap: SwapRecord{A: a, B: b}, Score: s.score}

	reject := func(reason string) TurnResult {
		res.Reason = reason
		s.emit(SwapRejected{A: a, B: b, Reason: reason})
		s.logger.Debug("swap rejected", "a", a, "b", b, "reason", reason)
		return res
	}

	if s.state != StatePlaying {
		return reject(ReasonNotPlaying)
	}
	if !s.grid.InBounds(a) || !s.grid.InBounds(b) {
		return reject(ReasonOutOfBounds)
	}
	swap := s.grid.TrySwap(a, b)
	if !swap.Success {
		return reject(swap.Reason)
	}

	res.Accepted = true
	s.moves++
	s.emit(SwapSucceeded{A: a, B: b})

	chain := s.chain.Resolve()
	for _, p := range chain.Passes {
		for _, m := range p.Matches {
			s.emit(MatchFound{Length: m.Len(), Shape: m.Shape, Symbol: m.Symbol, Pass: p.Index})
		}
		s.emit(ChainPassed{Index: p.Index, Multiplier: p.Multiplier, Score: p.FinalScore})
	}

	if !chain.Success || chain.CapReached {
		s.logger.Warn("board left unsettled, re-settling",
			"success", chain.Success, "cap_reached", chain.CapReached, "error", chain.Err)
		s.chain.Settle()
	}

	prev := s.score
	s.score += chain.TotalScore
	s.chainLevel = chain.TotalPasses
	s.longestChain = max(s.longestChain, chain.TotalPasses)
	if s.score > s.highScore {
		s.highScore = s.score
	}
	s.book.RecordTurn(chain)

	res.Chain = chain
	res.ScoreGained = chain.TotalScore
	res.Score = s.score
	res.Milestones = MilestonesCrossed(prev, s.score)

	s.logger.Debug("swap resolved",
		"a", a, "b", b,
		"passes", chain.TotalPasses,
		"gained", chain.TotalScore,
		"score", s.score,
	)

	if !s.grid.HasAnyLegalMove() {
		s.endLocked(EndNoMoves)
		res.GameOver = true
		res.EndReason = EndNoMoves
	}
	res.Board = s.grid.Board()
	return res
}

// Pause suspends play. Only valid while playing.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, s.state)
	}
	s.pausedAt = s.now()
	s.transition(StatePaused)
	return nil
}

// Resume continues a paused game. Paused time is not counted as play time.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, s.state)
	}
	s.pausedTotal += s.now().Sub(s.pausedAt)
	s.pausedAt = time.Time{}
	s.transition(StatePlaying)
	return nil
}

// End stops a game in progress with the given reason.
func (s *Session) End(reason string) error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()
	if s.state != StatePlaying && s.state != StatePaused {
		return fmt.Errorf("%w: end from %s", ErrInvalidTransition, s.state)
	}
	s.endLocked(reason)
	return nil
}

func (s *Session) endLocked(reason string) {
	now := s.now()
	if s.state == StatePaused {
		s.pausedTotal += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
	}
	s.endedAt = now
	s.endReason = reason
	s.transition(StateGameOver)
	s.emit(GameEnded{Reason: reason, Score: s.score})
	s.logger.Info("game over", "reason", reason, "score", s.score, "moves", s.moves)
}

// Restart stops any game in progress and starts a new one.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()
	if s.state == StatePlaying || s.state == StatePaused {
		s.endLocked(EndRestart)
	}
	return s.startLocked()
}

// Status returns a snapshot of the session counters.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:        s.state,
		Score:        s.score,
		HighScore:    s.highScore,
		Moves:        s.moves,
		ChainLevel:   s.chainLevel,
		LongestChain: s.longestChain,
		EndReason:    s.endReason,
		Elapsed:      s.elapsedLocked(),
		Size:         s.grid.Size(),
		Symbols:      s.grid.SymbolCount(),
		Processing:   s.processing.Load(),
	}
}

func (s *Session) elapsedLocked() time.Duration {
	var end time.Time
	switch s.state {
	case StatePlaying:
		end = s.now()
	case StatePaused:
		end = s.pausedAt
	case StateGameOver:
		end = s.endedAt
	default:
		return 0
	}
	if s.startedAt.IsZero() {
		return 0
	}
	return end.Sub(s.startedAt) - s.pausedTotal
}

// Board returns a copy of the current cells.
func (s *Session) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Board()
}

// HasAnyLegalMove reports whether the current board has a scoring swap.
func (s *Session) HasAnyLegalMove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.HasAnyLegalMove()
}

// Hint returns a swap that would score, if any.
func (s *Session) Hint() (Position, Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return Position{}, Position{}, false
	}
	return s.grid.FindLegalMove()
}

// PreviewSwap predicts the chain a swap would trigger without changing the board.
func (s *Session) PreviewSwap(a, b Position, maxSteps int) (ChainResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.grid.InBounds(a) || !s.grid.InBounds(b) {
		return ChainResult{}, false
	}
	sim := s.grid.Clone()
	if !sim.TrySwap(a, b).Success {
		return ChainResult{}, false
	}
	return PredictChain(sim, s.detector, maxSteps), true
}

// Detector returns the session's match detector.
func (s *Session) Detector() *Detector {
	return s.detector
}

// ScoreStats returns the score book's session statistics.
func (s *Session) ScoreStats() ScoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Stats()
}

// ChainStats returns chain totals for the current game.
func (s *Session) ChainStats() ChainStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Stats()
}

// Save captures the game in progress.
func (s *Session) Save() (SavedGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying && s.state != StatePaused {
		return SavedGame{}, fmt.Errorf("%w: save from %s", ErrInvalidTransition, s.state)
	}
	return SavedGame{
		Version:   SaveVersion,
		Size:      s.grid.Size(),
		Symbols:   s.grid.SymbolCount(),
		Board:     s.grid.Board(),
		Score:     s.score,
		HighScore: s.highScore,
		Moves:     s.moves,
		Elapsed:   s.elapsedLocked(),
		SavedAt:   s.now(),
	}, nil
}

// Restore resumes a saved game. Only valid from Ready or GameOver.
func (s *Session) Restore(sg SavedGame) error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()
	if s.state != StateReady && s.state != StateGameOver {
		return fmt.Errorf("%w: restore from %s", ErrInvalidTransition, s.state)
	}
	if sg.Version != SaveVersion {
		return fmt.Errorf("engine: saved game version %d not supported", sg.Version)
	}
	if sg.Size != s.grid.Size() || sg.Symbols != s.grid.SymbolCount() {
		return fmt.Errorf("engine: saved game is %dx%d with %d symbols, session is %dx%d with %d",
			sg.Size, sg.Size, sg.Symbols, s.grid.Size(), s.grid.Size(), s.grid.SymbolCount())
	}
	restored, err := NewGridFromBoard(sg.Board, sg.Symbols, s.rng)
	if err != nil {
		return fmt.Errorf("engine: restore board: %w", err)
	}

	copyBoard(s.grid, restored)
	s.chain.Settle()

	s.score = sg.Score
	s.highScore = max(s.highScore, sg.HighScore, sg.Score)
	s.moves = sg.Moves
	s.chainLevel = 0
	s.longestChain = 0
	s.endReason = ""
	s.startedAt = s.now().Add(-sg.Elapsed)
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.book.ResetSession()
	s.chain.ResetStats()
	s.transition(StatePlaying)

	if !s.grid.HasAnyLegalMove() {
		s.endLocked(EndNoMoves)
	}
	return nil
}

// copyBoard overwrites dst's cells with src's, keeping dst's generator.
func copyBoard(dst, src *Grid) {
	for r := range dst.cells {
		copy(dst.cells[r], src.cells[r])
	}
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	s.emit(StateChanged{From: from, To: to})
}

// emit queues an event for delivery once the lock is released.
func (s *Session) emit(e Event) {
	s.pending = append(s.pending, e)
}

// emitNow delivers an event immediately. The lock must not be held.
func (s *Session) emitNow(e Event) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.OnEvent(e)
	}
}

// flush delivers queued events outside the lock.
func (s *Session) flush() {
	s.mu.Lock()
	events := s.pending
	s.pending = nil
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return
	}
	for _, e := range events {
		l.OnEvent(e)
	}
}
