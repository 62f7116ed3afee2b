package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedFrom(score int, rows ...string) SavedGame {
	return SavedGame{
		Version: SaveVersion,
		Size:    len(rows),
		Symbols: DefaultSymbols,
		Board:   board(rows...),
		Score:   score,
	}
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestNewSessionIsReady(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Config{Seed: 7, Listener: rec})

	st := s.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, DefaultSize, st.Size)
	assert.Equal(t, DefaultSymbols, st.Symbols)
	assert.Zero(t, st.Score)
	assert.Zero(t, st.Elapsed)
	assert.False(t, s.Detector().FindAll(s.Board()).HasMatches)

	changes := eventsOf[StateChanged](rec.events)
	require.Len(t, changes, 1)
	assert.Equal(t, StateChanged{From: StateInitializing, To: StateReady}, changes[0])
}

func TestSessionStateMachine(t *testing.T) {
	s := NewSession(Config{Seed: 1})

	assert.ErrorIs(t, s.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Resume(), ErrInvalidTransition)
	assert.ErrorIs(t, s.End(EndQuit), ErrInvalidTransition)

	require.NoError(t, s.StartGame())
	assert.Equal(t, StatePlaying, s.Status().State)
	assert.ErrorIs(t, s.StartGame(), ErrInvalidTransition)

	require.NoError(t, s.Pause())
	assert.Equal(t, StatePaused, s.Status().State)
	res := s.AttemptSwap(Pos(0, 0), Pos(0, 1))
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonNotPlaying, res.Reason)
	_, _, ok := s.Hint()
	assert.False(t, ok)

	require.NoError(t, s.Resume())
	require.NoError(t, s.End(EndQuit))
	st := s.Status()
	assert.Equal(t, StateGameOver, st.State)
	assert.Equal(t, EndQuit, st.EndReason)

	require.NoError(t, s.StartGame())
	st = s.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Empty(t, st.EndReason)
}

func TestStartGameRegeneratesBoard(t *testing.T) {
	s := NewSession(Config{Seed: 11})
	ready := s.Board()
	require.NoError(t, s.StartGame())
	assert.NotEqual(t, ready, s.Board())
}

func TestRestartEndsGameInProgress(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Config{Seed: 3, Listener: rec})
	require.NoError(t, s.StartGame())
	require.NoError(t, s.Restart())

	ended := eventsOf[GameEnded](rec.events)
	require.Len(t, ended, 1)
	assert.Equal(t, EndRestart, ended[0].Reason)
	assert.Equal(t, StatePlaying, s.Status().State)
}

func TestAttemptSwapRejections(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Config{Source: zeroSource{}, Listener: rec})
	require.NoError(t, s.Restore(savedFrom(0, cascadeRows...)))
	before := s.Board()

	tests := []struct {
		name   string
		a, b   Position
		reason string
	}{
		{name: "diagonal", a: Pos(0, 0), b: Pos(1, 1), reason: ReasonNotAdjacent},
		{name: "no match", a: Pos(0, 0), b: Pos(0, 1), reason: ReasonNoMatch},
		{name: "off board", a: Pos(7, 7), b: Pos(7, 8), reason: ReasonOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.AttemptSwap(tt.a, tt.b)
			assert.False(t, res.Accepted)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, before, s.Board())
		})
	}

	assert.Len(t, eventsOf[SwapRejected](rec.events), len(tests))
	assert.Zero(t, s.Status().Moves)
}

func TestAttemptSwapScoresCascade(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Config{Source: zeroSource{}, Listener: rec})
	require.NoError(t, s.Restore(savedFrom(0, cascadeRows...)))

	res := s.AttemptSwap(Pos(5, 0), Pos(5, 1))
	require.True(t, res.Accepted)
	assert.GreaterOrEqual(t, res.Chain.TotalPasses, 2)
	assert.Equal(t, res.Chain.TotalScore, res.ScoreGained)
	assert.Equal(t, res.ScoreGained, res.Score)

	st := s.Status()
	assert.Equal(t, 1, st.Moves)
	assert.Equal(t, res.Score, st.Score)
	assert.Equal(t, res.Score, st.HighScore)
	assert.Equal(t, res.Chain.TotalPasses, st.ChainLevel)
	assert.Equal(t, res.Chain.TotalPasses, st.LongestChain)
	assert.False(t, s.Detector().FindAll(s.Board()).HasMatches)

	assert.Len(t, eventsOf[SwapSucceeded](rec.events), 1)
	passes := eventsOf[ChainPassed](rec.events)
	require.Len(t, passes, res.Chain.TotalPasses)
	assert.Equal(t, 1, passes[0].Index)
	assert.Equal(t, 30, passes[0].Score)
	assert.NotEmpty(t, eventsOf[MatchFound](rec.events))

	stats := s.ScoreStats()
	assert.Equal(t, 1, stats.Turns)
	assert.Equal(t, 1, stats.TotalChains)
	assert.Equal(t, res.Score, stats.BestTurn)
	assert.Equal(t, 1, s.ChainStats().Resolutions)
}

func TestLastMoveEndsGame(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Config{Source: zeroSource{}, Listener: rec})
	require.NoError(t, s.Restore(savedFrom(490, lastMoveRows...)))
	require.True(t, s.HasAnyLegalMove())

	a, b, ok := s.Hint()
	require.True(t, ok)
	assert.Equal(t, Pos(5, 6), a)
	assert.Equal(t, Pos(5, 7), b)

	res := s.AttemptSwap(a, b)
	require.True(t, res.Accepted)
	assert.Equal(t, 1, res.Chain.TotalPasses)
	assert.Equal(t, 30, res.ScoreGained)
	assert.Equal(t, 520, res.Score)
	assert.Equal(t, []int{500}, res.Milestones)
	assert.True(t, res.GameOver)
	assert.Equal(t, EndNoMoves, res.EndReason)

	assert.False(t, s.HasAnyLegalMove())
	st := s.Status()
	assert.Equal(t, StateGameOver, st.State)
	assert.Equal(t, EndNoMoves, st.EndReason)

	ended := eventsOf[GameEnded](rec.events)
	require.Len(t, ended, 1)
	assert.Equal(t, GameEnded{Reason: EndNoMoves, Score: 520}, ended[0])

	after := s.AttemptSwap(a, b)
	assert.Equal(t, ReasonNotPlaying, after.Reason)
}

func TestRestoreDeadBoardEndsImmediately(t *testing.T) {
	s := NewSession(Config{Seed: 2})
	require.NoError(t, s.Restore(savedFrom(100, deadRows...)))

	st := s.Status()
	assert.Equal(t, StateGameOver, st.State)
	assert.Equal(t, EndNoMoves, st.EndReason)
	assert.Equal(t, 100, st.Score)
}

func TestReentrantSwapIsRejectedAsBusy(t *testing.T) {
	s := NewSession(Config{Source: zeroSource{}})
	require.NoError(t, s.Restore(savedFrom(0, cascadeRows...)))

	var nested TurnResult
	var rejected []SwapRejected
	s.SetListener(ListenerFunc(func(e Event) {
		switch ev := e.(type) {
		case SwapSucceeded:
			nested = s.AttemptSwap(Pos(0, 0), Pos(0, 1))
		case SwapRejected:
			rejected = append(rejected, ev)
		}
	}))

	res := s.AttemptSwap(Pos(5, 0), Pos(5, 1))
	assert.True(t, res.Accepted)
	assert.False(t, nested.Accepted)
	assert.Equal(t, ReasonBusy, nested.Reason)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonBusy, rejected[0].Reason)
	assert.Equal(t, 1, s.Status().Moves)
	assert.False(t, s.Status().Processing)
}

func TestBoardStaysStableAcrossTurns(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s := NewSession(Config{Seed: seed})
		require.NoError(t, s.StartGame())

		for turn := 0; turn < 25 && s.Status().State == StatePlaying; turn++ {
			a, b, ok := s.Hint()
			require.True(t, ok, "playing session must have a move")
			res := s.AttemptSwap(a, b)
			require.True(t, res.Accepted)
			require.False(t, s.Detector().FindAll(s.Board()).HasMatches, "seed %d turn %d", seed, turn)
			require.NoError(t, ValidateChain(res.Chain, DefaultRules()))

			s.AttemptSwap(Pos(0, 0), Pos(2, 2))
			require.False(t, s.Detector().FindAll(s.Board()).HasMatches)
		}
	}
}

func TestElapsedExcludesPauses(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(Config{Seed: 1, Now: clock.Now})
	require.NoError(t, s.StartGame())

	clock.Advance(10 * time.Second)
	require.NoError(t, s.Pause())
	clock.Advance(5 * time.Second)
	assert.Equal(t, 10*time.Second, s.Status().Elapsed)

	require.NoError(t, s.Resume())
	clock.Advance(3 * time.Second)
	assert.Equal(t, 13*time.Second, s.Status().Elapsed)

	require.NoError(t, s.Pause())
	clock.Advance(time.Minute)
	require.NoError(t, s.End(EndQuit))
	clock.Advance(time.Minute)
	assert.Equal(t, 13*time.Second, s.Status().Elapsed)
}

func TestSaveAndRestore(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(Config{Seed: 21, Now: clock.Now})

	_, err := s.Save()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.StartGame())
	a, b, ok := s.Hint()
	require.True(t, ok)
	require.True(t, s.AttemptSwap(a, b).Accepted)
	clock.Advance(42 * time.Second)

	saved, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, SaveVersion, saved.Version)
	assert.Equal(t, 1, saved.Moves)
	assert.Equal(t, 42*time.Second, saved.Elapsed)
	assert.Equal(t, s.Board(), saved.Board)

	other := NewSession(Config{Seed: 99, Now: clock.Now})
	require.NoError(t, other.Restore(saved))
	st := other.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, saved.Board, other.Board())
	assert.Equal(t, saved.Score, st.Score)
	assert.Equal(t, saved.Moves, st.Moves)
	assert.Equal(t, 42*time.Second, st.Elapsed)

	assert.ErrorIs(t, other.Restore(saved), ErrInvalidTransition, "cannot restore over a live game")
}

func TestRestoreRejectsMismatchedSave(t *testing.T) {
	s := NewSession(Config{Seed: 1})

	bad := savedFrom(0, deadRows...)
	bad.Version = SaveVersion + 1
	assert.Error(t, s.Restore(bad))

	small := NewSession(Config{Seed: 1, Size: 6})
	assert.Error(t, small.Restore(savedFrom(0, deadRows...)))
	assert.Equal(t, StateReady, small.Status().State)
}

func TestHighScore(t *testing.T) {
	s := NewSession(Config{Source: zeroSource{}})
	s.SetHighScore(1000)
	require.NoError(t, s.Restore(savedFrom(0, cascadeRows...)))
	assert.Equal(t, 1000, s.Status().HighScore)

	res := s.AttemptSwap(Pos(5, 0), Pos(5, 1))
	require.True(t, res.Accepted)
	assert.Equal(t, 1000, s.Status().HighScore)

	s.SetHighScore(0)
	assert.Equal(t, res.Score, s.Status().HighScore, "high score never drops below the current score")
}

func TestPreviewSwap(t *testing.T) {
	s := NewSession(Config{Source: zeroSource{}})
	require.NoError(t, s.Restore(savedFrom(0, cascadeRows...)))
	before := s.Board()

	res, ok := s.PreviewSwap(Pos(5, 0), Pos(5, 1), 5)
	require.True(t, ok)
	assert.GreaterOrEqual(t, res.TotalPasses, 2)
	assert.Equal(t, before, s.Board())

	_, ok = s.PreviewSwap(Pos(0, 0), Pos(0, 1), 5)
	assert.False(t, ok)
	_, ok = s.PreviewSwap(Pos(0, 0), Pos(-1, 0), 5)
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "game_over", StateGameOver.String())
	assert.Equal(t, "unknown", State(42).String())
}
