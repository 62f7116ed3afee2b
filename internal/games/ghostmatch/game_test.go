package ghostmatch

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/core"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
	"github.com/vovakirdan/ghost-match/internal/registry"
)

// fixture has exactly one known match: swapping (2,2) and (3,2) completes
// row 2. Swapping (0,0) and (0,1) matches nothing.
var fixture = config.BoardFixture{
	ID:      "test",
	Symbols: 4,
	Rows: []string{
		"ABCD",
		"BCDA",
		"AABC",
		"CDAB",
	},
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 42}
}

func newFixtureGame(t *testing.T) *Game {
	t.Helper()
	opts := registry.DefaultOptions()
	f := fixture
	opts.Fixture = &f
	g := New(IDClassic, opts)
	g.Reset(testConfig())
	if got := g.session.Status().State; got != engine.StatePlaying {
		t.Fatalf("state after reset = %v, want playing", got)
	}
	return g
}

func step(g *Game, actions ...core.Action) core.StepResult {
	return g.Step(core.FrameOf(actions...))
}

// selectAt moves the cursor directly and presses select.
func selectAt(g *Game, p engine.Position) {
	g.cursor = p
	step(g, core.ActionSelect)
}

// settle steps until the replay is over.
func settle(t *testing.T, g *Game) {
	t.Helper()
	for range 1000 {
		if !g.State().Busy {
			return
		}
		step(g)
	}
	t.Fatal("replay did not finish")
}

func TestVariantsRegistered(t *testing.T) {
	for _, id := range []string{IDClassic, IDMini} {
		if !registry.Exists(id) {
			t.Errorf("%s not registered", id)
		}
	}

	g, err := registry.Create(IDMini, registry.DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	g.Reset(testConfig())
	if n := g.Session().Status().Size; n != 6 {
		t.Errorf("mini board size = %d, want 6", n)
	}
}

func TestDeterminism(t *testing.T) {
	g1 := New(IDClassic, registry.DefaultOptions())
	g2 := New(IDClassic, registry.DefaultOptions())
	g1.Reset(testConfig())
	g2.Reset(testConfig())

	for _, g := range []*Game{g1, g2} {
		a, b, ok := g.session.Hint()
		if !ok {
			t.Fatal("fresh board has no legal move")
		}
		selectAt(g, a)
		selectAt(g, b)
		settle(t, g)
	}

	s1, s2 := g1.Snapshot(), g2.Snapshot()
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("same seed produced different games:\n%+v\n%+v", s1, s2)
	}
	if s1.Moves != 1 {
		t.Errorf("moves = %d, want 1", s1.Moves)
	}
}

func TestFixtureBoard(t *testing.T) {
	g := newFixtureGame(t)
	want, _ := fixture.Board()
	if got := g.session.Board(); !reflect.DeepEqual(got, want) {
		t.Errorf("board = %v, want %v", got, want)
	}
	if g.State().Score != 0 {
		t.Errorf("fixture game starts with score %d", g.State().Score)
	}
}

func TestSelectionToggle(t *testing.T) {
	g := newFixtureGame(t)

	selectAt(g, engine.Pos(1, 1))
	if sel, ok := g.Selection(); !ok || sel != engine.Pos(1, 1) {
		t.Fatalf("selection = %v %v, want (1,1)", sel, ok)
	}

	// Non-adjacent select moves the selection.
	selectAt(g, engine.Pos(3, 3))
	if sel, _ := g.Selection(); sel != engine.Pos(3, 3) {
		t.Errorf("selection = %v, want (3,3)", sel)
	}

	// Selecting the same tile drops it.
	selectAt(g, engine.Pos(3, 3))
	if _, ok := g.Selection(); ok {
		t.Error("selection should be cleared")
	}

	selectAt(g, engine.Pos(0, 0))
	step(g, core.ActionBack)
	if _, ok := g.Selection(); ok {
		t.Error("back should clear the selection")
	}
}

func TestRejectedSwap(t *testing.T) {
	g := newFixtureGame(t)
	before := g.session.Board()

	selectAt(g, engine.Pos(0, 0))
	selectAt(g, engine.Pos(0, 1))

	if g.State().Moves != 0 {
		t.Errorf("moves = %d, want 0", g.State().Moves)
	}
	if g.State().Busy {
		t.Error("rejected swap should not animate")
	}
	if g.message != "No match there" {
		t.Errorf("message = %q", g.message)
	}
	if !reflect.DeepEqual(g.session.Board(), before) {
		t.Error("rejected swap changed the board")
	}
}

func TestAcceptedSwapReplays(t *testing.T) {
	g := newFixtureGame(t)

	selectAt(g, engine.Pos(2, 2))
	selectAt(g, engine.Pos(3, 2))

	st := g.State()
	if st.Moves != 1 {
		t.Fatalf("moves = %d, want 1", st.Moves)
	}
	if !st.Busy {
		t.Fatal("accepted swap should start the replay")
	}
	if st.Score < 30 {
		t.Errorf("score = %d, want at least 30", st.Score)
	}

	f := g.replay.current()
	if f.kind != frameSwap || !f.highlight[engine.Pos(2, 2)] || !f.highlight[engine.Pos(3, 2)] {
		t.Errorf("first frame = %+v, want swap of (2,2) and (3,2)", f)
	}

	// Input during the replay is ignored.
	step(g, core.ActionRight)
	if g.cursor != engine.Pos(3, 2) {
		t.Errorf("cursor moved during replay: %v", g.cursor)
	}

	settle(t, g)
	if !reflect.DeepEqual(g.display, g.session.Board()) {
		t.Error("display differs from session board after replay")
	}
	if !strings.HasPrefix(g.message, "+") {
		t.Errorf("message = %q, want score gain", g.message)
	}
}

func TestReplayFrames(t *testing.T) {
	before := engine.Board{
		{1, 2, 3},
		{2, 1, 1},
		{1, 3, 2},
	}
	after := engine.Board{
		{3, 2, 3},
		{2, 3, 2},
		{1, 3, 2},
	}
	res := engine.TurnResult{
		Swap: engine.SwapRecord{A: engine.Pos(1, 0), B: engine.Pos(0, 0)},
		Chain: engine.ChainResult{Passes: []engine.ChainPass{{
			Index:   1,
			Removed: []engine.Removal{{Pos: engine.Pos(1, 0), Symbol: 1}, {Pos: engine.Pos(1, 1), Symbol: 1}, {Pos: engine.Pos(1, 2), Symbol: 1}},
			Movements: []engine.Movement{
				{From: engine.Pos(0, 0), To: engine.Pos(1, 0), Symbol: 2},
				{From: engine.Pos(0, 1), To: engine.Pos(1, 1), Symbol: 2},
				{From: engine.Pos(0, 2), To: engine.Pos(1, 2), Symbol: 3},
			},
			NewTiles: []engine.Spawn{{Pos: engine.Pos(0, 0), Symbol: 3}, {Pos: engine.Pos(0, 1), Symbol: 2}, {Pos: engine.Pos(0, 2), Symbol: 3}},
		}}},
		Board: after,
	}
	anim := config.AnimationConfig{SwapTicks: 2, FlashTicks: 3, FallTicks: 4}

	r := newReplay(before, res, anim)
	kinds := []frameKind{frameSwap, frameFlash, frameFall, frameSpawn}
	if len(r.frames) != len(kinds) {
		t.Fatalf("frames = %d, want %d", len(r.frames), len(kinds))
	}
	for i, k := range kinds {
		if r.frames[i].kind != k {
			t.Errorf("frame %d kind = %d, want %d", i, r.frames[i].kind, k)
		}
	}

	fall := r.frames[2].board
	if fall[0][0] != engine.Empty || fall[1][0] != 2 {
		t.Errorf("fall frame = %v", fall)
	}
	if !reflect.DeepEqual(r.frames[3].board, after) {
		t.Errorf("spawn frame = %v, want %v", r.frames[3].board, after)
	}

	ticks := 0
	for !r.advance() {
		ticks++
	}
	if want := 2 + 3 + 4 - 1; ticks != want {
		t.Errorf("replay lasted %d ticks, want %d", ticks, want)
	}
}

func TestPause(t *testing.T) {
	g := newFixtureGame(t)

	step(g, core.ActionPause)
	if !g.State().Paused {
		t.Fatal("expected paused")
	}

	selectAt(g, engine.Pos(2, 2))
	if _, ok := g.Selection(); ok {
		t.Error("input accepted while paused")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "PAUSED") {
		t.Error("paused overlay not drawn")
	}
	if strings.ContainsRune(screen.String(), styleFor(engine.Happy).glyph) {
		t.Error("board visible while paused")
	}

	step(g, core.ActionPause)
	if g.State().Paused {
		t.Error("expected resumed")
	}
}

func TestHint(t *testing.T) {
	g := newFixtureGame(t)

	step(g, core.ActionHint)
	if !g.showHint {
		t.Fatal("hint not shown")
	}
	pair := cellSet(g.hintA, g.hintB)
	if !pair[engine.Pos(2, 2)] || !pair[engine.Pos(3, 2)] {
		t.Errorf("hint = %v %v, want (2,2) and (3,2)", g.hintA, g.hintB)
	}
}

func TestAutoHint(t *testing.T) {
	opts := registry.DefaultOptions()
	opts.Config.Animation.HintAfter = 1
	f := fixture
	opts.Fixture = &f
	g := New(IDClassic, opts)
	g.Reset(testConfig())

	for range 29 {
		step(g)
	}
	if g.showHint {
		t.Fatal("hint shown too early")
	}
	step(g)
	if !g.showHint {
		t.Error("hint not shown after idle second")
	}

	step(g, core.ActionLeft)
	if g.idleTicks != 0 {
		t.Error("input should reset the idle counter")
	}
}

func TestRestartMidGame(t *testing.T) {
	g := New(IDClassic, registry.DefaultOptions())
	g.Reset(testConfig())
	a, b, ok := g.session.Hint()
	if !ok {
		t.Fatal("fresh board has no legal move")
	}
	selectAt(g, a)
	selectAt(g, b)
	settle(t, g)
	if g.State().GameOver {
		t.Skip("board ran out of moves after one swap")
	}

	step(g, core.ActionRestart)
	st := g.State()
	if st.Moves != 0 || st.Score != 0 {
		t.Errorf("after restart moves=%d score=%d", st.Moves, st.Score)
	}
	if st.HighScore == 0 {
		t.Error("high score lost on restart")
	}
}

func TestResumeSavedGame(t *testing.T) {
	board, _ := fixture.Board()
	saved := engine.SavedGame{
		Version: engine.SaveVersion,
		Size:    4,
		Symbols: 4,
		Board:   board,
		Score:   250,
		Moves:   7,
	}
	opts := registry.DefaultOptions()
	opts.Saved = &saved
	g := New(IDClassic, opts)

	g.Reset(testConfig())
	if st := g.State(); st.Score != 250 || st.Moves != 7 {
		t.Errorf("resumed score=%d moves=%d, want 250 and 7", st.Score, st.Moves)
	}

	// The saved game is used once.
	g.Reset(testConfig())
	if st := g.State(); st.Score != 0 || st.HighScore != 250 {
		t.Errorf("second game score=%d high=%d, want 0 and 250", st.Score, st.HighScore)
	}
}

func TestTooSmall(t *testing.T) {
	g := New(IDClassic, registry.DefaultOptions())
	cfg := testConfig()
	cfg.ScreenW, cfg.ScreenH = 20, 10
	g.Reset(cfg)

	if !g.State().Paused {
		t.Error("small window should pause")
	}
	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Window too small") {
		t.Error("too small message not drawn")
	}

	g.Resize(80, 24)
	if g.State().Paused {
		t.Error("resize should unpause")
	}
}

func TestRender(t *testing.T) {
	g := newFixtureGame(t)
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Ghost Match", "Score: 0", "Best: 0", "Rank E", "[●]"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}
