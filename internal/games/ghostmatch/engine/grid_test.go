package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridFromBoard(t *testing.T) {
	tests := []struct {
		name    string
		board   Board
		wantErr error
	}{
		{name: "square", board: board("ABC", "BCA", "CAB")},
		{name: "with empty cells", board: board("A.C", "BCA", "..B")},
		{name: "no rows", board: Board{}, wantErr: ErrNotSquare},
		{name: "ragged", board: board("ABC", "BC", "CAB"), wantErr: ErrNotSquare},
		{name: "too many symbols", board: board("ABC", "BCA", "CAZ"), wantErr: ErrInvalidSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGridFromBoard(tt.board, DefaultSymbols, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.board), g.Size())
			assert.Equal(t, tt.board, g.Board())
		})
	}
}

func TestInitializeProducesStableBoard(t *testing.T) {
	det := NewDetector(DefaultRules())
	for _, size := range []int{6, 8} {
		for _, symbols := range []int{5, 6, 7} {
			for seed := int64(1); seed <= 20; seed++ {
				g := NewGrid(size, symbols, rand.New(rand.NewSource(seed)))
				g.Initialize()

				require.True(t, g.IsFull(), "size %d seed %d", size, seed)
				require.False(t, det.FindAll(g.Board()).HasMatches,
					"size %d symbols %d seed %d:\n%s", size, symbols, seed, g)
				for _, row := range g.Board() {
					for _, s := range row {
						require.True(t, s >= 1 && int(s) <= symbols)
					}
				}
			}
		}
	}
}

func TestInitializeIsDeterministicForSeed(t *testing.T) {
	a := NewGrid(8, 6, rand.New(rand.NewSource(42)))
	b := NewGrid(8, 6, rand.New(rand.NewSource(42)))
	a.Initialize()
	b.Initialize()
	assert.True(t, a.Equal(b))
}

func TestSwapIsItsOwnInverse(t *testing.T) {
	g := NewGrid(8, 6, rand.New(rand.NewSource(3)))
	g.Initialize()
	before := g.Board()

	for r := 0; r < g.Size(); r++ {
		for c := 0; c < g.Size(); c++ {
			a := Pos(r, c)
			for _, b := range g.AdjacentPositions(a) {
				require.NoError(t, g.Swap(a, b))
				require.NoError(t, g.Swap(a, b))
				require.Equal(t, before, g.Board(), "swap %s %s", a, b)
			}
		}
	}
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	g := NewGrid(4, 6, nil)
	for r1 := -1; r1 <= 4; r1++ {
		for c1 := -1; c1 <= 4; c1++ {
			for r2 := -1; r2 <= 4; r2++ {
				for c2 := -1; c2 <= 4; c2++ {
					a, b := Pos(r1, c1), Pos(r2, c2)
					require.Equal(t, g.AreAdjacent(a, b), g.AreAdjacent(b, a))
				}
			}
		}
	}
	assert.False(t, AreAdjacent(Pos(2, 2), Pos(2, 2)))
	assert.True(t, AreAdjacent(Pos(2, 2), Pos(1, 2)))
}

func TestAdjacentPositions(t *testing.T) {
	g := NewGrid(8, 6, nil)
	assert.Equal(t, []Position{Pos(1, 0), Pos(0, 1)}, g.AdjacentPositions(Pos(0, 0)))
	assert.Equal(t, []Position{Pos(2, 3), Pos(4, 3), Pos(3, 2), Pos(3, 4)}, g.AdjacentPositions(Pos(3, 3)))
	assert.Len(t, g.AdjacentPositions(Pos(7, 7)), 2)
}

func TestTrySwapRejectsDiagonal(t *testing.T) {
	g := mustGrid(t, nil, cascadeRows...)
	before := g.Board()

	res := g.TrySwap(Pos(0, 0), Pos(1, 1))
	assert.False(t, res.Success)
	assert.Equal(t, ReasonNotAdjacent, res.Reason)
	assert.Equal(t, before, g.Board())

	assert.ErrorIs(t, g.Swap(Pos(0, 0), Pos(1, 1)), ErrNotAdjacent)
	assert.Equal(t, before, g.Board())
}

func TestTrySwapRejectsNonScoringSwap(t *testing.T) {
	g := mustGrid(t, nil, cascadeRows...)
	before := g.Board()

	res := g.TrySwap(Pos(0, 0), Pos(0, 1))
	assert.False(t, res.Success)
	assert.Equal(t, ReasonNoMatch, res.Reason)
	assert.Equal(t, before, g.Board())
}

func TestTrySwapAppliesScoringSwap(t *testing.T) {
	g := mustGrid(t, nil, cascadeRows...)

	res := g.TrySwap(Pos(5, 0), Pos(5, 1))
	require.True(t, res.Success)
	assert.Equal(t, Symbol(2), g.Cell(Pos(5, 0)))
	assert.Equal(t, Symbol(1), g.Cell(Pos(5, 1)))

	g.UndoSwap(res.Swap)
	assert.Equal(t, board(cascadeRows...), g.Board())
}

func TestCellPanicsOutOfBounds(t *testing.T) {
	g := NewGrid(8, 6, nil)
	assert.PanicsWithError(t, "engine: position (8,0) out of bounds for 8x8 board", func() {
		g.Cell(Pos(8, 0))
	})
	assert.Panics(t, func() { g.SetCell(Pos(0, -1), Happy) })
	assert.Panics(t, func() { _ = g.Swap(Pos(0, 7), Pos(0, 8)) })
}

func TestRemoveAt(t *testing.T) {
	g := mustGrid(t, nil, "ABC", "BCA", "CAB")

	assert.Empty(t, g.RemoveAt(nil))
	assert.Empty(t, g.RemoveAt([]Position{}))
	assert.Equal(t, board("ABC", "BCA", "CAB"), g.Board())

	removed := g.RemoveAt([]Position{Pos(0, 0), Pos(0, 0), Pos(5, 5), Pos(1, 1)})
	assert.Equal(t, []Removal{{Pos: Pos(0, 0), Symbol: 1}, {Pos: Pos(1, 1), Symbol: 3}}, removed)
	assert.Equal(t, board(".BC", "B.A", "CAB"), g.Board())
}

func TestApplyGravity(t *testing.T) {
	g := mustGrid(t, nil,
		"AB.",
		".C.",
		"D.E",
	)

	moves := g.ApplyGravity()
	assert.Equal(t, board(
		"...",
		"AB.",
		"DCE",
	), g.Board())
	assert.ElementsMatch(t, []Movement{
		{From: Pos(0, 0), To: Pos(1, 0), Symbol: 1},
		{From: Pos(1, 1), To: Pos(2, 1), Symbol: 3},
		{From: Pos(0, 1), To: Pos(1, 1), Symbol: 2},
	}, moves)

	assert.Empty(t, g.ApplyGravity(), "second gravity pass must not move anything")
	assert.False(t, g.NeedsGravity())
}

func TestGravityNeeds(t *testing.T) {
	g := mustGrid(t, nil,
		"A..",
		".B.",
		"CC.",
	)
	assert.True(t, g.ColumnNeedsGravity(0))
	assert.False(t, g.ColumnNeedsGravity(1))
	assert.False(t, g.ColumnNeedsGravity(2))
	assert.False(t, g.ColumnNeedsGravity(9))
	assert.True(t, g.NeedsGravity())
}

func TestFillEmptyIntelligentlyAvoidsRuns(t *testing.T) {
	g := mustGrid(t, zeroSource{},
		"AA.",
		"BCD",
		"CDB",
	)

	spawns := g.FillEmptyIntelligently()
	require.Len(t, spawns, 1)
	assert.Equal(t, Spawn{Pos: Pos(0, 2), Symbol: 2}, spawns[0])
	assert.True(t, g.IsFull())

	g = mustGrid(t, zeroSource{},
		".BC",
		"ACD",
		"ADB",
	)
	spawns = g.FillEmptyIntelligently()
	require.Len(t, spawns, 1)
	assert.Equal(t, Symbol(1), spawns[0].Symbol, "no pair above the top cell, so A stays allowed")
}

func TestProcessGravityAndFill(t *testing.T) {
	g := NewGrid(8, 6, rand.New(rand.NewSource(9)))
	g.Initialize()
	g.RemoveAt([]Position{Pos(7, 0), Pos(6, 0), Pos(3, 4)})
	assert.Len(t, g.EmptyPositions(), 3)

	_, spawns := g.ProcessGravityAndFill()
	assert.Len(t, spawns, 3)
	assert.True(t, g.IsFull())
	assert.False(t, g.IsEmpty())
}

func TestLegalMoves(t *testing.T) {
	dead := mustGrid(t, nil, deadRows...)
	assert.False(t, dead.HasAnyLegalMove())

	g := mustGrid(t, nil, cascadeRows...)
	a, b, ok := g.FindLegalMove()
	require.True(t, ok)
	assert.Equal(t, Pos(5, 0), a)
	assert.Equal(t, Pos(5, 1), b)
	assert.Equal(t, board(cascadeRows...), g.Board(), "search must not disturb the board")
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGrid(8, 6, rand.New(rand.NewSource(5)))
	g.Initialize()

	c := g.Clone()
	require.True(t, g.Equal(c))

	c.RemoveAt([]Position{Pos(0, 0)})
	assert.False(t, g.Equal(c))
	assert.NotEqual(t, Empty, g.Cell(Pos(0, 0)))
}

func TestGridString(t *testing.T) {
	g := mustGrid(t, nil, "AB", ".C")
	assert.Equal(t, "12\n.3", g.String())
}
