package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindHorizontalRunsSingleRow(t *testing.T) {
	d := NewDetector(DefaultRules())
	b := board(
		"AAABCDEF",
		"BDFBDFBD",
		"CEACEACE",
		"DFBDFBDF",
		"EACEACEA",
		"FBDFBDFB",
		"ACEACEAC",
		"BDFBDFBD",
	)

	runs := d.FindHorizontalRuns(b)
	require.Len(t, runs, 1)
	assert.Equal(t, Match{
		Positions: []Position{Pos(0, 0), Pos(0, 1), Pos(0, 2)},
		Shape:     ShapeHorizontal,
		Symbol:    Happy,
	}, runs[0])

	assert.Empty(t, d.FindVerticalRuns(b))
	det := d.FindAll(b)
	assert.True(t, det.HasMatches)
	assert.Equal(t, 1, det.Count)
}

func TestFindRuns(t *testing.T) {
	d := NewDetector(DefaultRules())
	tests := []struct {
		name       string
		rows       []string
		horizontal []int
		vertical   []int
	}{
		{name: "none", rows: []string{"ABAB", "BABA", "ABAB", "BABA"}},
		{name: "run of four", rows: []string{"CCCC", "ABAB", "BABA", "ABAB"}, horizontal: []int{4}},
		{name: "two runs in one row", rows: []string{"AAABBB", "CDCDCD", "DCDCDC", "CDCDCD", "DCDCDC", "CDCDCD"}, horizontal: []int{3, 3}},
		{name: "vertical at edge", rows: []string{"ABC", "ACB", "ABC"}, vertical: []int{3}},
		{name: "empty cells break runs", rows: []string{"AA.A", "B.BB", "ABAB", "BABA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := board(tt.rows...)
			var h, v []int
			for _, m := range d.FindHorizontalRuns(b) {
				h = append(h, m.Len())
			}
			for _, m := range d.FindVerticalRuns(b) {
				v = append(v, m.Len())
			}
			assert.Equal(t, tt.horizontal, h)
			assert.Equal(t, tt.vertical, v)
		})
	}
}

func TestFindRunsOnJaggedBoard(t *testing.T) {
	d := NewDetector(DefaultRules())
	b := Board{
		{1, 1, 1, 2},
		{1, 2},
		{1, 2, 2, 2, 2},
	}

	var lens []int
	for _, m := range d.FindHorizontalRuns(b) {
		lens = append(lens, m.Len())
	}
	assert.Equal(t, []int{3, 4}, lens)

	vert := d.FindVerticalRuns(b)
	require.Len(t, vert, 1)
	assert.Equal(t, []Position{Pos(0, 0), Pos(1, 0), Pos(2, 0)}, vert[0].Positions)

	assert.NotPanics(t, func() { d.FindAll(b) })
}

func TestLShapeOutranksLines(t *testing.T) {
	d := NewDetector(DefaultRules())
	b := board(
		"AAACEACE",
		"AFBDFBDF",
		"AACEACEA",
		"FBDFBDFB",
		"ACEACEAC",
		"BDFBDFBD",
		"CEACEACE",
		"DFBDFBDF",
	)

	det := d.FindAll(b)
	assert.Len(t, det.Horizontal, 1)
	assert.Len(t, det.Vertical, 1)
	assert.Len(t, det.LShapes, 2, "the corner is found from both arm orders")
	assert.Empty(t, det.TShapes)

	kept := d.ResolveOverlaps(det.All())
	require.Len(t, kept, 1)
	assert.Equal(t, ShapeL, kept[0].Shape)
	assert.ElementsMatch(t, []Position{Pos(0, 0), Pos(0, 1), Pos(0, 2), Pos(1, 0), Pos(2, 0)}, kept[0].Positions)
}

func TestTShapeOutranksLines(t *testing.T) {
	d := NewDetector(DefaultRules())
	b := board(
		"AAACEACE",
		"CADFBDFB",
		"EACEACEA",
		"FBDFBDFB",
		"ACEACEAC",
		"BDFBDFBD",
		"CEACEACE",
		"DFBDFBDF",
	)

	det := d.FindAll(b)
	require.Len(t, det.TShapes, 1)
	assert.Equal(t, Pos(0, 1), det.TShapes[0].Positions[0], "anchor comes first")

	kept := d.ResolveOverlaps(det.All())
	require.Len(t, kept, 1)
	assert.Equal(t, ShapeT, kept[0].Shape)
	assert.Equal(t, 5, kept[0].Len())
}

func TestSingleSymbolBoard(t *testing.T) {
	d := NewDetector(DefaultRules())
	b := make(Board, 8)
	for r := range b {
		b[r] = []Symbol{1, 1, 1, 1, 1, 1, 1, 1}
	}

	det := d.FindAll(b)
	assert.Len(t, det.Horizontal, 8)
	assert.Len(t, det.Vertical, 8)
	assert.Len(t, det.LShapes, 288)
	assert.Len(t, det.TShapes, 144)
	assert.Equal(t, 448, det.Count)

	kept := d.ResolveOverlaps(det.All())
	require.Len(t, kept, 9)

	seen := make(map[Position]bool)
	for _, m := range kept {
		assert.Equal(t, ShapeT, m.Shape)
		for _, p := range m.Positions {
			require.False(t, seen[p], "cell %s claimed twice", p)
			seen[p] = true
		}
	}
	assert.Len(t, seen, 45)
	assert.Len(t, Positions(kept), 45)

	anchors := make([]Position, 0, len(kept))
	for _, m := range kept {
		anchors = append(anchors, m.Positions[0])
	}
	assert.Equal(t, []Position{
		Pos(0, 1), Pos(0, 4), Pos(1, 6),
		Pos(3, 0), Pos(3, 3), Pos(4, 5),
		Pos(5, 1), Pos(6, 4), Pos(7, 6),
	}, anchors)
}

func TestResolveOverlapsKeepsDisjointInputs(t *testing.T) {
	d := NewDetector(DefaultRules())
	a := Match{Positions: []Position{Pos(0, 0), Pos(0, 1), Pos(0, 2)}, Shape: ShapeHorizontal, Symbol: 1}
	b := Match{Positions: []Position{Pos(3, 0), Pos(4, 0), Pos(5, 0)}, Shape: ShapeVertical, Symbol: 2}

	kept := d.ResolveOverlaps([]Match{a, b})
	assert.Equal(t, []Match{b, a}, kept, "vertical outranks horizontal")
	assert.Empty(t, d.ResolveOverlaps(nil))
}

func TestPriority(t *testing.T) {
	d := NewDetector(DefaultRules())
	line := func(n int, s Shape) Match {
		return Match{Positions: make([]Position, n), Shape: s}
	}
	assert.Greater(t, d.Priority(line(5, ShapeT)), d.Priority(line(5, ShapeL)))
	assert.Greater(t, d.Priority(line(5, ShapeL)), d.Priority(line(8, ShapeVertical)))
	assert.Greater(t, d.Priority(line(3, ShapeVertical)), d.Priority(line(7, ShapeHorizontal)))
	assert.Greater(t, d.Priority(line(4, ShapeHorizontal)), d.Priority(line(3, ShapeHorizontal)))
}

func TestMatchScore(t *testing.T) {
	rules := DefaultRules()
	one := decimal.NewFromInt(1)
	m := func(n int, s Shape) Match {
		return Match{Positions: make([]Position, n), Shape: s}
	}

	tests := []struct {
		name  string
		match Match
		combo decimal.Decimal
		want  int
	}{
		{name: "three", match: m(3, ShapeHorizontal), combo: one, want: 30},
		{name: "four", match: m(4, ShapeVertical), combo: one, want: 60},
		{name: "five", match: m(5, ShapeHorizontal), combo: one, want: 150},
		{name: "six", match: m(6, ShapeHorizontal), combo: one, want: 540},
		{name: "L", match: m(5, ShapeL), combo: one, want: 300},
		{name: "T", match: m(5, ShapeT), combo: one, want: 375},
		{name: "three with combo", match: m(3, ShapeHorizontal), combo: decimal.RequireFromString("1.2"), want: 36},
		{name: "floored", match: m(3, ShapeHorizontal), combo: decimal.RequireFromString("1.01"), want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.MatchScore(tt.match, tt.combo))
		})
	}
}

func TestMatchScoreGrowsWithLength(t *testing.T) {
	rules := DefaultRules()
	one := decimal.NewFromInt(1)
	prev := 0
	for n := 3; n <= 8; n++ {
		s := rules.MatchScore(Match{Positions: make([]Position, n), Shape: ShapeHorizontal}, one)
		assert.Greater(t, s, prev, "length %d", n)
		prev = s
	}
}

func TestPassMultiplier(t *testing.T) {
	rules := DefaultRules()
	want := []string{"1", "1.2", "1.5", "2", "2.5", "3", "4", "5", "5", "5"}
	for i, w := range want {
		assert.True(t, rules.PassMultiplier(i+1).Equal(decimal.RequireFromString(w)), "pass %d", i+1)
	}
	assert.True(t, rules.PassMultiplier(0).Equal(decimal.NewFromInt(1)))
	assert.True(t, Rules{}.PassMultiplier(3).Equal(decimal.NewFromInt(1)))
}

func TestMatchStats(t *testing.T) {
	d := NewDetector(DefaultRules())
	matches := []Match{
		{Positions: []Position{Pos(0, 0), Pos(0, 1), Pos(0, 2)}, Shape: ShapeHorizontal, Symbol: 1},
		{Positions: []Position{Pos(0, 2), Pos(1, 2), Pos(2, 2), Pos(3, 2)}, Shape: ShapeVertical, Symbol: 1},
		{Positions: []Position{Pos(5, 5), Pos(5, 6), Pos(5, 7)}, Shape: ShapeHorizontal, Symbol: 3},
	}

	st := d.Stats(matches)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByShape[ShapeHorizontal])
	assert.Equal(t, 1, st.ByShape[ShapeVertical])
	assert.Equal(t, 2, st.ByLength[3])
	assert.Equal(t, 2, st.BySymbol[1])
	assert.Equal(t, 9, st.Cells)
	assert.Equal(t, 4, st.LongestMatch)
	assert.Equal(t, d.Priority(matches[1]), st.HighestPriority)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "horizontal", ShapeHorizontal.String())
	assert.Equal(t, "vertical", ShapeVertical.String())
	assert.Equal(t, "L-shape", ShapeL.String())
	assert.Equal(t, "T-shape", ShapeT.String())
}
