package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// deadRows is a stable 8x8 board on which no swap forms a run.
var deadRows = []string{
	"ACEACEAC",
	"BDFBDFBD",
	"CEACEACE",
	"DFBDFBDF",
	"EACEACEA",
	"FBDFBDFB",
	"ACEACEAC",
	"BDFBDFBD",
}

// cascadeRows has a single legal move, (5,0)<->(5,1). It clears column 0
// vertically, and the fall lines up row 7 for a second pass.
var cascadeRows = []string{
	"ACEACEAC",
	"BDFBDFBD",
	"CEACEACE",
	"DFBDFBDF",
	"CACEACEA",
	"ABDFBDFB",
	"BCEACEAC",
	"BCCBDFBD",
}

// lastMoveRows has a single legal move, (5,6)<->(5,7), after which the
// board is dead when refills always take the lowest allowed symbol.
var lastMoveRows = []string{
	"ACEACEAC",
	"BDFBDFBD",
	"CEACEACE",
	"DFBDFBDF",
	"EACEACEF",
	"FBDFBDFB",
	"ACEACEAC",
	"BDFBDFBD",
}

// board parses rows of letters, 'A' being symbol 1 and '.' an empty cell.
func board(rows ...string) Board {
	b := make(Board, len(rows))
	for r, row := range rows {
		b[r] = make([]Symbol, len(row))
		for c, ch := range row {
			if ch != '.' {
				b[r][c] = Symbol(ch-'A') + 1
			}
		}
	}
	return b
}

func mustGrid(t *testing.T, src Source, rows ...string) *Grid {
	t.Helper()
	g, err := NewGridFromBoard(board(rows...), DefaultSymbols, src)
	require.NoError(t, err)
	return g
}

// cycleSource returns 0, 1, 2, ... modulo n.
type cycleSource struct {
	calls int
}

func (c *cycleSource) Intn(n int) int {
	v := c.calls % n
	c.calls++
	return v
}

// zeroSource always picks the first candidate.
type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

// recorder collects session events.
type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
