package engine

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// DefaultSize is the standard board dimension.
const DefaultSize = 8

// DefaultSymbols is the standard number of tile kinds.
const DefaultSymbols = 6

// DefaultGenerationAttempts bounds the verify-and-retry loop in Initialize.
const DefaultGenerationAttempts = 100

// Source supplies random choices for board generation and refills.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Board is a row-major snapshot of cell contents.
type Board [][]Symbol

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r := range b {
		out[r] = append([]Symbol(nil), b[r]...)
	}
	return out
}

// Movement records a tile that fell from one cell to another.
type Movement struct {
	From   Position
	To     Position
	Symbol Symbol
}

// Removal records a tile cleared from the board.
type Removal struct {
	Pos    Position
	Symbol Symbol
}

// Spawn records a new tile placed into an empty cell.
type Spawn struct {
	Pos    Position
	Symbol Symbol
}

// SwapRecord identifies an applied swap so it can be undone.
type SwapRecord struct {
	A Position
	B Position
}

// SwapResult is the outcome of TrySwap. Reason is empty on success.
type SwapResult struct {
	Success bool
	Reason  string
	Swap    SwapRecord
}

// Grid owns the N×N board. It is the only component that mutates tiles.
type Grid struct {
	size        int
	symbols     int
	cells       Board
	rng         Source
	maxAttempts int
	fallbacks   int // cells filled without a run-avoiding choice
}

// NewGrid creates an empty size×size grid using symbols tile kinds.
// Call Initialize to fill it.
func NewGrid(size, symbols int, rng Source) *Grid {
	if size < 1 {
		size = DefaultSize
	}
	if symbols < 1 || symbols > MaxSymbols {
		symbols = DefaultSymbols
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	g := &Grid{
		size:        size,
		symbols:     symbols,
		rng:         rng,
		maxAttempts: DefaultGenerationAttempts,
	}
	g.cells = make(Board, size)
	for r := range g.cells {
		g.cells[r] = make([]Symbol, size)
	}
	return g
}

// NewGridFromBoard builds a grid from an explicit layout.
// The board must be square and hold only Empty or symbols in [1, symbols].
func NewGridFromBoard(board Board, symbols int, rng Source) (*Grid, error) {
	size := len(board)
	if size == 0 {
		return nil, ErrNotSquare
	}
	for _, row := range board {
		if len(row) != size {
			return nil, ErrNotSquare
		}
		for _, s := range row {
			if int(s) > symbols {
				return nil, ErrInvalidSymbol
			}
		}
	}
	g := NewGrid(size, symbols, rng)
	g.cells = board.Clone()
	return g, nil
}

// SetMaxAttempts sets how many boards Initialize may generate before giving up.
func (g *Grid) SetMaxAttempts(n int) {
	if n < 1 {
		n = 1
	}
	g.maxAttempts = n
}

// Size returns the board dimension.
func (g *Grid) Size() int {
	return g.size
}

// SymbolCount returns the number of tile kinds in play.
func (g *Grid) SymbolCount() int {
	return g.symbols
}

// Fallbacks returns how many cells were filled with an unconstrained symbol
// because every symbol would have completed a run.
func (g *Grid) Fallbacks() int {
	return g.fallbacks
}

// InBounds reports whether p lies on the board.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.size && p.Col >= 0 && p.Col < g.size
}

func (g *Grid) mustInBounds(p Position) {
	if !g.InBounds(p) {
		panic(&BoundsError{Pos: p, Size: g.size})
	}
}

// Cell returns the contents of p. Panics with *BoundsError outside the board.
func (g *Grid) Cell(p Position) Symbol {
	g.mustInBounds(p)
	return g.cells[p.Row][p.Col]
}

// SetCell writes s at p. Panics with *BoundsError outside the board.
func (g *Grid) SetCell(p Position, s Symbol) {
	g.mustInBounds(p)
	g.cells[p.Row][p.Col] = s
}

// Board returns a deep copy of the cells.
func (g *Grid) Board() Board {
	return g.cells.Clone()
}

// Initialize fills the board with random symbols that form no runs.
// Each cell avoids completing a run with the two cells above or to the left;
// boards that still contain a run are regenerated up to the attempt limit.
// Returns the number of boards generated.
func (g *Grid) Initialize() int {
	attempts := 0
	for {
		attempts++
		g.generate()
		if !g.hasAnyRun() || attempts >= g.maxAttempts {
			return attempts
		}
	}
}

func (g *Grid) generate() {
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			g.cells[r][c] = Empty
		}
	}
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			g.cells[r][c] = g.pickSymbol(Pos(r, c))
		}
	}
}

// pickSymbol chooses a random symbol for p that does not equal a pair of
// identical non-empty cells directly above or directly to the left.
func (g *Grid) pickSymbol(p Position) Symbol {
	var banned [MaxSymbols + 1]bool
	if p.Row >= 2 {
		a, b := g.cells[p.Row-1][p.Col], g.cells[p.Row-2][p.Col]
		if a != Empty && a == b {
			banned[a] = true
		}
	}
	if p.Col >= 2 {
		a, b := g.cells[p.Row][p.Col-1], g.cells[p.Row][p.Col-2]
		if a != Empty && a == b {
			banned[a] = true
		}
	}

	var allowed [MaxSymbols]Symbol
	n := 0
	for s := Symbol(1); int(s) <= g.symbols; s++ {
		if !banned[s] {
			allowed[n] = s
			n++
		}
	}
	if n == 0 {
		g.fallbacks++
		return Symbol(g.rng.Intn(g.symbols) + 1)
	}
	return allowed[g.rng.Intn(n)]
}

// AdjacentPositions returns the in-bounds orthogonal neighbours of p
// in the order up, down, left, right.
func (g *Grid) AdjacentPositions(p Position) []Position {
	out := make([]Position, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := p.Offset(d[0], d[1])
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// AreAdjacent reports whether a and b share an edge.
func (g *Grid) AreAdjacent(a, b Position) bool {
	return AreAdjacent(a, b)
}

// Swap exchanges the contents of two adjacent cells.
func (g *Grid) Swap(a, b Position) error {
	g.mustInBounds(a)
	g.mustInBounds(b)
	if !AreAdjacent(a, b) {
		return ErrNotAdjacent
	}
	g.swapCells(a, b)
	return nil
}

func (g *Grid) swapCells(a, b Position) {
	g.cells[a.Row][a.Col], g.cells[b.Row][b.Col] = g.cells[b.Row][b.Col], g.cells[a.Row][a.Col]
}

// WouldCreateMatchIfSwapped reports whether swapping a and b forms a run
// through either cell. The board is restored before returning.
func (g *Grid) WouldCreateMatchIfSwapped(a, b Position) bool {
	g.mustInBounds(a)
	g.mustInBounds(b)
	g.swapCells(a, b)
	hit := g.hasRunAt(a) || g.hasRunAt(b)
	g.swapCells(a, b)
	return hit
}

// TrySwap applies the swap only if the cells are adjacent and the swap forms
// a run. The board is untouched on failure.
func (g *Grid) TrySwap(a, b Position) SwapResult {
	rec := SwapRecord{A: a, B: b}
	if !AreAdjacent(a, b) {
		return SwapResult{Reason: ReasonNotAdjacent, Swap: rec}
	}
	if !g.WouldCreateMatchIfSwapped(a, b) {
		return SwapResult{Reason: ReasonNoMatch, Swap: rec}
	}
	g.swapCells(a, b)
	return SwapResult{Success: true, Swap: rec}
}

// UndoSwap reverts a previously applied swap.
func (g *Grid) UndoSwap(rec SwapRecord) {
	g.mustInBounds(rec.A)
	g.mustInBounds(rec.B)
	g.swapCells(rec.A, rec.B)
}

// hasRunAt reports whether p is part of a horizontal or vertical run of 3+.
func (g *Grid) hasRunAt(p Position) bool {
	s := g.cells[p.Row][p.Col]
	if s == Empty {
		return false
	}
	return g.runLength(p, 0, 1, s) >= 3 || g.runLength(p, 1, 0, s) >= 3
}

// runLength counts equal symbols through p along (dr, dc) in both directions.
func (g *Grid) runLength(p Position, dr, dc int, s Symbol) int {
	n := 1
	for q := p.Offset(dr, dc); g.InBounds(q) && g.cells[q.Row][q.Col] == s; q = q.Offset(dr, dc) {
		n++
	}
	for q := p.Offset(-dr, -dc); g.InBounds(q) && g.cells[q.Row][q.Col] == s; q = q.Offset(-dr, -dc) {
		n++
	}
	return n
}

// hasAnyRun scans every row and column for a run of 3+.
func (g *Grid) hasAnyRun() bool {
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			s := g.cells[r][c]
			if s == Empty {
				continue
			}
			if c+2 < g.size && g.cells[r][c+1] == s && g.cells[r][c+2] == s {
				return true
			}
			if r+2 < g.size && g.cells[r+1][c] == s && g.cells[r+2][c] == s {
				return true
			}
		}
	}
	return false
}

// RemoveAt clears the given cells and returns what they held.
// Empty and out-of-bounds entries are skipped.
func (g *Grid) RemoveAt(positions []Position) []Removal {
	var removed []Removal
	for _, p := range positions {
		if !g.InBounds(p) {
			continue
		}
		s := g.cells[p.Row][p.Col]
		if s == Empty {
			continue
		}
		g.cells[p.Row][p.Col] = Empty
		removed = append(removed, Removal{Pos: p, Symbol: s})
	}
	return removed
}

// ApplyGravity drops tiles down each column, preserving their order.
// Only tiles that changed cell are reported.
func (g *Grid) ApplyGravity() []Movement {
	var moves []Movement
	for c := 0; c < g.size; c++ {
		write := g.size - 1
		for r := g.size - 1; r >= 0; r-- {
			s := g.cells[r][c]
			if s == Empty {
				continue
			}
			if r != write {
				g.cells[write][c] = s
				g.cells[r][c] = Empty
				moves = append(moves, Movement{From: Pos(r, c), To: Pos(write, c), Symbol: s})
			}
			write--
		}
	}
	return moves
}

// FillEmptyIntelligently fills every empty cell, column by column from the
// top, avoiding symbols that would extend an equal pair above or to the left.
func (g *Grid) FillEmptyIntelligently() []Spawn {
	var spawns []Spawn
	for c := 0; c < g.size; c++ {
		for r := 0; r < g.size; r++ {
			if g.cells[r][c] != Empty {
				continue
			}
			s := g.pickSymbol(Pos(r, c))
			g.cells[r][c] = s
			spawns = append(spawns, Spawn{Pos: Pos(r, c), Symbol: s})
		}
	}
	return spawns
}

// FillEmpty fills every empty cell with an unconstrained random symbol.
func (g *Grid) FillEmpty() []Spawn {
	var spawns []Spawn
	for c := 0; c < g.size; c++ {
		for r := 0; r < g.size; r++ {
			if g.cells[r][c] != Empty {
				continue
			}
			s := Symbol(g.rng.Intn(g.symbols) + 1)
			g.cells[r][c] = s
			spawns = append(spawns, Spawn{Pos: Pos(r, c), Symbol: s})
		}
	}
	return spawns
}

// ProcessGravityAndFill applies gravity then refills the gaps.
func (g *Grid) ProcessGravityAndFill() ([]Movement, []Spawn) {
	moves := g.ApplyGravity()
	spawns := g.FillEmptyIntelligently()
	return moves, spawns
}

// IsFull reports whether no cell is empty.
func (g *Grid) IsFull() bool {
	for _, row := range g.cells {
		for _, s := range row {
			if s == Empty {
				return false
			}
		}
	}
	return true
}

// IsEmpty reports whether every cell is empty.
func (g *Grid) IsEmpty() bool {
	for _, row := range g.cells {
		for _, s := range row {
			if s != Empty {
				return false
			}
		}
	}
	return true
}

// EmptyPositions lists empty cells in row-major order.
func (g *Grid) EmptyPositions() []Position {
	var out []Position
	for r, row := range g.cells {
		for c, s := range row {
			if s == Empty {
				out = append(out, Pos(r, c))
			}
		}
	}
	return out
}

// ColumnNeedsGravity reports whether a tile in col sits above an empty cell.
func (g *Grid) ColumnNeedsGravity(col int) bool {
	if col < 0 || col >= g.size {
		return false
	}
	seenEmpty := false
	for r := g.size - 1; r >= 0; r-- {
		if g.cells[r][col] == Empty {
			seenEmpty = true
		} else if seenEmpty {
			return true
		}
	}
	return false
}

// NeedsGravity reports whether any column has a floating tile.
func (g *Grid) NeedsGravity() bool {
	for c := 0; c < g.size; c++ {
		if g.ColumnNeedsGravity(c) {
			return true
		}
	}
	return false
}

// FindLegalMove returns the first swap, in row-major order, that forms a run.
func (g *Grid) FindLegalMove() (Position, Position, bool) {
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			a := Pos(r, c)
			// right and down neighbours cover every unordered pair
			for _, b := range [2]Position{a.Offset(0, 1), a.Offset(1, 0)} {
				if g.InBounds(b) && g.WouldCreateMatchIfSwapped(a, b) {
					return a, b, true
				}
			}
		}
	}
	return Position{}, Position{}, false
}

// HasAnyLegalMove reports whether at least one swap forms a run.
func (g *Grid) HasAnyLegalMove() bool {
	_, _, ok := g.FindLegalMove()
	return ok
}

// Clone returns an independent copy of the grid.
// The copy draws refills from its own generator seeded by the board contents,
// so simulating on it never advances the original's random sequence.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:        g.size,
		symbols:     g.symbols,
		cells:       g.cells.Clone(),
		rng:         rand.New(rand.NewSource(g.contentSeed())),
		maxAttempts: g.maxAttempts,
	}
	return c
}

func (g *Grid) contentSeed() int64 {
	h := fnv.New64a()
	for _, row := range g.cells {
		for _, s := range row {
			h.Write([]byte{byte(s)})
		}
	}
	return int64(h.Sum64() >> 1)
}

// Equal reports whether two grids hold the same cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// String renders the board as rows of digits, '.' for empty cells.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.size * (g.size + 1))
	for r, row := range g.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, s := range row {
			if s == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('0' + byte(s))
			}
		}
	}
	return sb.String()
}
