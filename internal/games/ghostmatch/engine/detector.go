package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Shape classifies a match.
type Shape int

const (
	ShapeHorizontal Shape = iota
	ShapeVertical
	ShapeL
	ShapeT
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeHorizontal:
		return "horizontal"
	case ShapeVertical:
		return "vertical"
	case ShapeL:
		return "L-shape"
	case ShapeT:
		return "T-shape"
	default:
		return "unknown"
	}
}

// Match is a set of cells cleared together.
type Match struct {
	Positions []Position
	Shape     Shape
	Symbol    Symbol
}

// Len returns the number of cells in the match.
func (m Match) Len() int {
	return len(m.Positions)
}

// Detection groups the matches found on one board.
type Detection struct {
	Horizontal []Match
	Vertical   []Match
	LShapes    []Match
	TShapes    []Match
	HasMatches bool
	Count      int
}

// All returns every match in category order: horizontal, vertical, L, T.
func (d Detection) All() []Match {
	out := make([]Match, 0, d.Count)
	out = append(out, d.Horizontal...)
	out = append(out, d.Vertical...)
	out = append(out, d.LShapes...)
	out = append(out, d.TShapes...)
	return out
}

func (d *Detection) tally() {
	d.Count = len(d.Horizontal) + len(d.Vertical) + len(d.LShapes) + len(d.TShapes)
	d.HasMatches = d.Count > 0
}

// offset is a (row, col) displacement from an anchor cell.
type offset [2]int

var (
	armRight = []offset{{0, 1}, {0, 2}}
	armLeft  = []offset{{0, -1}, {0, -2}}
	armDown  = []offset{{1, 0}, {2, 0}}
	armUp    = []offset{{-1, 0}, {-2, 0}}

	crossH = []offset{{0, -1}, {0, 1}}
	crossV = []offset{{-1, 0}, {1, 0}}
)

// lTemplates pair a horizontal and a vertical 2-cell arm meeting at the anchor.
var lTemplates = [8][2][]offset{
	{armRight, armDown},
	{armLeft, armDown},
	{armRight, armUp},
	{armLeft, armUp},
	{armDown, armRight},
	{armDown, armLeft},
	{armUp, armRight},
	{armUp, armLeft},
}

// tTemplates pair a 2-cell stem with the two cells crossing the anchor.
var tTemplates = [4][2][]offset{
	{armUp, crossH},
	{armDown, crossH},
	{armLeft, crossV},
	{armRight, crossV},
}

// Detector finds and ranks matches. It holds only immutable rules.
type Detector struct {
	rules Rules
}

// NewDetector creates a detector using the given rules.
func NewDetector(rules Rules) *Detector {
	return &Detector{rules: rules}
}

// Rules returns the detector's rules.
func (d *Detector) Rules() Rules {
	return d.rules
}

// cellAt returns the symbol at (r, c), or Empty for cells outside a
// possibly jagged board.
func cellAt(b Board, r, c int) Symbol {
	if r < 0 || r >= len(b) || c < 0 || c >= len(b[r]) {
		return Empty
	}
	return b[r][c]
}

func boardWidth(b Board) int {
	w := 0
	for _, row := range b {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// FindHorizontalRuns scans each row left to right for runs of 3+.
func (d *Detector) FindHorizontalRuns(b Board) []Match {
	var out []Match
	for r, row := range b {
		out = appendRuns(out, len(row), func(i int) Position { return Pos(r, i) }, b, ShapeHorizontal)
	}
	return out
}

// FindVerticalRuns scans each column top to bottom for runs of 3+.
func (d *Detector) FindVerticalRuns(b Board) []Match {
	var out []Match
	for c := 0; c < boardWidth(b); c++ {
		out = appendRuns(out, len(b), func(i int) Position { return Pos(i, c) }, b, ShapeVertical)
	}
	return out
}

// appendRuns walks n cells of a line and appends every run of 3+.
func appendRuns(out []Match, n int, at func(int) Position, b Board, shape Shape) []Match {
	start := 0
	for i := 1; i <= n; i++ {
		first := at(start)
		sym := cellAt(b, first.Row, first.Col)
		if i < n {
			p := at(i)
			if s := cellAt(b, p.Row, p.Col); s == sym && s != Empty {
				continue
			}
		}
		if sym != Empty && i-start >= 3 {
			m := Match{Shape: shape, Symbol: sym, Positions: make([]Position, 0, i-start)}
			for j := start; j < i; j++ {
				m.Positions = append(m.Positions, at(j))
			}
			out = append(out, m)
		}
		start = i
	}
	return out
}

// FindLShapes tests the eight L templates at every anchor.
func (d *Detector) FindLShapes(b Board) []Match {
	return findTemplates(b, lTemplates[:], ShapeL)
}

// FindTShapes tests the four T templates at every anchor.
func (d *Detector) FindTShapes(b Board) []Match {
	return findTemplates(b, tTemplates[:], ShapeT)
}

func findTemplates(b Board, templates [][2][]offset, shape Shape) []Match {
	var out []Match
	for r, row := range b {
		for c, sym := range row {
			if sym == Empty {
				continue
			}
			anchor := Pos(r, c)
			for _, tpl := range templates {
				if m, ok := matchTemplate(b, anchor, sym, tpl, shape); ok {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func matchTemplate(b Board, anchor Position, sym Symbol, tpl [2][]offset, shape Shape) (Match, bool) {
	positions := make([]Position, 0, 5)
	positions = append(positions, anchor)
	for _, arm := range tpl {
		for _, o := range arm {
			p := anchor.Offset(o[0], o[1])
			if cellAt(b, p.Row, p.Col) != sym {
				return Match{}, false
			}
			positions = append(positions, p)
		}
	}
	return Match{Positions: positions, Shape: shape, Symbol: sym}, true
}

// FindAllBasic returns line matches only.
func (d *Detector) FindAllBasic(b Board) Detection {
	det := Detection{
		Horizontal: d.FindHorizontalRuns(b),
		Vertical:   d.FindVerticalRuns(b),
	}
	det.tally()
	return det
}

// FindAllAdvanced returns L and T matches only.
func (d *Detector) FindAllAdvanced(b Board) Detection {
	det := Detection{
		LShapes: d.FindLShapes(b),
		TShapes: d.FindTShapes(b),
	}
	det.tally()
	return det
}

// FindAll returns line and shape matches.
func (d *Detector) FindAll(b Board) Detection {
	det := Detection{
		Horizontal: d.FindHorizontalRuns(b),
		Vertical:   d.FindVerticalRuns(b),
		LShapes:    d.FindLShapes(b),
		TShapes:    d.FindTShapes(b),
	}
	det.tally()
	return det
}

// Priority ranks a match for overlap resolution.
func (d *Detector) Priority(m Match) int {
	return d.rules.shapeWeight(m.Shape) + 10*m.Len()
}

// ResolveOverlaps keeps a disjoint subset of matches, preferring higher
// priority. Ties keep their input order.
func (d *Detector) ResolveOverlaps(matches []Match) []Match {
	sorted := append([]Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return d.Priority(sorted[i]) > d.Priority(sorted[j])
	})

	claimed := make(map[Position]struct{})
	var kept []Match
	for _, m := range sorted {
		free := true
		for _, p := range m.Positions {
			if _, ok := claimed[p]; ok {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for _, p := range m.Positions {
			claimed[p] = struct{}{}
		}
		kept = append(kept, m)
	}
	return kept
}

// MatchScore scores m with the given combo multiplier.
func (d *Detector) MatchScore(m Match, combo decimal.Decimal) int {
	return d.rules.MatchScore(m, combo)
}

// Positions returns the distinct cells covered by matches, in first-seen order.
func Positions(matches []Match) []Position {
	seen := make(map[Position]struct{})
	var out []Position
	for _, m := range matches {
		for _, p := range m.Positions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// MatchStats summarizes a set of matches.
type MatchStats struct {
	Total           int
	ByShape         map[Shape]int
	ByLength        map[int]int
	BySymbol        map[Symbol]int
	Cells           int // distinct cells covered
	HighestPriority int
	LongestMatch    int
}

// Stats groups matches by shape, length and symbol.
func (d *Detector) Stats(matches []Match) MatchStats {
	st := MatchStats{
		Total:    len(matches),
		ByShape:  make(map[Shape]int),
		ByLength: make(map[int]int),
		BySymbol: make(map[Symbol]int),
		Cells:    len(Positions(matches)),
	}
	for _, m := range matches {
		st.ByShape[m.Shape]++
		st.ByLength[m.Len()]++
		st.BySymbol[m.Symbol]++
		if p := d.Priority(m); p > st.HighestPriority {
			st.HighestPriority = p
		}
		if m.Len() > st.LongestMatch {
			st.LongestMatch = m.Len()
		}
	}
	return st
}
