// Package engine implements the match-3 simulation: the board, match
// detection, chain-reaction resolution and the game session state machine.
// It has no terminal, audio or storage dependencies; collaborators observe it
// through events and read-only status snapshots.
package engine

import "fmt"

// Position addresses a cell on the board.
// Row increases downward, Col increases to the right.
type Position struct {
	Row int
	Col int
}

// Pos is a convenience constructor for Position.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Offset returns the position shifted by (dr, dc).
func (p Position) Offset(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Manhattan returns the Manhattan distance to another position.
func (p Position) Manhattan(other Position) int {
	dr := p.Row - other.Row
	dc := p.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// AreAdjacent reports whether two positions share an edge.
func AreAdjacent(a, b Position) bool {
	return a.Manhattan(b) == 1
}

// Symbol is a tile kind. Empty is the absence of a tile, not a symbol.
type Symbol uint8

// Empty marks a cell whose tile was removed and not yet refilled.
const Empty Symbol = 0

// Default symbol set.
const (
	Happy Symbol = iota + 1
	Scary
	Cool
	Angry
	Surprised
	Wink
	Sleepy
	Dizzy
	Sneaky
)

// MaxSymbols is the largest symbol count a board may use.
const MaxSymbols = 9

var symbolNames = [...]string{
	Empty:     "empty",
	Happy:     "happy",
	Scary:     "scary",
	Cool:      "cool",
	Angry:     "angry",
	Surprised: "surprised",
	Wink:      "wink",
	Sleepy:    "sleepy",
	Dizzy:     "dizzy",
	Sneaky:    "sneaky",
}

// String returns the symbol name.
func (s Symbol) String() string {
	if int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return fmt.Sprintf("symbol(%d)", uint8(s))
}

// IsEmpty reports whether the cell holds no tile.
func (s Symbol) IsEmpty() bool {
	return s == Empty
}
