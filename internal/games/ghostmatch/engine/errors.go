package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAdjacent is returned when a swap targets cells that do not share an edge.
	ErrNotAdjacent = errors.New("engine: positions are not adjacent")

	// ErrNotSquare is returned when a board fixture is not N×N.
	ErrNotSquare = errors.New("engine: board is not square")

	// ErrInvalidSymbol is returned when a fixture holds a symbol outside the symbol set.
	ErrInvalidSymbol = errors.New("engine: invalid symbol")

	// ErrChainInProgress is returned when a resolution starts while another is running.
	ErrChainInProgress = errors.New("engine: chain resolution already in progress")

	// ErrChainResolution wraps any failure raised inside a chain pass.
	ErrChainResolution = errors.New("engine: chain resolution failed")

	// ErrInvalidTransition is returned when a session operation is not valid in the current state.
	ErrInvalidTransition = errors.New("engine: invalid state transition")
)

// BoundsError is the panic value for cell access outside the board.
// Out-of-bounds access is a caller bug and is never clamped.
type BoundsError struct {
	Pos  Position
	Size int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("engine: position %s out of bounds for %dx%d board", e.Pos, e.Size, e.Size)
}

// Rejection reasons reported for swaps that are refused during normal play.
const (
	ReasonNotAdjacent = "not adjacent"
	ReasonNoMatch     = "would not create a match"
	ReasonOutOfBounds = "out of bounds"
	ReasonBusy        = "busy"
	ReasonNotPlaying  = "not playing"
)
