package engine

import "github.com/shopspring/decimal"

// Event is a notification emitted by a Session. The set of variants is closed.
type Event interface {
	sessionEvent()
}

// SwapSucceeded is emitted when a swap is accepted.
type SwapSucceeded struct {
	A Position
	B Position
}

func (SwapSucceeded) sessionEvent() {}

// SwapRejected is emitted when a swap is refused.
type SwapRejected struct {
	A      Position
	B      Position
	Reason string
}

func (SwapRejected) sessionEvent() {}

// MatchFound is emitted for each match cleared during a chain pass.
type MatchFound struct {
	Length int
	Shape  Shape
	Symbol Symbol
	Pass   int
}

func (MatchFound) sessionEvent() {}

// ChainPassed is emitted after each completed chain pass.
type ChainPassed struct {
	Index      int
	Multiplier decimal.Decimal
	Score      int
}

func (ChainPassed) sessionEvent() {}

// GameEnded is emitted when the session enters GameOver.
type GameEnded struct {
	Reason string
	Score  int
}

func (GameEnded) sessionEvent() {}

// StateChanged is emitted on every session state transition.
type StateChanged struct {
	From State
	To   State
}

func (StateChanged) sessionEvent() {}

// Listener receives session events synchronously.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(e).
func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

type multiListener []Listener

func (m multiListener) OnEvent(e Event) {
	for _, l := range m {
		l.OnEvent(e)
	}
}

// Listeners fans events out to every non-nil listener in order.
func Listeners(ls ...Listener) Listener {
	var out multiListener
	for _, l := range ls {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}
