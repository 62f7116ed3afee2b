package core

// RuntimeConfig is passed to games on Reset.
type RuntimeConfig struct {
	ScreenW  int   // screen width in characters
	ScreenH  int   // screen height in characters
	TickRate int   // simulation ticks per second
	Seed     int64 // 0 means the platform picks one from the clock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is the status a game reports to the platform.
type GameState struct {
	Score     int
	HighScore int
	Moves     int
	GameOver  bool
	Paused    bool
	Busy      bool // a turn or its replay is in progress; input is ignored
}

// StepResult is returned by Game.Step after each tick.
type StepResult struct {
	State   GameState
	Changed bool // the board or score changed this tick
}
