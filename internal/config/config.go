// Package config provides YAML-based game configuration loading,
// difficulty presets, environment overrides and board fixtures.
package config

// GhostMatchConfig contains all tunables for Ghost Match.
type GhostMatchConfig struct {
	Board     BoardConfig     `yaml:"board"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Chain     ChainConfig     `yaml:"chain"`
	Animation AnimationConfig `yaml:"animation"`
	Audio     AudioConfig     `yaml:"audio"`
}

// BoardConfig defines board dimensions and generation.
type BoardConfig struct {
	Size               int `yaml:"size"`
	MiniSize           int `yaml:"mini_size"`
	Symbols            int `yaml:"symbols"`
	GenerationAttempts int `yaml:"generation_attempts"`
}

// ScoringConfig defines how matches are scored and ranked.
// Multipliers are decimal strings so they load without float rounding.
type ScoringConfig struct {
	BasePerTile      int                 `yaml:"base_per_tile"`
	LengthBonuses    []LengthBonusConfig `yaml:"length_bonuses"`
	ShapeMultipliers ShapeMultipliers    `yaml:"shape_multipliers"`
	ShapeWeights     ShapeWeights        `yaml:"shape_weights"`
}

// LengthBonusConfig applies Multiplier to matches of at least MinLength cells.
type LengthBonusConfig struct {
	MinLength  int    `yaml:"min_length"`
	Multiplier string `yaml:"multiplier"`
}

// ShapeMultipliers are score bonuses for compound shapes.
type ShapeMultipliers struct {
	TShape string `yaml:"t_shape"`
	LShape string `yaml:"l_shape"`
}

// ShapeWeights rank overlapping matches; higher wins.
type ShapeWeights struct {
	TShape     int `yaml:"t_shape"`
	LShape     int `yaml:"l_shape"`
	Vertical   int `yaml:"vertical"`
	Horizontal int `yaml:"horizontal"`
}

// ChainConfig defines cascade escalation.
type ChainConfig struct {
	Multipliers  []string `yaml:"multipliers"` // pass 1 first; the last entry repeats
	MaxPasses    int      `yaml:"max_passes"`
	PreviewSteps int      `yaml:"preview_steps"`
}

// AnimationConfig defines replay pacing in simulation ticks.
type AnimationConfig struct {
	TickRate   int `yaml:"tick_rate"`
	SwapTicks  int `yaml:"swap_ticks"`
	FlashTicks int `yaml:"flash_ticks"`
	FallTicks  int `yaml:"fall_ticks"`
	HintAfter  int `yaml:"hint_after"` // idle seconds before the hint is shown; 0 disables
}

// AudioConfig defines sound output.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"` // 0.0 - 1.0
	SampleRate int     `yaml:"sample_rate"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// SymbolsForPreset returns the number of tile kinds for a preset.
// Fewer kinds means more matches and longer cascades.
func SymbolsForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 5
	case DifficultyHard:
		return 7
	default:
		return 6
	}
}

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(name string) (DifficultyPreset, bool) {
	switch DifficultyPreset(name) {
	case "", DifficultyNormal:
		return DifficultyNormal, true
	case DifficultyEasy, DifficultyHard:
		return DifficultyPreset(name), true
	default:
		return "", false
	}
}
