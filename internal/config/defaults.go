package config

import (
	_ "embed"
)

//go:embed defaults/ghostmatch.yaml
var defaultGhostMatchYAML []byte

// DefaultGhostMatchConfig returns the default Ghost Match configuration.
func DefaultGhostMatchConfig() GhostMatchConfig {
	return GhostMatchConfig{
		Board: BoardConfig{
			Size:               8,
			MiniSize:           6,
			Symbols:            6,
			GenerationAttempts: 100,
		},
		Scoring: ScoringConfig{
			BasePerTile: 10,
			LengthBonuses: []LengthBonusConfig{
				{MinLength: 4, Multiplier: "1.5"},
				{MinLength: 5, Multiplier: "2"},
				{MinLength: 6, Multiplier: "3"},
			},
			ShapeMultipliers: ShapeMultipliers{
				TShape: "2.5",
				LShape: "2",
			},
			ShapeWeights: ShapeWeights{
				TShape:     1000,
				LShape:     800,
				Vertical:   100,
				Horizontal: 50,
			},
		},
		Chain: ChainConfig{
			Multipliers:  []string{"1", "1.2", "1.5", "2", "2.5", "3", "4", "5"},
			MaxPasses:    20,
			PreviewSteps: 5,
		},
		Animation: AnimationConfig{
			TickRate:   30,
			SwapTicks:  4,
			FlashTicks: 9,
			FallTicks:  6,
			HintAfter:  8,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     0.6,
			SampleRate: 44100,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultGhostMatchYAML
}
