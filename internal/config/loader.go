package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// ConfigFile is the file name looked up in the config directories.
const ConfigFile = "ghostmatch.yaml"

// LoadGhostMatch loads Ghost Match configuration.
// Search order: customPath -> ~/.ghostmatch/configs/ghostmatch.yaml -> ./configs/ghostmatch.yaml -> embedded default.
// Keys missing from a file keep their default values.
func LoadGhostMatch(customPath string) (GhostMatchConfig, error) {
	cfg := DefaultGhostMatchConfig()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(ConfigFile), filepath.Join("configs", ConfigFile)} {
		if path == "" {
			continue
		}
		if loaded, ok := tryLoad(path); ok {
			return loaded, nil
		}
	}

	if err := yaml.Unmarshal(defaultGhostMatchYAML, &cfg); err != nil {
		return DefaultGhostMatchConfig(), nil
	}
	return cfg, nil
}

// tryLoad reads an optional config file. Unreadable or invalid files are skipped.
func tryLoad(path string) (GhostMatchConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GhostMatchConfig{}, false
	}
	cfg := DefaultGhostMatchConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GhostMatchConfig{}, false
	}
	if err := cfg.Validate(); err != nil {
		return GhostMatchConfig{}, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ghostmatch", "configs", filename)
}

// WriteDefault writes the embedded default config to path, creating parent
// directories. An existing file is left alone unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, defaultGhostMatchYAML, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ApplyGhostMatchPreset sets the symbol count for a difficulty preset.
func ApplyGhostMatchPreset(cfg *GhostMatchConfig, preset DifficultyPreset) {
	cfg.Board.Symbols = SymbolsForPreset(preset)
}

// Validate checks the config for values the engine cannot run with.
func (c GhostMatchConfig) Validate() error {
	var errs []error

	if c.Board.Size < 3 {
		errs = append(errs, fmt.Errorf("board.size must be at least 3, got %d", c.Board.Size))
	}
	if c.Board.MiniSize < 3 {
		errs = append(errs, fmt.Errorf("board.mini_size must be at least 3, got %d", c.Board.MiniSize))
	}
	if c.Board.Symbols < 3 || c.Board.Symbols > engine.MaxSymbols {
		errs = append(errs, fmt.Errorf("board.symbols must be between 3 and %d, got %d", engine.MaxSymbols, c.Board.Symbols))
	}
	if c.Scoring.BasePerTile <= 0 {
		errs = append(errs, fmt.Errorf("scoring.base_per_tile must be positive, got %d", c.Scoring.BasePerTile))
	}

	w := c.Scoring.ShapeWeights
	if !(w.TShape > w.LShape && w.LShape > w.Vertical && w.Vertical > w.Horizontal) {
		errs = append(errs, errors.New("scoring.shape_weights must rank t_shape > l_shape > vertical > horizontal"))
	}

	if len(c.Chain.Multipliers) == 0 {
		errs = append(errs, errors.New("chain.multipliers must not be empty"))
	}
	if c.Chain.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("chain.max_passes must be at least 1, got %d", c.Chain.MaxPasses))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be within 0..1, got %g", c.Audio.Volume))
	}
	if c.Animation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("animation.tick_rate must be positive, got %d", c.Animation.TickRate))
	}

	if _, err := c.ToRules(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ToRules converts the scoring and chain sections into engine rules.
func (c GhostMatchConfig) ToRules() (engine.Rules, error) {
	rules := engine.Rules{
		BasePerTile:      c.Scoring.BasePerTile,
		ShapeMultipliers: make(map[engine.Shape]decimal.Decimal, 2),
		ShapeWeights: map[engine.Shape]int{
			engine.ShapeT:          c.Scoring.ShapeWeights.TShape,
			engine.ShapeL:          c.Scoring.ShapeWeights.LShape,
			engine.ShapeVertical:   c.Scoring.ShapeWeights.Vertical,
			engine.ShapeHorizontal: c.Scoring.ShapeWeights.Horizontal,
		},
		MaxPasses: c.Chain.MaxPasses,
	}

	for _, b := range c.Scoring.LengthBonuses {
		m, err := parseMultiplier("scoring.length_bonuses", b.Multiplier)
		if err != nil {
			return engine.Rules{}, err
		}
		rules.LengthBonuses = append(rules.LengthBonuses, engine.LengthBonus{MinLength: b.MinLength, Multiplier: m})
	}

	shapes := []struct {
		shape engine.Shape
		key   string
		value string
	}{
		{engine.ShapeT, "scoring.shape_multipliers.t_shape", c.Scoring.ShapeMultipliers.TShape},
		{engine.ShapeL, "scoring.shape_multipliers.l_shape", c.Scoring.ShapeMultipliers.LShape},
	}
	for _, s := range shapes {
		if s.value == "" {
			continue
		}
		m, err := parseMultiplier(s.key, s.value)
		if err != nil {
			return engine.Rules{}, err
		}
		rules.ShapeMultipliers[s.shape] = m
	}

	for _, v := range c.Chain.Multipliers {
		m, err := parseMultiplier("chain.multipliers", v)
		if err != nil {
			return engine.Rules{}, err
		}
		rules.ChainMultipliers = append(rules.ChainMultipliers, m)
	}
	return rules, nil
}

// EngineConfig builds a session config for a board of the given size.
func (c GhostMatchConfig) EngineConfig(size int) (engine.Config, error) {
	rules, err := c.ToRules()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Size:               size,
		Symbols:            c.Board.Symbols,
		Rules:              rules,
		GenerationAttempts: c.Board.GenerationAttempts,
	}, nil
}

func parseMultiplier(key, value string) (decimal.Decimal, error) {
	m, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid multiplier %q: %w", key, value, err)
	}
	if !m.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s: multiplier %q must be positive", key, value)
	}
	return m, nil
}
