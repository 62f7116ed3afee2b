package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg GhostMatchConfig
	require.NoError(t, yaml.Unmarshal(GetDefaultYAML(), &cfg))
	assert.Equal(t, DefaultGhostMatchConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestToRulesMatchesEngineDefaults(t *testing.T) {
	got, err := DefaultGhostMatchConfig().ToRules()
	require.NoError(t, err)
	want := engine.DefaultRules()

	assert.Equal(t, want.BasePerTile, got.BasePerTile)
	assert.Equal(t, want.MaxPasses, got.MaxPasses)
	assert.Equal(t, want.ShapeWeights, got.ShapeWeights)

	require.Len(t, got.LengthBonuses, len(want.LengthBonuses))
	for i := range want.LengthBonuses {
		assert.Equal(t, want.LengthBonuses[i].MinLength, got.LengthBonuses[i].MinLength)
		assert.True(t, want.LengthBonuses[i].Multiplier.Equal(got.LengthBonuses[i].Multiplier), "length bonus %d", i)
	}
	require.Len(t, got.ChainMultipliers, len(want.ChainMultipliers))
	for i := range want.ChainMultipliers {
		assert.True(t, want.ChainMultipliers[i].Equal(got.ChainMultipliers[i]), "chain multiplier %d", i)
	}
	for shape, m := range want.ShapeMultipliers {
		assert.True(t, m.Equal(got.ShapeMultipliers[shape]), "shape %s", shape)
	}
}

func TestLoadGhostMatchCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "board:\n  symbols: 5\nchain:\n  max_passes: 7\n")

	cfg, err := LoadGhostMatch(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Board.Symbols)
	assert.Equal(t, 7, cfg.Chain.MaxPasses)
	assert.Equal(t, 8, cfg.Board.Size, "unset keys keep defaults")
	assert.Len(t, cfg.Chain.Multipliers, 8)
}

func TestLoadGhostMatchCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGhostMatch(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "board: [unterminated")
	_, err = LoadGhostMatch(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "board:\n  symbols: 12\n")
	_, err = LoadGhostMatch(invalid)
	assert.ErrorContains(t, err, "board.symbols")
}

func TestLoadGhostMatchSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	cfg, err := LoadGhostMatch("")
	require.NoError(t, err)
	assert.Equal(t, DefaultGhostMatchConfig(), cfg, "embedded default when no files exist")

	writeFile(t, filepath.Join(work, "configs", ConfigFile), "board:\n  symbols: 4\n")
	cfg, err = LoadGhostMatch("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Board.Symbols)

	writeFile(t, filepath.Join(home, ".ghostmatch", "configs", ConfigFile), "board:\n  symbols: 7\n")
	cfg, err = LoadGhostMatch("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Board.Symbols, "user config wins over local")

	writeFile(t, filepath.Join(home, ".ghostmatch", "configs", ConfigFile), "board:\n  symbols: 99\n")
	cfg, err = LoadGhostMatch("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Board.Symbols, "invalid user config is skipped")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFile)
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultYAML(), data)

	assert.Error(t, WriteDefault(path, false))
	assert.NoError(t, WriteDefault(path, true))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GhostMatchConfig)
		want   string
	}{
		{"tiny board", func(c *GhostMatchConfig) { c.Board.Size = 2 }, "board.size"},
		{"tiny mini board", func(c *GhostMatchConfig) { c.Board.MiniSize = 1 }, "board.mini_size"},
		{"too few symbols", func(c *GhostMatchConfig) { c.Board.Symbols = 2 }, "board.symbols"},
		{"too many symbols", func(c *GhostMatchConfig) { c.Board.Symbols = 10 }, "board.symbols"},
		{"zero base", func(c *GhostMatchConfig) { c.Scoring.BasePerTile = 0 }, "base_per_tile"},
		{"weights out of order", func(c *GhostMatchConfig) { c.Scoring.ShapeWeights.Vertical = 900 }, "shape_weights"},
		{"no multipliers", func(c *GhostMatchConfig) { c.Chain.Multipliers = nil }, "chain.multipliers"},
		{"bad multiplier", func(c *GhostMatchConfig) { c.Chain.Multipliers[2] = "x1.5" }, "invalid multiplier"},
		{"negative multiplier", func(c *GhostMatchConfig) { c.Scoring.ShapeMultipliers.TShape = "-2" }, "must be positive"},
		{"zero passes", func(c *GhostMatchConfig) { c.Chain.MaxPasses = 0 }, "max_passes"},
		{"loud", func(c *GhostMatchConfig) { c.Audio.Volume = 1.5 }, "audio.volume"},
		{"no tick rate", func(c *GhostMatchConfig) { c.Animation.TickRate = 0 }, "tick_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGhostMatchConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := DefaultGhostMatchConfig()
	cfg.Board.Symbols = 5
	ec, err := cfg.EngineConfig(cfg.Board.MiniSize)
	require.NoError(t, err)
	assert.Equal(t, 6, ec.Size)
	assert.Equal(t, 5, ec.Symbols)
	assert.Equal(t, 100, ec.GenerationAttempts)
	assert.Equal(t, 20, ec.Rules.MaxPasses)
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		symbols int
	}{
		{"", true, 6},
		{"easy", true, 5},
		{"normal", true, 6},
		{"hard", true, 7},
		{"nightmare", false, 0},
	}
	for _, tt := range tests {
		preset, ok := ParsePreset(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if !ok {
			continue
		}
		cfg := DefaultGhostMatchConfig()
		ApplyGhostMatchPreset(&cfg, preset)
		assert.Equal(t, tt.symbols, cfg.Board.Symbols, tt.name)
	}
}

func TestReadEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDBPath, "/tmp/gm.db")
	t.Setenv(EnvAudio, "false")
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvPreset, "hard")

	env, err := ReadEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", env.LogLevel)
	assert.Equal(t, "/tmp/gm.db", env.DBPath)
	require.NotNil(t, env.Audio)
	assert.False(t, *env.Audio)
	require.NotNil(t, env.Seed)
	assert.Equal(t, int64(42), *env.Seed)

	cfg := DefaultGhostMatchConfig()
	env.Apply(&cfg)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 7, cfg.Board.Symbols)
}

func TestReadEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvAudio, "loud"},
		{EnvSeed, "abc"},
		{EnvPreset, "nightmare"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := ReadEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	// Register cleanup, then unset so the file value is applied.
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, EnvLogLevel+"=warn\n")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "warn", os.Getenv(EnvLogLevel))

	t.Setenv(EnvLogLevel, "error")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "error", os.Getenv(EnvLogLevel), "existing variables win")
}

const cornerFixture = `id: corner
name: Corner
symbols: 6
rows:
  - AAB
  - C.D
  - 123
`

func TestParseBoardFixture(t *testing.T) {
	f, err := ParseBoardFixture([]byte(cornerFixture))
	require.NoError(t, err)
	assert.Equal(t, "corner", f.ID)
	assert.Equal(t, 3, f.Size())

	b, err := f.Board()
	require.NoError(t, err)
	assert.Equal(t, engine.Board{
		{1, 1, 2},
		{3, engine.Empty, 4},
		{1, 2, 3},
	}, b)
}

func TestFixtureSavedGame(t *testing.T) {
	f, err := ParseBoardFixture([]byte(cornerFixture))
	require.NoError(t, err)

	sg, err := f.SavedGame()
	require.NoError(t, err)
	assert.Equal(t, engine.SaveVersion, sg.Version)
	assert.Equal(t, 3, sg.Size)
	assert.Equal(t, 6, sg.Symbols)
	assert.Zero(t, sg.Score)

	f.Rows = f.Rows[:2]
	_, err = f.SavedGame()
	assert.Error(t, err)
}

func TestParseBoardFixtureErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"no id", "rows: [AAB, CCD, EEF]", "id is required"},
		{"too small", "id: x\nrows: [AA, BB]", "at least 3 rows"},
		{"ragged", "id: x\nrows: [AAB, CC, EEF]", "row 1"},
		{"bad cell", "id: x\nrows: [AAB, C?D, EEF]", "invalid cell"},
		{"symbol out of range", "id: x\nsymbols: 3\nrows: [AAB, CDA, ABC]", "exceeds 3 symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoardFixture([]byte(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadBoardFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), cornerFixture)
	writeFile(t, filepath.Join(dir, "nested", "a.yml"), "id: alpha\nrows: [ABC, BCA, CAB]\n")
	writeFile(t, filepath.Join(dir, "broken.yaml"), "id: broken\nrows: [A]\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	fixtures, err := LoadBoardFixtures(dir)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, "alpha", fixtures[0].ID)
	assert.Equal(t, "corner", fixtures[1].ID)
	assert.Equal(t, filepath.Join(dir, "nested", "a.yml"), fixtures[0].FilePath)
	assert.Equal(t, engine.DefaultSymbols, fixtures[0].Symbols)

	_, err = LoadBoardFixtures(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
