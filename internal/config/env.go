package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read on startup.
const (
	EnvLogLevel = "GHOSTMATCH_LOG_LEVEL"
	EnvDBPath   = "GHOSTMATCH_DB"
	EnvAudio    = "GHOSTMATCH_AUDIO"
	EnvSeed     = "GHOSTMATCH_SEED"
	EnvPreset   = "GHOSTMATCH_DIFFICULTY"
)

// Env holds overrides taken from the process environment.
// Zero values mean "not set".
type Env struct {
	LogLevel string
	DBPath   string
	Audio    *bool
	Seed     *int64
	Preset   string
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ReadEnv collects overrides from the environment.
func ReadEnv() (Env, error) {
	env := Env{
		LogLevel: strings.TrimSpace(os.Getenv(EnvLogLevel)),
		DBPath:   strings.TrimSpace(os.Getenv(EnvDBPath)),
		Preset:   strings.TrimSpace(os.Getenv(EnvPreset)),
	}

	if v := strings.TrimSpace(os.Getenv(EnvAudio)); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return env, fmt.Errorf("%s: %w", EnvAudio, err)
		}
		env.Audio = &on
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return env, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		env.Seed = &seed
	}
	if env.Preset != "" {
		if _, ok := ParsePreset(env.Preset); !ok {
			return env, fmt.Errorf("%s: unknown difficulty %q", EnvPreset, env.Preset)
		}
	}
	return env, nil
}

// Apply copies the environment overrides that live in the config file.
func (e Env) Apply(cfg *GhostMatchConfig) {
	if e.Audio != nil {
		cfg.Audio.Enabled = *e.Audio
	}
	if e.Preset != "" {
		preset, _ := ParsePreset(e.Preset)
		ApplyGhostMatchPreset(cfg, preset)
	}
}
