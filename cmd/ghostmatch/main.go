// ghostmatch is a match-3 puzzle game for the terminal.
//
// Usage:
//
//	ghostmatch list              - List board variants
//	ghostmatch play [variant]    - Play a variant (default: ghostmatch)
//	ghostmatch menu              - Pick a variant interactively
//	ghostmatch scores [variant]  - Show high scores
//	ghostmatch stats [variant]   - Show lifetime statistics
//	ghostmatch sim               - Play games headlessly and check the engine
//	ghostmatch serve             - Start SSH server for remote play
//	ghostmatch reset             - Delete scores, saves and stats
//	ghostmatch config init       - Write the default config file
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.ghostmatch/configs, ./configs)
//	--db <path>         - Database path (default: ~/.ghostmatch/scores.db)
//	--seed <value>      - RNG seed for reproducible boards
//	--log-level <level> - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/ghost-match/internal/games/ghostmatch"
)

var (
	// Global flags
	flagConfig     string
	flagDBPath     string
	flagSeed       int64
	flagLogLevel   string
	flagEnvFile    string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghostmatch",
	Short: "Ghost Match - a match-3 puzzle in your terminal",
	Long: `Ghost Match is a match-3 puzzle game for the terminal.

Swap two neighbouring ghosts to line up three or more of a kind.
Cleared tiles fall, new ones drop in, and every cascade raises the
score multiplier. The game ends when no swap can make a match.

Examples:
  ghostmatch play
  ghostmatch play ghostmatch_mini --difficulty easy
  ghostmatch play --resume
  ghostmatch sim --games 50 --json
  ghostmatch serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config YAML")
	pf.StringVar(&flagDBPath, "db", "", "Path to scores database (default ~/.ghostmatch/scores.db)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Environment file with GHOSTMATCH_* overrides")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
}

// app is the resolved runtime setup shared by commands.
type app struct {
	cfg    config.GhostMatchConfig
	env    config.Env
	dbPath string
	seed   int64
	logger *log.Logger
}

// setup loads .env, the environment, the config file and builds the logger.
// Interactive commands log to a file so the alt screen stays clean.
func setup(logToFile bool) (*app, error) {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return nil, err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadGhostMatch(flagConfig)
	if err != nil {
		return nil, err
	}
	env.Apply(&cfg)
	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return nil, fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", flagDifficulty)
		}
		config.ApplyGhostMatchPreset(&cfg, preset)
	}

	a := &app{cfg: cfg, env: env, dbPath: storage.DefaultPath(), seed: flagSeed}
	if env.DBPath != "" {
		a.dbPath = env.DBPath
	}
	if flagDBPath != "" {
		a.dbPath = flagDBPath
	}
	if a.seed == 0 && env.Seed != nil {
		a.seed = *env.Seed
	}

	a.logger, err = newLogger(firstNonEmpty(flagLogLevel, env.LogLevel, "info"), logToFile)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// newLogger builds the process logger. With toFile set it appends to
// ~/.ghostmatch/ghostmatch.log, falling back to stderr.
func newLogger(level string, toFile bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	out := os.Stderr
	if toFile {
		if f, err := openLogFile(); err == nil {
			out = f
		}
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "ghostmatch",
		Level:           lvl,
	}), nil
}

func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".ghostmatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "ghostmatch.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// openStore opens the database, or a memory store if that fails.
func (a *app) openStore() storage.Store {
	return storage.OpenOrMemory(a.dbPath, a.logger)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
