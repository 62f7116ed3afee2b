package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/ghost-match/internal/audio"
	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/core"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch"
	"github.com/vovakirdan/ghost-match/internal/platform/tui"
	"github.com/vovakirdan/ghost-match/internal/registry"
	"github.com/vovakirdan/ghost-match/internal/storage"
)

var (
	flagBoard   string
	flagResume  bool
	flagNoAudio bool
	flagVolume  float64
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play Ghost Match",
	Long: `Start a game. The variant defaults to ghostmatch (8x8);
ghostmatch_mini plays on a 6x6 board.

Controls:
  Arrows/WASD  - Move cursor
  Space/Enter  - Pick up a tile, or swap it with a neighbour
  Esc          - Drop the picked tile (back to menu when paused)
  H            - Show a hint
  P            - Pause
  R            - New board
  M            - Mute
  ?            - Help
  Q/Ctrl+C     - Quit (an unfinished game is saved)

Examples:
  ghostmatch play
  ghostmatch play ghostmatch_mini
  ghostmatch play --resume
  ghostmatch play --difficulty hard --seed 42
  ghostmatch play --board ./boards/corner.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagBoard, "board", "", "Start every game from a board fixture YAML")
	playCmd.Flags().BoolVar(&flagResume, "resume", false, "Continue the saved game for this variant")
	playCmd.Flags().BoolVar(&flagNoAudio, "no-audio", false, "Disable sound")
	playCmd.Flags().Float64Var(&flagVolume, "volume", -1, "Sound volume 0.0-1.0 (remembered)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := ghostmatch.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown variant %q, run 'ghostmatch list' to see variants", gameID)
	}

	a, err := setup(true)
	if err != nil {
		return err
	}
	store := a.openStore()
	defer store.Close()

	settings := a.applySettings(store)
	player := a.newAudio(settings)
	defer player.Close()

	opts := registry.Options{
		Config:   a.cfg,
		Logger:   a.logger,
		Listener: player,
	}
	if flagBoard != "" {
		fixture, err := config.LoadBoardFixture(flagBoard)
		if err != nil {
			return err
		}
		opts.Fixture = &fixture
	}

	game, err := tui.NewGame(gameID, opts, store, flagResume)
	if err != nil {
		return err
	}

	_, err = tui.Run(game, a.runtimeConfig(), tui.Deps{
		Store:         store,
		Audio:         player,
		Logger:        a.logger,
		SaveProgress:  flagBoard == "",
		ScreenshotDir: screenshotDir(),
	})
	return err
}

// applySettings merges stored preferences into the config. Explicit flags
// and environment variables win and the flags are remembered.
func (a *app) applySettings(store storage.Store) storage.Settings {
	settings, err := store.LoadSettings()
	if err != nil {
		a.logger.Warn("could not load settings", "err", err)
	}

	changed := false
	if flagDifficulty != "" {
		settings.Difficulty = flagDifficulty
		changed = true
	} else if a.env.Preset == "" && settings.Difficulty != string(config.DifficultyNormal) {
		if preset, ok := config.ParsePreset(settings.Difficulty); ok {
			config.ApplyGhostMatchPreset(&a.cfg, preset)
		}
	}
	if flagVolume >= 0 {
		settings.Volume = min(flagVolume, 1)
		changed = true
	}
	if changed {
		if err := store.SaveSettings(settings); err != nil {
			a.logger.Warn("could not save settings", "err", err)
		}
	}
	return settings
}

// newAudio builds the sound player. Muting is a stored setting; disabling
// comes from the config, the environment or --no-audio.
func (a *app) newAudio(settings storage.Settings) *audio.Player {
	player := audio.New(audio.Options{
		Enabled:    a.cfg.Audio.Enabled && !flagNoAudio,
		Volume:     settings.Volume,
		SampleRate: a.cfg.Audio.SampleRate,
		Logger:     a.logger,
	})
	player.SetMuted(!settings.AudioEnabled)
	return player
}

// runtimeConfig sizes the screen from the terminal.
func (a *app) runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.Animation.TickRate,
		Seed:     a.seed,
	}
}

func screenshotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ghostmatch", "screenshots")
}
