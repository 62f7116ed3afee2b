package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/platform/tui"
	"github.com/vovakirdan/ghost-match/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a variant from a menu",
	Long: `Start in interactive menu mode.

The menu lists both board sizes and any saved game to continue.
After a game, Esc on the pause or game-over screen returns here.

Controls:
  Up/Down/j/k  - Navigate
  Enter/Space  - Select
  Tab          - High scores
  Q            - Quit`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	store := a.openStore()
	defer store.Close()

	settings := a.applySettings(store)
	player := a.newAudio(settings)
	defer player.Close()

	cfg := a.runtimeConfig()
	for {
		res, err := tui.RunMenu(store, cfg)
		if err != nil {
			return err
		}
		cfg = res.Config

		switch {
		case res.Quit:
			return nil

		case res.WantsScoreboard:
			back, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !back {
				return nil
			}
			continue
		}

		opts := registry.Options{Config: a.cfg, Logger: a.logger, Listener: player}
		game, err := tui.NewGame(res.GameID, opts, store, res.Resume)
		if err != nil {
			a.logger.Error("could not create game", "game", res.GameID, "err", err)
			continue
		}

		// Each game from the menu gets a fresh board unless --seed was given.
		if a.seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		back, err := tui.Run(game, cfg, tui.Deps{
			Store:         store,
			Audio:         player,
			Logger:        a.logger,
			SaveProgress:  true,
			ScreenshotDir: screenshotDir(),
		})
		if err != nil {
			return err
		}
		if !back {
			return nil
		}
	}
}
