package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/config"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
	"github.com/vovakirdan/ghost-match/internal/sim"
)

var (
	flagSimGames    int
	flagSimVariant  string
	flagSimMaxMoves int
	flagSimBoard    string
	flagSimStrategy string
	flagSimParallel int
	flagSimJSON     bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Play games headlessly and check the engine",
	Long: `Play games without a terminal using an auto-player.

After every move the board is checked: no empty cells, no matches left
standing, chain passes numbered in order with non-decreasing multipliers,
and the game ends exactly when no legal swap remains. Any violation makes
the command exit with an error.

Strategies:
  first   - play the first legal swap found
  greedy  - preview every legal swap and play the best scoring one

Examples:
  ghostmatch sim --games 100
  ghostmatch sim --strategy greedy --seed 42 --json
  ghostmatch sim --board ./boards/corner.yaml --max-moves 10`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	f := simCmd.Flags()
	f.IntVar(&flagSimGames, "games", 10, "Number of games to play")
	f.StringVar(&flagSimVariant, "variant", ghostmatch.IDClassic, "Board variant: ghostmatch or ghostmatch_mini")
	f.IntVar(&flagSimMaxMoves, "max-moves", 500, "Stop each game after this many moves (0 = no limit)")
	f.StringVar(&flagSimBoard, "board", "", "Start every game from a board fixture YAML")
	f.StringVar(&flagSimStrategy, "strategy", string(sim.StrategyFirst), "Auto-player strategy: first or greedy")
	f.IntVar(&flagSimParallel, "parallel", runtime.NumCPU(), "Games played at once")
	f.BoolVar(&flagSimJSON, "json", false, "Print the report as JSON")
}

func runSim(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}

	strategy, err := sim.ParseStrategy(flagSimStrategy)
	if err != nil {
		return err
	}

	var size int
	switch flagSimVariant {
	case ghostmatch.IDClassic:
		size = a.cfg.Board.Size
	case ghostmatch.IDMini:
		size = a.cfg.Board.MiniSize
	default:
		return fmt.Errorf("unknown variant %q", flagSimVariant)
	}
	ecfg, err := a.cfg.EngineConfig(size)
	if err != nil {
		return err
	}

	opts := sim.Options{
		Games:        flagSimGames,
		Seed:         a.seed,
		Engine:       ecfg,
		Strategy:     strategy,
		MaxMoves:     flagSimMaxMoves,
		PreviewSteps: a.cfg.Chain.PreviewSteps,
		Workers:      flagSimParallel,
		Logger:       a.logger,
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if flagSimBoard != "" {
		fixture, err := config.LoadBoardFixture(flagSimBoard)
		if err != nil {
			return err
		}
		if opts.Start, err = fixture.SavedGame(); err != nil {
			return fmt.Errorf("board %s: %w", flagSimBoard, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.logger.Info("simulating", "games", opts.Games, "strategy", strategy, "seed", opts.Seed, "workers", opts.Workers)
	rep, runErr := sim.Run(ctx, opts)
	if len(rep.Games) == 0 {
		return runErr
	}

	if flagSimJSON {
		data, err := jsoniter.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printSimReport(rep)
	}
	return runErr
}

func printSimReport(rep sim.Report) {
	fmt.Printf("  %-4s  %-12s  %-10s  %-5s  %-5s  %-5s  %s\n", "Game", "Seed", "Score", "Grade", "Moves", "Chain", "End")
	fmt.Printf("  %-4s  %-12s  %-10s  %-5s  %-5s  %-5s  %s\n", "----", "----", "-----", "-----", "-----", "-----", "---")
	for _, g := range rep.Games {
		fmt.Printf("  %-4d  %-12d  %-10d  %-5s  %-5d  x%-4d  %s\n",
			g.Index+1, g.Seed, g.Score, g.Grade, g.Moves, g.LongestChain, g.EndReason)
		for _, v := range g.Violations {
			fmt.Printf("        ! %s\n", v)
		}
	}

	fmt.Println()
	fmt.Printf("Games:         %d\n", len(rep.Games))
	fmt.Printf("Average score: %.1f\n", rep.AverageScore)
	fmt.Printf("Best score:    %s (%s)\n", engine.FormatScore(rep.BestScore), engine.RankFor(rep.BestScore).Name)
	fmt.Printf("Longest chain: x%d\n", rep.LongestChain)
	fmt.Printf("Violations:    %d\n", rep.Violations)
}
