package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
	"github.com/vovakirdan/ghost-match/internal/registry"
)

var statsCmd = &cobra.Command{
	Use:   "stats [variant]",
	Short: "Show lifetime statistics",
	Long: `Display leaderboard and lifetime totals per variant.
Without an argument every variant is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ids := registry.IDs()
	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return fmt.Errorf("unknown variant %q, run 'ghostmatch list' to see variants", args[0])
		}
		ids = args
	}

	a, err := setup(false)
	if err != nil {
		return err
	}
	store := a.openStore()
	defer store.Close()

	for i, id := range ids {
		gs, err := store.GameStats(id)
		if err != nil {
			return err
		}
		ps, err := store.LoadPlayerStats(id)
		if err != nil {
			return err
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Println(id)
		if gs.GamesCount == 0 {
			fmt.Println("  no games finished yet")
			continue
		}

		rank := engine.RankFor(gs.HighScore)
		fmt.Printf("  Games played:     %d\n", gs.GamesCount)
		fmt.Printf("  High score:       %d (%s, %s)\n", gs.HighScore, rank.Grade, rank.Name)
		fmt.Printf("  Average score:    %.0f\n", gs.AvgScore)
		fmt.Printf("  Last played:      %s\n", gs.LastPlayed.Format("2006-01-02 15:04"))
		fmt.Printf("  Moves:            %d\n", ps.TotalMoves)
		fmt.Printf("  Matches:          %d\n", ps.TotalMatches)
		fmt.Printf("  Cascades:         %d\n", ps.TotalChains)
		fmt.Printf("  Longest chain:    %d\n", ps.MaxChainLevel)
		fmt.Printf("  Tiles cleared:    %d\n", ps.ElementsCleared)
		fmt.Printf("  Best turn:        %d\n", ps.BestTurn)
		fmt.Printf("  Time played:      %s\n", ps.PlayTime.Round(time.Second))
	}
	return nil
}
