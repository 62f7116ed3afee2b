package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
	"github.com/vovakirdan/ghost-match/internal/platform/tui"
	"github.com/vovakirdan/ghost-match/internal/registry"
)

var (
	flagScoresLimit int
	flagScoresTUI   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [variant]",
	Short: "Show high scores",
	Long: `Display the top scores for a variant (default: ghostmatch).

Examples:
  ghostmatch scores
  ghostmatch scores ghostmatch_mini --limit 20
  ghostmatch scores --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Open the interactive scoreboard")
}

func runScores(cmd *cobra.Command, args []string) error {
	gameID := ghostmatch.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown variant %q, run 'ghostmatch list' to see variants", gameID)
	}

	a, err := setup(flagScoresTUI)
	if err != nil {
		return err
	}
	store := a.openStore()
	defer store.Close()

	if flagScoresTUI {
		cfg := a.runtimeConfig()
		_, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
		return err
	}

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		return err
	}

	title := gameID
	for _, g := range registry.List() {
		if g.ID == gameID {
			title = g.Title
		}
	}
	fmt.Printf("High Scores - %s\n\n", title)

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'ghostmatch play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-5s  %s\n", "Rank", "Score", "Grade", "Moves", "Chain", "Date")
	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-5s  %s\n", "----", "-----", "-----", "-----", "-----", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-10d  %-5s  %-5d  x%-4d  %s\n",
			i+1, e.Score, engine.RankFor(e.Score).Grade, e.Moves, e.LongestChain,
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
