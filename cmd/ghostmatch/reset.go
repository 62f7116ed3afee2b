package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghost-match/internal/registry"
)

var flagYes bool

var resetCmd = &cobra.Command{
	Use:   "reset [variant]",
	Short: "Delete scores, saved games and stats",
	Long: `Delete stored data. With a variant, only that variant's scores and
saved game are removed; without one, everything including settings is wiped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && !registry.Exists(args[0]) {
		return fmt.Errorf("unknown variant %q, run 'ghostmatch list' to see variants", args[0])
	}

	a, err := setup(false)
	if err != nil {
		return err
	}

	what := "all scores, saved games, stats and settings"
	if len(args) == 1 {
		what = "scores and the saved game of " + args[0]
	}
	if !flagYes && !confirm(fmt.Sprintf("Delete %s in %s?", what, a.dbPath)) {
		fmt.Println("Aborted.")
		return nil
	}

	store := a.openStore()
	defer store.Close()

	if len(args) == 1 {
		if err := store.ClearScores(args[0]); err != nil {
			return err
		}
		if err := store.ClearGame(args[0]); err != nil {
			return err
		}
	} else if err := store.ClearAll(); err != nil {
		return err
	}

	a.logger.Info("data reset", "scope", what)
	fmt.Println("Done.")
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
