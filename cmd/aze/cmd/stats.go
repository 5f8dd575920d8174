package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Render the table state from the coordination server",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	gameID, err := requireGameID(player)
	if err != nil {
		return err
	}
	client, err := serverClient()
	if err != nil {
		return err
	}

	stats, err := client.GetStats(cmd.Context(), strconv.FormatUint(gameID, 10))
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "table %d  phase=%s  pot=%d  highest bet=%d  to act=%d\n",
		gameID, stats.CurrentState, stats.PotValue, stats.HighestBet, stats.CurrentPlayer)
	fmt.Fprintf(out, "board: %s\n\n", strings.Join(stats.CommunityCards, " "))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "seat\tbalance\tfolded\thand")
	for i := range stats.PlayerBalances {
		folded := "no"
		if i < len(stats.HasFolded) && stats.HasFolded[i] {
			folded = "yes"
		}
		hand := "NA"
		if i < len(stats.PlayerHands) {
			hand = stats.PlayerHands[i]
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", i, stats.PlayerBalances[i], folded, hand)
	}
	return w.Flush()
}
