package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/holdem"
	"github.com/mFragaBA/aze-cli/internal/ledger"
)

var peekHandCmd = &cobra.Command{
	Use:   "peek-hand",
	Short: "Show this seat's revealed hole cards",
	RunE:  runPeekHand,
}

var commitHandCmd = &cobra.Command{
	Use:   "commit-hand",
	Short: "Evaluate and publish this seat's hand at showdown",
	Long: `commit-hand ranks the revealed hole cards against the full board and
records the result in the table's stat block. It only works once the
river has been revealed.`,
	RunE: runCommitHand,
}

var seeHandsCmd = &cobra.Command{
	Use:   "see-hands",
	Short: "List the hands committed at showdown",
	RunE:  runSeeHands,
}

func init() {
	rootCmd.AddCommand(peekHandCmd)
	rootCmd.AddCommand(commitHandCmd)
	rootCmd.AddCommand(seeHandsCmd)
}

// holeCards reads the plaintext hole cards off the player's own account.
func holeCards(l ledger.Ledger, playerID uint64) ([2]cards.Card, error) {
	var hole [2]cards.Card
	acct, err := l.GetAccount(playerID)
	if err != nil {
		return hole, err
	}
	for i, slot := range []uint8{cards.PlayerCard1Slot, cards.PlayerCard2Slot} {
		s := acct.Slot(slot)
		if s == (cards.Slot{}) || s.IsMasked() {
			return hole, fmt.Errorf("hole cards not revealed yet")
		}
		c, err := cards.FromSlot(s)
		if err != nil {
			return hole, err
		}
		hole[i] = c
	}
	return hole, nil
}

func runPeekHand(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	hole, err := holeCards(openLedger(), player.PlayerID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hole[0], hole[1])
	return nil
}

func runCommitHand(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	gameID, err := requireGameID(player)
	if err != nil {
		return err
	}
	l := openLedger()

	hole, err := holeCards(l, player.PlayerID)
	if err != nil {
		return err
	}
	acct, err := l.GetAccount(gameID)
	if err != nil {
		return err
	}
	if acct.Slot(cards.CurrentPhaseSlot)[0] != cards.PhaseRiver {
		return fmt.Errorf("board is not complete yet")
	}
	board := make([]cards.Card, 0, cards.CommunityCards)
	for _, slot := range cards.CommunityCardSlots() {
		c, err := cards.FromSlot(acct.Slot(slot))
		if err != nil {
			return fmt.Errorf("community card: %w", err)
		}
		board = append(board, c)
	}

	rank, err := holdem.RankHand(hole, board)
	if err != nil {
		return err
	}
	seat, _, err := seatOrder(acct, player.PlayerID)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	note, err := ledger.NewSetHandNote(player.PlayerID, gameID, ledger.SetHandNote{
		HoleCard1:   uint64(hole[0].Index()),
		HoleCard2:   uint64(hole[1].Index()),
		HandRank:    rank,
		PlayerIndex: uint64(seat),
	})
	if err != nil {
		return err
	}
	exec := ledger.NewExecutor(l, logger)
	if err := exec.ExecuteAndSync(cmd.Context(), ledger.NoteTransaction(note)); err != nil {
		return err
	}

	name, _ := cards.HandName(rank)
	fmt.Fprintf(cmd.OutOrStdout(), "committed %s %s: %s\n", hole[0], hole[1], name)
	return nil
}

func runSeeHands(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	gameID, err := requireGameID(player)
	if err != nil {
		return err
	}
	acct, err := openLedger().GetAccount(gameID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return err
		}
		id := acct.Slot(base)[0]
		hand := acct.Slot(base + cards.HandOffset)
		if hand == (cards.Slot{}) {
			fmt.Fprintf(out, "seat %d (player %d): not committed\n", i, id)
			continue
		}
		c1, err := cards.FromIndex(uint8(hand[0]))
		if err != nil {
			return err
		}
		c2, err := cards.FromIndex(uint8(hand[1]))
		if err != nil {
			return err
		}
		name, err := cards.HandName(hand[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seat %d (player %d): %s %s (%s)\n", i, id, c1, c2, name)
	}
	return nil
}
