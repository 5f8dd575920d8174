package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mFragaBA/aze-cli/internal/broadcast"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/game"
	"github.com/mFragaBA/aze-cli/internal/ledger"
)

var (
	actionType   string
	actionAmount uint64
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Submit a betting action",
	Long: `action validates the move against the coordination server's game engine
and, when legal, submits the matching play note to the table. The note's
chip movement is applied when the table consumes it.`,
	RunE: runAction,
}

func init() {
	actionCmd.Flags().StringVar(&actionType, "type", "", "smallblind|bigblind|raise|call|check|fold")
	actionCmd.Flags().Uint64Var(&actionAmount, "amount", 0, "raise amount on top of the current bet")
	actionCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(actionCmd)
}

func runAction(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	gameID, err := requireGameID(player)
	if err != nil {
		return err
	}

	move := game.Action{Type: game.ActionKind(actionType)}
	if move.Type == game.ActionRaise {
		if actionAmount == 0 {
			return fmt.Errorf("raise needs --amount")
		}
		amount := actionAmount
		move.Amount = &amount
	}

	client, err := serverClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ok, err := client.ValidateAction(ctx, player.PlayerID, move)
	if err != nil {
		return fmt.Errorf("validate action: %w", err)
	}
	if !ok {
		return fmt.Errorf("move %s rejected for player %d", move, player.PlayerID)
	}

	note, err := actionNote(player.PlayerID, gameID, move)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	exec := ledger.NewExecutor(openLedger(), logger)
	if err := exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note)); err != nil {
		return err
	}

	broadcastAction(ctx, client, gameID, player.PlayerID, move)
	fmt.Fprintf(cmd.OutOrStdout(), "played %s\n", actionType)
	return nil
}

func actionNote(playerID, gameID uint64, move game.Action) (ledger.NoteEnvelope, error) {
	switch move.Type {
	case game.ActionSmallBlind:
		return ledger.NewPlayBetNote(playerID, gameID, cards.SmallBlindAmount)
	case game.ActionBigBlind:
		return ledger.NewPlayBetNote(playerID, gameID, 2*cards.SmallBlindAmount)
	case game.ActionRaise:
		return ledger.NewPlayRaiseNote(playerID, gameID, *move.Amount)
	case game.ActionCall:
		return ledger.NewPlayCallNote(playerID, gameID)
	case game.ActionCheck:
		return ledger.NewPlayCheckNote(playerID, gameID)
	case game.ActionFold:
		return ledger.NewPlayFoldNote(playerID, gameID)
	}
	return ledger.NoteEnvelope{}, fmt.Errorf("unknown action type %q", move.Type)
}

// broadcastAction is best effort: a missed event only delays spectators
// until the next stats poll.
func broadcastAction(ctx context.Context, client *broadcast.Client, gameID, playerID uint64, move game.Action) {
	event := map[string]any{
		"player_id": playerID,
		"action":    move,
	}
	_ = client.BroadcastMessage(ctx, strconv.FormatUint(gameID, 10), event)
}
