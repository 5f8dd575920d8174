package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/reactor"
)

var (
	consumeOnce     bool
	consumeInterval time.Duration
)

var consumeNotesCmd = &cobra.Command{
	Use:   "consume-notes",
	Short: "Run the note-consumption loop for this seat",
	Long: `consume-notes polls the player's account, consumes every incoming note
and dispatches the resulting protocol step: remasking the deck during the
shuffle chain, answering decryption share requests and finishing this
seat's own reveals. It keeps the seat alive; leave it running while a
hand is in progress.`,
	RunE: runConsumeNotes,
}

func init() {
	consumeNotesCmd.Flags().BoolVar(&consumeOnce, "once", false, "run a single poll round and exit")
	consumeNotesCmd.Flags().DurationVar(&consumeInterval, "poll-interval", 2*time.Second, "sleep between poll rounds")
	rootCmd.AddCommand(consumeNotesCmd)
}

func runConsumeNotes(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	l := openLedger()
	exec := ledger.NewExecutor(l, logger)
	seat, err := buildSeatPlayer(player, l, exec, logger)
	if err != nil {
		return err
	}

	r := reactor.New(player.PlayerID, l, exec, seat, logger)
	r.Interval = consumeInterval

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if consumeOnce {
		return r.Tick(ctx)
	}
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
