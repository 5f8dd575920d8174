package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/reactor"
	"github.com/mFragaBA/aze-cli/internal/sequencer"
)

var (
	initGameID     uint64
	initPlayers    string
	initSmallBlind uint64
	initBuyIn      uint64
	initInterval   time.Duration
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the game account and run the table",
	Long: `init creates the game account for four registered players, masks the
fresh deck under their aggregated key, opens the shuffle chain and then
keeps running as the table: consuming play notes, dealing hole cards when
the shuffled deck returns and triggering community reveals as betting
rounds close. Every player must have registered before init runs.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Uint64Var(&initGameID, "game-id", 0, "game account id")
	initCmd.Flags().StringVar(&initPlayers, "players", "", "comma-separated ids of the four seated players")
	initCmd.Flags().Uint64Var(&initSmallBlind, "small-blind", cards.SmallBlindAmount, "small blind amount")
	initCmd.Flags().Uint64Var(&initBuyIn, "buy-in", cards.BuyInAmount, "per-player buy-in")
	initCmd.Flags().DurationVar(&initInterval, "poll-interval", 2*time.Second, "table poll interval")
	initCmd.MarkFlagRequired("game-id")
	initCmd.MarkFlagRequired("players")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	playerIDs, err := parsePlayerIDs(initPlayers)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := openLedger()
	if err := l.CreateGameAccount(initGameID, playerIDs, initSmallBlind, initBuyIn); err != nil {
		return err
	}

	var seats [cards.NoOfPlayers]uint64
	copy(seats[:], playerIDs)
	agg, err := tableAggregate(l, seats)
	if err != nil {
		return fmt.Errorf("aggregate table key: %w", err)
	}

	exec := ledger.NewExecutor(l, logger)
	dealer := sequencer.NewDealer(initGameID, seats, exec, logger)
	dealer.SetAggregateKey(agg)

	if err := dealer.RequestKeys(ctx); err != nil {
		return err
	}
	if err := dealer.StartShuffle(ctx); err != nil {
		return err
	}
	logger.Info("table created, shuffle chain opened",
		zap.Uint64("game", initGameID),
		zap.Uint64s("players", playerIDs))

	table := reactor.NewTable(initGameID, l, exec, dealer, logger)
	table.Interval = initInterval
	if err := table.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
