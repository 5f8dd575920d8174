// azed runs the off-chain coordination server for one table: the
// websocket broadcast hub, the stats endpoint backed by ledger storage and
// the shared action validator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mFragaBA/aze-cli/internal/broadcast"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/config"
	"github.com/mFragaBA/aze-cli/internal/game"
	"github.com/mFragaBA/aze-cli/internal/ledger"
)

var configPath = flag.String("config", "", "path to server config file")

func main() {
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Server, logger *zap.Logger) error {
	if len(cfg.PlayerIDs) != cards.NoOfPlayers {
		return fmt.Errorf("config needs %d player ids, got %d", cards.NoOfPlayers, len(cfg.PlayerIDs))
	}

	// The account state lives in the shared ledger file written by the aze
	// processes; the server only reads it.
	l := ledger.NewFileLedger(cfg.LedgerPath)

	balances := make([]uint64, len(cfg.PlayerIDs))
	for i := range balances {
		balances[i] = cfg.BuyIn
	}
	engine, err := game.New(cfg.PlayerIDs, balances, cfg.SmallBlind, 2*cfg.SmallBlind, logger)
	if err != nil {
		return err
	}

	srv := broadcast.NewServer(cfg.GameID, l, engine, logger)
	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("coordination server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Uint64("game", cfg.GameID))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
