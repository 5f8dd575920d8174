package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ledgerPath string
	playerPath string
	wsPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "aze",
	Short: "Mental poker client for aze tables",
	Long: `aze drives one seat of a four-player mental poker table. Accounts and
notes live on a shared ledger; the client polls its own account, consumes
incoming notes and answers with the next protocol step.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&ledgerPath, "ledger", "aze-ledger.json", "path to the shared ledger file")
	pf.StringVar(&playerPath, "player-config", "Player.toml", "path to the player identity file")
	pf.StringVar(&wsPath, "ws-config", "ws_config.json", "path to the coordination server endpoint file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
