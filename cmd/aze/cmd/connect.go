package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mFragaBA/aze-cli/internal/config"
)

var (
	connectGameID uint64
	connectURL    string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Join a table and follow its event stream",
	Long: `connect records the table in Player.toml and the coordination server
endpoint in ws_config.json, then subscribes to the table's websocket room
and prints every broadcast event until interrupted.`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().Uint64Var(&connectGameID, "game-id", 0, "game account id to join")
	connectCmd.Flags().StringVar(&connectURL, "url", "", "coordination server base url (e.g. http://localhost:8080)")
	connectCmd.MarkFlagRequired("game-id")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	player, err := loadPlayerFile()
	if err != nil {
		return err
	}
	player.GameID = connectGameID
	if err := config.SavePlayer(playerPath, player); err != nil {
		return err
	}

	if connectURL != "" {
		if err := config.SaveWsConfig(wsPath, config.WsConfig{URL: connectURL}); err != nil {
			return err
		}
	}
	ws, err := config.LoadWsConfig(wsPath)
	if err != nil {
		return fmt.Errorf("no coordination server endpoint (pass --url): %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wsURL := fmt.Sprintf("%s/ws/%d", httpToWs(ws.URL), connectGameID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "player %d connected to table %d\n", player.PlayerID, connectGameID)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(msg))
	}
}

func httpToWs(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
