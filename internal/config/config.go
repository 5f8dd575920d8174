// Package config loads the local identity and endpoint records that live
// outside the ledger: the player file, the websocket endpoint file and the
// coordination server settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Player is the local identity record (Player.toml).
type Player struct {
	PlayerID   uint64 `toml:"player_id"`
	Identifier string `toml:"identifier"`
	GameID     uint64 `toml:"game_id,omitempty"`
	// Seed is the hex-encoded key seed the masking key pair derives from.
	Seed string `toml:"seed,omitempty"`
}

func LoadPlayer(path string) (Player, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Player{}, fmt.Errorf("read player file: %w", err)
	}
	var p Player
	if err := toml.Unmarshal(b, &p); err != nil {
		return Player{}, fmt.Errorf("parse player file %s: %w", path, err)
	}
	if p.PlayerID == 0 {
		return Player{}, fmt.Errorf("player file %s: missing player_id", path)
	}
	return p, nil
}

func SavePlayer(path string, p Player) error {
	b, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player file: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write player file: %w", err)
	}
	return nil
}

// WsConfig points the CLI at the coordination server (ws_config.json).
type WsConfig struct {
	URL string `json:"url"`
}

func LoadWsConfig(path string) (WsConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return WsConfig{}, fmt.Errorf("read ws config: %w", err)
	}
	var w WsConfig
	if err := json.Unmarshal(b, &w); err != nil {
		return WsConfig{}, fmt.Errorf("parse ws config %s: %w", path, err)
	}
	if w.URL == "" {
		return WsConfig{}, fmt.Errorf("ws config %s: missing url", path)
	}
	return w, nil
}

func SaveWsConfig(path string, w WsConfig) error {
	b, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ws config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write ws config: %w", err)
	}
	return nil
}

// Server configures the coordination server daemon.
type Server struct {
	ListenAddr string   `mapstructure:"listen_addr"`
	LedgerPath string   `mapstructure:"ledger_path"`
	GameID     uint64   `mapstructure:"game_id"`
	PlayerIDs  []uint64 `mapstructure:"player_ids"`
	SmallBlind uint64   `mapstructure:"small_blind"`
	BuyIn      uint64   `mapstructure:"buy_in"`
	LogLevel   string   `mapstructure:"log_level"`
}

// LoadServer reads the daemon config, falling back to defaults for any
// field the file or the AZE_* environment leaves unset.
func LoadServer(path string) (Server, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("ledger_path", "aze-ledger.json")
	v.SetDefault("small_blind", 5)
	v.SetDefault("buy_in", 1000)
	v.SetDefault("log_level", "info")
	v.SetEnvPrefix("AZE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, fmt.Errorf("read server config: %w", err)
		}
	}

	var s Server
	if err := v.Unmarshal(&s); err != nil {
		return Server{}, fmt.Errorf("parse server config: %w", err)
	}
	return s, nil
}
