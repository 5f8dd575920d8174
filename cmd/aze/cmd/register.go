package cmd

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/config"
)

var (
	registerIdentifier string
	registerPlayerID   uint64
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a player account and the local identity file",
	Long: `register creates the player account on the ledger, generates the masking
key pair from a fresh seed, publishes the public key on the account and
writes Player.toml with the identity and seed.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerIdentifier, "identifier", "", "human-readable player name")
	registerCmd.Flags().Uint64Var(&registerPlayerID, "player-id", 0, "account id (random when omitted)")
	registerCmd.MarkFlagRequired("identifier")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	id := registerPlayerID
	if id == 0 {
		var err error
		id, err = randomAccountID()
		if err != nil {
			return err
		}
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return fmt.Errorf("generate seed: %w", err)
	}
	_, pk, err := azecrypto.KeyGen(seed)
	if err != nil {
		return fmt.Errorf("derive masking keys: %w", err)
	}

	l := openLedger()
	if err := l.CreatePlayerAccount(id); err != nil {
		return err
	}
	if err := l.SetSlot(id, cards.PublicKeySlot, cards.Slot(pk.Words())); err != nil {
		return err
	}

	player := config.Player{
		PlayerID:   id,
		Identifier: registerIdentifier,
		Seed:       hex.EncodeToString(seed),
	}
	if err := config.SavePlayer(playerPath, player); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registered player %d (%s)\n", id, registerIdentifier)
	return nil
}

func randomAccountID() (uint64, error) {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("generate account id: %w", err)
		}
		if id := binary.LittleEndian.Uint64(b[:]); id != 0 {
			return id, nil
		}
	}
}
