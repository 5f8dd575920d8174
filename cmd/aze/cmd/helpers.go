package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/broadcast"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/config"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/sequencer"
)

func openLedger() *ledger.FileLedger {
	return ledger.NewFileLedger(ledgerPath)
}

func loadPlayerFile() (config.Player, error) {
	p, err := config.LoadPlayer(playerPath)
	if err != nil {
		return config.Player{}, fmt.Errorf("no player identity (run `aze register` first): %w", err)
	}
	return p, nil
}

func requireGameID(p config.Player) (uint64, error) {
	if p.GameID == 0 {
		return 0, fmt.Errorf("player %d is not connected to a table (run `aze connect`)", p.PlayerID)
	}
	return p.GameID, nil
}

func serverClient() (*broadcast.Client, error) {
	ws, err := config.LoadWsConfig(wsPath)
	if err != nil {
		return nil, fmt.Errorf("no coordination server endpoint (run `aze connect --url ...`): %w", err)
	}
	return broadcast.NewClient(ws.URL), nil
}

// seatOrder reads the table's stat blocks and returns the seated player ids
// in seat order plus the given player's own seat.
func seatOrder(acct ledger.AccountSnapshot, playerID uint64) (int, [cards.NoOfPlayers]uint64, error) {
	var ids [cards.NoOfPlayers]uint64
	seat := -1
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return 0, ids, err
		}
		ids[i] = acct.Slot(base)[0]
		if ids[i] == playerID {
			seat = i
		}
	}
	if seat < 0 {
		return 0, ids, fmt.Errorf("player %d is not seated at table %d", playerID, acct.ID)
	}
	return seat, ids, nil
}

// tableAggregate sums the public keys published on the seated players'
// accounts.
func tableAggregate(l ledger.Ledger, ids [cards.NoOfPlayers]uint64) (azecrypto.Point, error) {
	pks := make([]azecrypto.Point, 0, cards.NoOfPlayers)
	for _, id := range ids {
		acct, err := l.GetAccount(id)
		if err != nil {
			return azecrypto.Point{}, fmt.Errorf("read player %d: %w", id, err)
		}
		words := acct.Slot(cards.PublicKeySlot)
		if words == (cards.Slot{}) {
			return azecrypto.Point{}, fmt.Errorf("player %d has not published a key", id)
		}
		pk, err := azecrypto.PointFromWords(words)
		if err != nil {
			return azecrypto.Point{}, fmt.Errorf("player %d key: %w", id, err)
		}
		pks = append(pks, pk)
	}
	return azecrypto.AggregateKeys(pks...), nil
}

// buildSeatPlayer assembles the sequencing-protocol player for the local
// identity: keys from the stored seed, seat and relay order from the table.
func buildSeatPlayer(p config.Player, l ledger.Ledger, exec *ledger.Executor, log *zap.Logger) (*sequencer.Player, error) {
	gameID, err := requireGameID(p)
	if err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(p.Seed)
	if err != nil || len(seed) == 0 {
		return nil, fmt.Errorf("player file %s holds no usable seed", playerPath)
	}

	acct, err := l.GetAccount(gameID)
	if err != nil {
		return nil, fmt.Errorf("read table %d: %w", gameID, err)
	}
	seat, ids, err := seatOrder(acct, p.PlayerID)
	if err != nil {
		return nil, err
	}
	var peers [3]uint64
	for i := 1; i < cards.NoOfPlayers; i++ {
		peers[i-1] = ids[(seat+i)%cards.NoOfPlayers]
	}

	player, err := sequencer.NewPlayer(p.PlayerID, gameID, seat, seed, peers, exec, log)
	if err != nil {
		return nil, err
	}
	agg, err := tableAggregate(l, ids)
	if err != nil {
		return nil, err
	}
	player.SetAggregateKey(agg)
	return player, nil
}

func parsePlayerIDs(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid player id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) != cards.NoOfPlayers {
		return nil, fmt.Errorf("need exactly %d player ids, got %d", cards.NoOfPlayers, len(ids))
	}
	return ids, nil
}
