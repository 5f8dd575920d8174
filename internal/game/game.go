// Package game holds the off-ledger poker validator. Every action a player
// wants to put on the ledger is first checked here against turn order,
// balances and pot state; the ledger remains the source of truth for the
// table itself.
package game

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type ActionKind string

const (
	ActionSmallBlind ActionKind = "smallblind"
	ActionBigBlind   ActionKind = "bigblind"
	ActionCall       ActionKind = "call"
	ActionCheck      ActionKind = "check"
	ActionFold       ActionKind = "fold"
	ActionRaise      ActionKind = "raise"
)

// Action is the wire form accepted by /checkmove. Amount is only meaningful
// for raises.
type Action struct {
	Type   ActionKind `json:"action_type"`
	Amount *uint64    `json:"amount,omitempty"`
}

func (a Action) String() string {
	b, _ := json.Marshal(a)
	return string(b)
}

type Player struct {
	ID         uint64
	Balance    uint64
	CurrentBet uint64
	HasFolded  bool
}

// PokerGame validates proposed actions. It is not safe for concurrent use;
// the broadcast server guards the single instance with its own lock.
type PokerGame struct {
	players            []Player
	smallBlind         uint64
	bigBlind           uint64
	pot                uint64
	currentBet         uint64
	currentPlayerIndex int

	log *zap.Logger
}

func New(playerIDs []uint64, initialBalances []uint64, smallBlind, bigBlind uint64, log *zap.Logger) (*PokerGame, error) {
	if len(playerIDs) == 0 || len(playerIDs) != len(initialBalances) {
		return nil, fmt.Errorf("game: %d player ids but %d balances", len(playerIDs), len(initialBalances))
	}
	if log == nil {
		log = zap.NewNop()
	}
	players := make([]Player, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = Player{ID: id, Balance: initialBalances[i]}
	}
	return &PokerGame{
		players:    players,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		log:        log,
	}, nil
}

// CheckMove validates and applies an action. Illegal moves return false and
// leave the game untouched.
func (g *PokerGame) CheckMove(action Action, playerID uint64) bool {
	player := &g.players[g.currentPlayerIndex]
	if player.ID != playerID {
		g.log.Info("rejected: not this player's turn",
			zap.Uint64("player", playerID),
			zap.Uint64("expected", player.ID))
		return false
	}
	if player.HasFolded {
		g.log.Info("rejected: player already folded", zap.Uint64("player", playerID))
		return false
	}

	switch action.Type {
	case ActionFold:
		player.HasFolded = true

	case ActionCheck:
		if player.CurrentBet < g.currentBet {
			g.log.Info("rejected: cannot check, must call or raise",
				zap.Uint64("player", playerID),
				zap.Uint64("playerBet", player.CurrentBet),
				zap.Uint64("tableBet", g.currentBet))
			return false
		}

	case ActionCall:
		callAmount := g.currentBet - player.CurrentBet
		if player.Balance < callAmount {
			g.log.Info("rejected: not enough balance to call",
				zap.Uint64("player", playerID),
				zap.Uint64("need", callAmount),
				zap.Uint64("have", player.Balance))
			return false
		}
		player.Balance -= callAmount
		player.CurrentBet += callAmount
		g.pot += callAmount

	case ActionRaise:
		if action.Amount == nil {
			g.log.Info("rejected: raise amount not specified", zap.Uint64("player", playerID))
			return false
		}
		totalBet := g.currentBet + *action.Amount
		// Debit and pot delta are both measured against the player's
		// current street commitment, computed before any table field moves.
		delta := totalBet - player.CurrentBet
		if player.Balance < delta {
			g.log.Info("rejected: not enough balance to raise",
				zap.Uint64("player", playerID),
				zap.Uint64("need", delta),
				zap.Uint64("have", player.Balance))
			return false
		}
		player.Balance -= delta
		player.CurrentBet = totalBet
		g.pot += delta
		g.currentBet = totalBet

	case ActionSmallBlind:
		if g.currentPlayerIndex != 0 {
			g.log.Info("rejected: only seat 0 posts the small blind", zap.Uint64("player", playerID))
			return false
		}
		if player.Balance < g.smallBlind {
			g.log.Info("rejected: not enough balance for small blind", zap.Uint64("player", playerID))
			return false
		}
		player.Balance -= g.smallBlind
		player.CurrentBet = g.smallBlind
		g.pot += g.smallBlind
		g.currentBet = g.smallBlind

	case ActionBigBlind:
		if g.currentPlayerIndex != 1 {
			g.log.Info("rejected: only seat 1 posts the big blind", zap.Uint64("player", playerID))
			return false
		}
		if player.Balance < g.bigBlind {
			g.log.Info("rejected: not enough balance for big blind", zap.Uint64("player", playerID))
			return false
		}
		player.Balance -= g.bigBlind
		player.CurrentBet = g.bigBlind
		g.pot += g.bigBlind
		g.currentBet = g.bigBlind

	default:
		g.log.Info("rejected: unknown action", zap.String("action", string(action.Type)))
		return false
	}

	g.advanceTurn()
	return true
}

func (g *PokerGame) advanceTurn() {
	g.currentPlayerIndex = (g.currentPlayerIndex + 1) % len(g.players)
	for g.players[g.currentPlayerIndex].HasFolded {
		g.currentPlayerIndex = (g.currentPlayerIndex + 1) % len(g.players)
	}
}

func (g *PokerGame) Pot() uint64 {
	return g.pot
}

func (g *PokerGame) CurrentBet() uint64 {
	return g.currentBet
}

func (g *PokerGame) CurrentPlayerIndex() int {
	return g.currentPlayerIndex
}

func (g *PokerGame) CurrentPlayerID() uint64 {
	return g.players[g.currentPlayerIndex].ID
}

func (g *PokerGame) Players() []Player {
	out := make([]Player, len(g.players))
	copy(out, g.players)
	return out
}

// ActiveCount reports players that have not folded.
func (g *PokerGame) ActiveCount() int {
	n := 0
	for _, p := range g.players {
		if !p.HasFolded {
			n++
		}
	}
	return n
}
