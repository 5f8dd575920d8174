package sequencer

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/protocol"
)

// Dealer runs the table side of the protocol: it masks the fresh deck,
// opens the shuffle chain, deals hole cards and triggers community reveals.
// It never holds a decryption key, so the deck it keeps is opaque to it.
type Dealer struct {
	gameID  uint64
	players [cards.NoOfPlayers]uint64
	exec    *ledger.Executor
	log     *zap.Logger

	mu    sync.Mutex
	agg   azecrypto.Point
	deck  [cards.DeckSize]azecrypto.CipherCard
	ready bool
}

func NewDealer(gameID uint64, players [cards.NoOfPlayers]uint64, exec *ledger.Executor, log *zap.Logger) *Dealer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dealer{gameID: gameID, players: players, exec: exec, log: log}
}

func (d *Dealer) SetAggregateKey(agg azecrypto.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agg = agg
}

// RequestKeys asks every seat to generate its masking key pair.
func (d *Dealer) RequestKeys(ctx context.Context) error {
	for _, pid := range d.players {
		note, err := ledger.NewGenKeyNote(d.gameID, pid)
		if err != nil {
			return err
		}
		if err := d.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note)); err != nil {
			return fmt.Errorf("request key from %d: %w", pid, err)
		}
	}
	return nil
}

// StartShuffle masks the canonical deck under the aggregate key and hands
// it to the first shuffle hop with the remaining hop order embedded.
func (d *Dealer) StartShuffle(ctx context.Context) error {
	d.mu.Lock()
	agg := d.agg
	d.mu.Unlock()

	var deck [cards.DeckSize]azecrypto.CipherCard
	for i := range deck {
		pt, err := azecrypto.CardPoint(uint8(i + 1))
		if err != nil {
			return err
		}
		r, err := azecrypto.RandomScalar()
		if err != nil {
			return err
		}
		deck[i], err = azecrypto.Mask(agg, pt, r)
		if err != nil {
			return fmt.Errorf("mask card %d: %w", i+1, err)
		}
	}

	playerData := [4]uint64{1, d.players[1], d.players[2], d.players[3]}
	d.log.Info("dealing masked deck to first shuffle hop",
		zap.Uint64("game", d.gameID),
		zap.Uint64("first_hop", d.players[0]))
	note, err := ledger.NewShuffleCardNote(d.gameID, d.players[0], deck, playerData)
	if err != nil {
		return err
	}
	return d.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// HandleSetCards stores the fully remasked deck returned by the last hop.
func (d *Dealer) HandleSetCards(v ledger.SetCardsNote) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deck = v.Deck
	d.ready = true
}

func (d *Dealer) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// DealHoleCards sends each seat its two masked cards off the top of the
// shuffled deck.
func (d *Dealer) DealHoleCards(ctx context.Context) error {
	d.mu.Lock()
	deck, ready := d.deck, d.ready
	d.mu.Unlock()
	if !ready {
		return fmt.Errorf("deck not shuffled yet")
	}

	for seat, pid := range d.players {
		hole := [2]azecrypto.CipherCard{deck[2*seat], deck[2*seat+1]}
		note, err := ledger.NewSendCardNote(d.gameID, pid, hole)
		if err != nil {
			return err
		}
		if err := d.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note)); err != nil {
			return fmt.Errorf("deal to seat %d: %w", seat, err)
		}
	}
	return nil
}

// RequestReveal asks the reveal coordinator (seat 0) to run the
// inter-unmask relay for one community window.
func (d *Dealer) RequestReveal(ctx context.Context, purpose protocol.Purpose) error {
	d.mu.Lock()
	deck, ready := d.deck, d.ready
	d.mu.Unlock()
	if !ready {
		return fmt.Errorf("deck not shuffled yet")
	}

	window, count, err := protocol.RevealWindow(purpose, cards.FlopIndex)
	if err != nil {
		return err
	}
	cts := [3]azecrypto.CipherCard{azecrypto.ZeroCipher(), azecrypto.ZeroCipher(), azecrypto.ZeroCipher()}
	for i := 0; i < count; i++ {
		cts[i] = deck[int(window)-1+i]
	}

	trigger, err := protocol.EncodeCounter(protocol.Step{
		Kind: protocol.KindRelay, Purpose: purpose,
	})
	if err != nil {
		return err
	}
	requester := d.players[0]
	d.log.Info("triggering community reveal",
		zap.Uint64("game", d.gameID),
		zap.Stringer("purpose", purpose),
		zap.Uint64("requester", requester))
	note, err := ledger.NewInterUnmaskNote(d.gameID, requester, cts, requester, [4]uint64{trigger, 0, 0, 0})
	if err != nil {
		return err
	}
	return d.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// shuffleDeck permutes the deck in place with a uniform shuffle.
func shuffleDeck(deck *[cards.DeckSize]azecrypto.CipherCard) error {
	for i := len(deck) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		deck[i], deck[j] = deck[j], deck[i]
	}
	return nil
}
