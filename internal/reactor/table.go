package reactor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/protocol"
	"github.com/mFragaBA/aze-cli/internal/sequencer"
)

// Table drives the game account: it consumes the notes addressed to the
// table (play actions, reveals, the returned deck), deals hole cards once
// the shuffle chain completes and triggers the next community reveal when a
// betting round closes.
type Table struct {
	gameID uint64
	ledger ledger.Ledger
	exec   *ledger.Executor
	dealer *sequencer.Dealer
	log    *zap.Logger

	// Interval defaults to DefaultPollInterval when zero.
	Interval time.Duration

	mu        sync.Mutex
	requested map[protocol.Purpose]bool
}

func NewTable(gameID uint64, l ledger.Ledger, exec *ledger.Executor, dealer *sequencer.Dealer, log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{
		gameID:    gameID,
		ledger:    l,
		exec:      exec,
		dealer:    dealer,
		log:       log,
		requested: map[protocol.Purpose]bool{},
	}
}

func (t *Table) interval() time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return DefaultPollInterval
}

// Run polls until the context is cancelled, mirroring Reactor.Run.
func (t *Table) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval())
	defer ticker.Stop()

	for {
		if err := t.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.log.Warn("table tick failed",
				zap.Uint64("game", t.gameID),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick consumes the table's notes and advances the deal where the observed
// state allows it.
func (t *Table) Tick(ctx context.Context) error {
	consumed, err := t.exec.ConsumeGameNotes(ctx, t.gameID)
	if err != nil {
		return fmt.Errorf("consume table notes: %w", err)
	}
	for _, note := range consumed {
		if note.Type != ledger.NoteSetCards {
			continue
		}
		v, err := ledger.DecodePayload[ledger.SetCardsNote](note, ledger.NoteSetCards)
		if err != nil {
			return err
		}
		t.dealer.HandleSetCards(v)
		t.log.Info("shuffled deck returned to table", zap.Uint64("game", t.gameID))
	}

	acct, err := t.ledger.GetAccount(t.gameID)
	if err != nil {
		return fmt.Errorf("read table account: %w", err)
	}

	dealt, err := t.holeCardsDealt(ctx, acct)
	if err != nil {
		return fmt.Errorf("check deal state: %w", err)
	}
	if !dealt {
		if !t.dealer.Ready() {
			return nil
		}
		if err := t.dealer.DealHoleCards(ctx); err != nil {
			return fmt.Errorf("deal hole cards: %w", err)
		}
		return nil
	}
	purpose, ok := nextReveal(acct.Slot(cards.CurrentPhaseSlot)[0])
	if !ok || t.alreadyRequested(purpose) {
		return nil
	}
	if !roundComplete(acct) {
		return nil
	}

	t.log.Info("betting round closed, requesting reveal",
		zap.Uint64("game", t.gameID),
		zap.Stringer("purpose", purpose))
	if err := t.dealer.RequestReveal(ctx, purpose); err != nil {
		return fmt.Errorf("request %v reveal: %w", purpose, err)
	}
	t.markRequested(purpose)
	return nil
}

// holeCardsDealt derives the deal state from storage rather than a local
// latch, so a restarted table process never deals the same hand twice. A
// seat counts as served once its card slots carry commitments or a deal
// note is still waiting for it.
func (t *Table) holeCardsDealt(ctx context.Context, acct ledger.AccountSnapshot) (bool, error) {
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return false, err
		}
		pid := acct.Slot(base)[0]
		seat, err := t.ledger.GetAccount(pid)
		if err != nil {
			return false, fmt.Errorf("read seat %d account: %w", i, err)
		}
		if seat.Slot(cards.PlayerCard1Slot) != (cards.Slot{}) {
			continue
		}
		notes, err := t.ledger.GetConsumableNotes(ctx, pid)
		if err != nil {
			return false, err
		}
		served := false
		for _, n := range notes {
			if n.Type == ledger.NoteSendCard {
				served = true
				break
			}
		}
		if !served {
			return false, nil
		}
	}
	return true, nil
}

func (t *Table) alreadyRequested(p protocol.Purpose) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requested[p]
}

func (t *Table) markRequested(p protocol.Purpose) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requested[p] = true
}

// nextReveal maps the table phase to the community reveal that follows it.
func nextReveal(phase uint64) (protocol.Purpose, bool) {
	switch phase {
	case cards.PhasePreflop:
		return protocol.PurposeFlop, true
	case cards.PhaseFlop:
		return protocol.PurposeTurn, true
	case cards.PhaseTurn:
		return protocol.PurposeRiver, true
	}
	return protocol.PurposeNone, false
}

// roundComplete reports whether the current betting round has closed: every
// active seat matches the highest bet, or the street was checked around.
func roundComplete(acct ledger.AccountSnapshot) bool {
	highest := acct.Slot(cards.HighestBetSlot)[0]
	checks := acct.Slot(cards.CheckCounterSlot)[0]

	active := 0
	matched := true
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return false
		}
		if acct.Slot(base+cards.IsFoldOffset)[0] != 0 {
			continue
		}
		active++
		if acct.Slot(base+cards.PlayerBetOffset)[0] != highest {
			matched = false
		}
	}
	if active < 2 {
		return false
	}
	if highest > 0 && matched {
		return true
	}
	return checks >= uint64(active)
}
