// Package reactor is the event loop replacing push notifications: it polls
// one account's storage around note consumption and dispatches the detected
// transition to the sequencing protocol.
package reactor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/protocol"
	"github.com/mFragaBA/aze-cli/internal/sequencer"
)

// DefaultPollInterval is the sleep between detector ticks.
const DefaultPollInterval = 5 * time.Second

// Reactor runs the poll/consume/diff/dispatch cycle for one player account.
// Exactly one reactor may drive an account; the protocol does not tolerate
// two loops consuming the same notes.
type Reactor struct {
	accountID uint64
	ledger    ledger.Ledger
	exec      *ledger.Executor
	player    *sequencer.Player
	log       *zap.Logger

	// Interval defaults to DefaultPollInterval when zero.
	Interval time.Duration

	// pending holds consumed notes whose dispatch has not succeeded yet.
	// Consumption removes a note from storage before its follow-up commits,
	// so the payload must be kept here until the dispatch lands.
	pending []ledger.NoteEnvelope
}

func New(accountID uint64, l ledger.Ledger, exec *ledger.Executor, player *sequencer.Player, log *zap.Logger) *Reactor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reactor{
		accountID: accountID,
		ledger:    l,
		exec:      exec,
		player:    player,
		log:       log,
	}
}

func (r *Reactor) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return DefaultPollInterval
}

// Run polls until the context is cancelled. Tick failures are logged and
// retried on the next tick; the loop itself never panics.
func (r *Reactor) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()

	for {
		if err := r.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn("reactor tick failed",
				zap.Uint64("account", r.accountID),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one poll round: snapshot, consume, snapshot, diff, dispatch.
// Notes left over from a failed dispatch are retried first; their payloads
// no longer exist in storage, only here.
func (r *Reactor) Tick(ctx context.Context) error {
	if err := r.flushPending(ctx); err != nil {
		return err
	}

	acct, err := r.ledger.GetAccount(r.accountID)
	if err != nil {
		return fmt.Errorf("read account: %w", err)
	}
	before := protocol.TakeSnapshot(acct)

	consumed, err := r.exec.ConsumeGameNotes(ctx, r.accountID)
	if err != nil {
		// Whatever was consumed before the failure is already gone from
		// storage; queue it so the dispatch is not lost with it.
		r.pending = append(r.pending, consumed...)
		return fmt.Errorf("consume notes: %w", err)
	}
	if len(consumed) == 0 {
		return nil
	}

	acct, err = r.ledger.GetAccount(r.accountID)
	if err != nil {
		return fmt.Errorf("read account: %w", err)
	}
	after := protocol.TakeSnapshot(acct)

	tr, err := protocol.DetectTransition(before, after)
	if err != nil {
		return fmt.Errorf("detect transition: %w", err)
	}
	r.log.Debug("transition detected",
		zap.Uint64("account", r.accountID),
		zap.Stringer("kind", tr.Kind),
		zap.Uint64("counter", after.ActionType))
	if tr.Kind == protocol.TransitionNone {
		return nil
	}

	// One consumption round can interleave several relays (a share request
	// from one peer next to a response for this seat's own reveal), so
	// every consumed note is dispatched in arrival order; the transition
	// classification above gates the round and enforces monotonicity.
	r.pending = append(r.pending, consumed...)
	return r.flushPending(ctx)
}

// flushPending dispatches queued notes in arrival order. A note is dropped
// from the queue only once its dispatch succeeds; on failure it stays put
// and the next tick retries from it.
func (r *Reactor) flushPending(ctx context.Context) error {
	for len(r.pending) > 0 {
		note := r.pending[0]
		if err := r.dispatchNote(ctx, note); err != nil {
			return fmt.Errorf("dispatch %s note %s: %w", note.Type, note.ID, err)
		}
		r.pending = r.pending[1:]
	}
	return nil
}

func (r *Reactor) dispatchNote(ctx context.Context, note ledger.NoteEnvelope) error {
	switch note.Type {
	case ledger.NoteShuffleCard:
		v, err := ledger.DecodePayload[ledger.ShuffleCardNote](note, ledger.NoteShuffleCard)
		if err != nil {
			return err
		}
		return r.player.HandleShuffle(ctx, v.Deck, v.PlayerData)

	case ledger.NoteRemask:
		v, err := ledger.DecodePayload[ledger.RemaskNote](note, ledger.NoteRemask)
		if err != nil {
			return err
		}
		return r.player.HandleShuffle(ctx, v.Deck, v.PlayerData)

	case ledger.NoteSendCard:
		v, err := ledger.DecodePayload[ledger.SendCardNote](note, ledger.NoteSendCard)
		if err != nil {
			return err
		}
		return r.player.StartHoleRelay(ctx, v.Cards)

	case ledger.NoteInterUnmask:
		v, err := ledger.DecodePayload[ledger.InterUnmaskNote](note, ledger.NoteInterUnmask)
		if err != nil {
			return err
		}
		if v.RequesterID == r.accountID {
			return r.player.StartCommunityRelay(ctx, v)
		}
		return r.player.AnswerRelay(ctx, v)

	case ledger.NoteSendUnmaskedCards:
		v, err := ledger.DecodePayload[ledger.SendUnmaskedCardsNote](note, ledger.NoteSendUnmaskedCards)
		if err != nil {
			return err
		}
		step, err := protocol.DecodeCounter(v.PlayerData[0])
		if err != nil {
			return err
		}
		switch step.Kind {
		case protocol.KindRelay:
			return r.player.HandleRelayResponse(ctx, v, step)
		case protocol.KindFinalUnmask:
			return r.player.HandleFinalUnmask(ctx, v, step.Purpose)
		}
		return fmt.Errorf("share response carries counter %d (%v)", v.PlayerData[0], step)
	}

	// GenKey and self-addressed unmask notes need no follow-up.
	return nil
}
