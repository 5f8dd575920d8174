package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// CommitPollInterval matches the fixed backoff used while waiting for a
	// submitted transaction to land.
	CommitPollInterval = 3 * time.Second
	// ConsumePause is the pause between consuming successive notes.
	ConsumePause = 5 * time.Second

	maxCommitPolls = 40
)

// Executor drives transactions through the sync/submit/await-commit cycle.
type Executor struct {
	Ledger Ledger
	Log    *zap.Logger

	// PollInterval and Pause default to the protocol constants when zero.
	PollInterval time.Duration
	Pause        time.Duration
}

func NewExecutor(l Ledger, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{Ledger: l, Log: log}
}

func (e *Executor) pollInterval() time.Duration {
	if e.PollInterval > 0 {
		return e.PollInterval
	}
	return CommitPollInterval
}

func (e *Executor) pause() time.Duration {
	if e.Pause > 0 {
		return e.Pause
	}
	return ConsumePause
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExecuteAndSync syncs, submits, then polls until the ledger commits the
// transaction. The retry is bounded; a transaction that never commits is
// surfaced to the caller, who keeps the originating payload and retries the
// step on a later tick.
func (e *Executor) ExecuteAndSync(ctx context.Context, tx Transaction) error {
	if err := e.Ledger.SyncState(ctx); err != nil {
		return fmt.Errorf("sync state: %w", err)
	}
	if err := e.Ledger.SubmitTransaction(ctx, tx); err != nil {
		return fmt.Errorf("submit tx %s: %w", tx.ID, err)
	}

	for i := 0; i < maxCommitPolls; i++ {
		if err := e.Ledger.SyncState(ctx); err != nil {
			return fmt.Errorf("sync state: %w", err)
		}
		committed, err := e.Ledger.IsCommitted(ctx, tx.ID)
		if err != nil {
			return fmt.Errorf("check commit %s: %w", tx.ID, err)
		}
		if committed {
			e.Log.Debug("transaction committed", zap.String("tx", tx.ID))
			return nil
		}
		if err := sleepCtx(ctx, e.pollInterval()); err != nil {
			return err
		}
	}
	return fmt.Errorf("tx %s not committed after %d polls", tx.ID, maxCommitPolls)
}

// ConsumeGameNotes consumes every note currently addressed to the account,
// one transaction per note, pausing between consumptions. It returns the
// consumed notes so the caller can inspect what arrived.
func (e *Executor) ConsumeGameNotes(ctx context.Context, accountID uint64) ([]NoteEnvelope, error) {
	if err := e.Ledger.SyncState(ctx); err != nil {
		return nil, fmt.Errorf("sync state: %w", err)
	}
	notes, err := e.Ledger.GetConsumableNotes(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list consumable notes: %w", err)
	}
	e.Log.Debug("consumable notes",
		zap.Uint64("account", accountID),
		zap.Int("count", len(notes)))

	consumed := make([]NoteEnvelope, 0, len(notes))
	for i, note := range notes {
		tx := ConsumeTransaction(accountID, note.ID)
		if err := e.ExecuteAndSync(ctx, tx); err != nil {
			return consumed, fmt.Errorf("consume note %s: %w", note.ID, err)
		}
		consumed = append(consumed, note)
		if i < len(notes)-1 {
			if err := sleepCtx(ctx, e.pause()); err != nil {
				return consumed, err
			}
		}
	}
	return consumed, nil
}
