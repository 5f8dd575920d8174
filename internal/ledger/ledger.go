// Package ledger is the boundary to the distributed ledger. The game logic
// only ever sees the Ledger interface: signed transactions go in, account
// storage reads and consumable notes come out.
package ledger

import (
	"context"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

// AccountSnapshot is a point-in-time read of one account's storage.
type AccountSnapshot struct {
	ID    uint64
	slots map[uint8]cards.Slot
}

func NewAccountSnapshot(id uint64, slots map[uint8]cards.Slot) AccountSnapshot {
	copied := make(map[uint8]cards.Slot, len(slots))
	for k, v := range slots {
		copied[k] = v
	}
	return AccountSnapshot{ID: id, slots: copied}
}

// Slot returns the tuple at index; unset slots read as zero.
func (a AccountSnapshot) Slot(index uint8) cards.Slot {
	return a.slots[index]
}

// Transaction is either a note emission (Note set) or a note consumption
// (ConsumeNoteIDs set), signed by Sender.
type Transaction struct {
	ID             string
	Sender         uint64
	Note           *NoteEnvelope
	ConsumeNoteIDs []string
}

type Ledger interface {
	// SyncState refreshes the local view of committed ledger state.
	SyncState(ctx context.Context) error

	GetAccount(id uint64) (AccountSnapshot, error)

	// GetConsumableNotes lists committed notes addressed to the account
	// that it has not consumed yet.
	GetConsumableNotes(ctx context.Context, accountID uint64) ([]NoteEnvelope, error)

	SubmitTransaction(ctx context.Context, tx Transaction) error

	// IsCommitted reports whether a previously submitted transaction has
	// been included by the ledger.
	IsCommitted(ctx context.Context, txID string) (bool, error)
}
