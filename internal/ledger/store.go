package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

const (
	lockRetries = 200
	lockBackoff = 50 * time.Millisecond
)

// FileLedger persists the ledger state to a single JSON file so the CLI
// processes of the four players and the table can share one local table.
// Writers take an advisory lock file; every mutation reloads the state,
// applies the transition in memory and writes the result back atomically.
type FileLedger struct {
	path string
	mu   sync.Mutex

	// LockRetries and LockBackoff default to the package constants when zero.
	LockRetries int
	LockBackoff time.Duration
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// storedLedger is the normalized on-disk shape. Map keys serialize as
// strings, slots as 4-element arrays; encoding/json sorts the keys so the
// file is stable across rewrites.
type storedLedger struct {
	Accounts  map[uint64]map[uint8]cards.Slot `json:"accounts"`
	Notes     map[uint64][]NoteEnvelope       `json:"notes"`
	Committed []string                        `json:"committed"`
}

func dumpLedger(m *MemLedger) storedLedger {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := storedLedger{
		Accounts: map[uint64]map[uint8]cards.Slot{},
		Notes:    map[uint64][]NoteEnvelope{},
	}
	for id, acct := range m.accounts {
		slots := make(map[uint8]cards.Slot, len(acct.slots))
		for k, v := range acct.slots {
			slots[k] = v
		}
		st.Accounts[id] = slots
	}
	for id, notes := range m.notes {
		if len(notes) == 0 {
			continue
		}
		st.Notes[id] = append([]NoteEnvelope(nil), notes...)
	}
	for txID := range m.committed {
		st.Committed = append(st.Committed, txID)
	}
	sort.Strings(st.Committed)
	return st
}

func buildLedger(st storedLedger) *MemLedger {
	m := NewMemLedger()
	for id, slots := range st.Accounts {
		acct := &memAccount{id: id, slots: map[uint8]cards.Slot{}}
		for k, v := range slots {
			acct.slots[k] = v
		}
		m.accounts[id] = acct
	}
	for id, notes := range st.Notes {
		m.notes[id] = append([]NoteEnvelope(nil), notes...)
	}
	for _, txID := range st.Committed {
		m.committed[txID] = true
	}
	return m
}

func (f *FileLedger) load() (*MemLedger, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMemLedger(), nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	var st storedLedger
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode ledger file %s: %w", f.path, err)
	}
	return buildLedger(st), nil
}

func (f *FileLedger) save(m *MemLedger) error {
	b, err := json.MarshalIndent(dumpLedger(m), "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".aze-ledger-*")
	if err != nil {
		return fmt.Errorf("stage ledger file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (f *FileLedger) lockPath() string {
	return f.path + ".lock"
}

func (f *FileLedger) acquireLock() error {
	retries, backoff := f.LockRetries, f.LockBackoff
	if retries <= 0 {
		retries = lockRetries
	}
	if backoff <= 0 {
		backoff = lockBackoff
	}
	for i := 0; i < retries; i++ {
		fd, err := os.OpenFile(f.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fd.Close()
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("acquire ledger lock: %w", err)
		}
		time.Sleep(backoff)
	}
	return fmt.Errorf("ledger file %s is locked by another process", f.path)
}

func (f *FileLedger) releaseLock() {
	os.Remove(f.lockPath())
}

// update applies one mutation under the advisory lock: reload, run, save.
func (f *FileLedger) update(fn func(*MemLedger) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquireLock(); err != nil {
		return err
	}
	defer f.releaseLock()

	m, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return f.save(m)
}

// view runs a read against the latest saved state. The rename on save is
// atomic, so an unlocked read sees either the old or the new state.
func (f *FileLedger) view(fn func(*MemLedger) error) error {
	m, err := f.load()
	if err != nil {
		return err
	}
	return fn(m)
}

func (f *FileLedger) CreatePlayerAccount(id uint64) error {
	return f.update(func(m *MemLedger) error {
		return m.CreatePlayerAccount(id)
	})
}

func (f *FileLedger) CreateGameAccount(id uint64, playerIDs []uint64, smallBlind, buyIn uint64) error {
	return f.update(func(m *MemLedger) error {
		return m.CreateGameAccount(id, playerIDs, smallBlind, buyIn)
	})
}

func (f *FileLedger) SetSlot(accountID uint64, index uint8, value cards.Slot) error {
	return f.update(func(m *MemLedger) error {
		return m.SetSlot(accountID, index, value)
	})
}

func (f *FileLedger) SyncState(ctx context.Context) error {
	return ctx.Err()
}

func (f *FileLedger) GetAccount(id uint64) (AccountSnapshot, error) {
	var snap AccountSnapshot
	err := f.view(func(m *MemLedger) error {
		var err error
		snap, err = m.GetAccount(id)
		return err
	})
	return snap, err
}

func (f *FileLedger) GetConsumableNotes(ctx context.Context, accountID uint64) ([]NoteEnvelope, error) {
	var notes []NoteEnvelope
	err := f.view(func(m *MemLedger) error {
		var err error
		notes, err = m.GetConsumableNotes(ctx, accountID)
		return err
	})
	return notes, err
}

func (f *FileLedger) SubmitTransaction(ctx context.Context, tx Transaction) error {
	return f.update(func(m *MemLedger) error {
		return m.SubmitTransaction(ctx, tx)
	})
}

func (f *FileLedger) IsCommitted(ctx context.Context, txID string) (bool, error) {
	var committed bool
	err := f.view(func(m *MemLedger) error {
		var err error
		committed, err = m.IsCommitted(ctx, txID)
		return err
	})
	return committed, err
}
