package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/protocol"
)

// MemLedger is an in-process ledger. Notes are committed on submission and
// their script semantics run when the addressee consumes them, which is
// enough to drive the full protocol in tests and local tables.
type MemLedger struct {
	mu        sync.Mutex
	accounts  map[uint64]*memAccount
	notes     map[uint64][]NoteEnvelope
	committed map[string]bool
}

type memAccount struct {
	id    uint64
	slots map[uint8]cards.Slot
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		accounts:  map[uint64]*memAccount{},
		notes:     map[uint64][]NoteEnvelope{},
		committed: map[string]bool{},
	}
}

// CreatePlayerAccount registers a player account with an empty protocol
// state (counter idle, no requester, empty temp cards).
func (m *MemLedger) CreatePlayerAccount(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; ok {
		return fmt.Errorf("account %d already exists", id)
	}
	m.accounts[id] = &memAccount{id: id, slots: map[uint8]cards.Slot{}}
	return nil
}

// CreateGameAccount registers the table: plaintext deck in slots 1..52,
// table counters, and one stat block per player.
func (m *MemLedger) CreateGameAccount(id uint64, playerIDs []uint64, smallBlind, buyIn uint64) error {
	if len(playerIDs) != cards.NoOfPlayers {
		return fmt.Errorf("game account needs %d players, got %d", cards.NoOfPlayers, len(playerIDs))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; ok {
		return fmt.Errorf("account %d already exists", id)
	}

	acct := &memAccount{id: id, slots: map[uint8]cards.Slot{}}
	for _, c := range cards.Deck() {
		acct.slots[c.Index()] = c.ToSlot()
	}
	acct.slots[cards.HighestBetSlot] = cards.Slot{smallBlind, 0, 0, 0}
	acct.slots[cards.CurrentTurnIndexSlot] = cards.Slot{cards.FirstPlayerIndex, 0, 0, 0}
	acct.slots[cards.CurrentPhaseSlot] = cards.Slot{cards.PhasePreflop, 0, 0, 0}
	for i, pid := range playerIDs {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return err
		}
		acct.slots[base] = cards.Slot{pid, 0, 0, 0}
		acct.slots[base+cards.PlayerBalanceOffset] = cards.Slot{buyIn, 0, 0, 0}
	}
	m.accounts[id] = acct
	return nil
}

// SetSlot seeds storage directly; test and bootstrap use only.
func (m *MemLedger) SetSlot(accountID uint64, index uint8, value cards.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("unknown account %d", accountID)
	}
	acct.slots[index] = value
	return nil
}

func (m *MemLedger) SyncState(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemLedger) GetAccount(id uint64) (AccountSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return AccountSnapshot{}, fmt.Errorf("unknown account %d", id)
	}
	return NewAccountSnapshot(id, acct.slots), nil
}

func (m *MemLedger) GetConsumableNotes(ctx context.Context, accountID uint64) ([]NoteEnvelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return nil, fmt.Errorf("unknown account %d", accountID)
	}
	pending := m.notes[accountID]
	out := make([]NoteEnvelope, len(pending))
	copy(out, pending)
	return out, nil
}

func (m *MemLedger) SubmitTransaction(ctx context.Context, tx Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.Note != nil {
		if _, ok := m.accounts[tx.Note.Target]; !ok {
			return fmt.Errorf("note target %d does not exist", tx.Note.Target)
		}
		m.notes[tx.Note.Target] = append(m.notes[tx.Note.Target], *tx.Note)
	}

	for _, noteID := range tx.ConsumeNoteIDs {
		if err := m.consumeNote(tx.Sender, noteID); err != nil {
			return err
		}
	}

	m.committed[tx.ID] = true
	return nil
}

func (m *MemLedger) IsCommitted(ctx context.Context, txID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed[txID], nil
}

func (m *MemLedger) consumeNote(accountID uint64, noteID string) error {
	acct, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("unknown account %d", accountID)
	}
	pending := m.notes[accountID]
	for i, note := range pending {
		if note.ID != noteID {
			continue
		}
		if err := m.applyNote(acct, note); err != nil {
			return fmt.Errorf("apply note %s (%s): %w", note.ID, note.Type, err)
		}
		m.notes[accountID] = append(pending[:i:i], pending[i+1:]...)
		return nil
	}
	return fmt.Errorf("note %s not consumable by %d", noteID, accountID)
}

// applyNote runs the note script against the consumer's storage. This is
// the stand-in for the on-ledger contract layer.
func (m *MemLedger) applyNote(acct *memAccount, env NoteEnvelope) error {
	switch env.Type {
	case NoteSendCard:
		v, err := DecodePayload[SendCardNote](env, NoteSendCard)
		if err != nil {
			return err
		}
		acct.slots[cards.PlayerCard1Slot] = maskedSlot(v.Cards[0])
		acct.slots[cards.PlayerCard2Slot] = maskedSlot(v.Cards[1])
		// Receiving hole cards opens the hole-card reveal relay.
		counter, err := protocol.EncodeCounter(protocol.Step{
			Kind:    protocol.KindRelay,
			Purpose: protocol.PurposeHoleCards,
		})
		if err != nil {
			return err
		}
		acct.slots[cards.PlayerDataSlot] = cards.Slot{counter, 0, 0, 0}

	case NoteGenKey:
		if _, err := DecodePayload[GenKeyNote](env, NoteGenKey); err != nil {
			return err
		}
		acct.slots[cards.SecretKeySlot] = cards.Slot{8, 0, 0, 0}

	case NoteShuffleCard:
		v, err := DecodePayload[ShuffleCardNote](env, NoteShuffleCard)
		if err != nil {
			return err
		}
		writeDeck(acct, v.Deck)
		acct.slots[cards.PlayerDataSlot] = cards.Slot(v.PlayerData)

	case NoteRemask:
		v, err := DecodePayload[RemaskNote](env, NoteRemask)
		if err != nil {
			return err
		}
		writeDeck(acct, v.Deck)
		acct.slots[cards.PlayerDataSlot] = cards.Slot(v.PlayerData)

	case NoteSetCards:
		v, err := DecodePayload[SetCardsNote](env, NoteSetCards)
		if err != nil {
			return err
		}
		writeDeck(acct, v.Deck)

	case NoteInterUnmask:
		v, err := DecodePayload[InterUnmaskNote](env, NoteInterUnmask)
		if err != nil {
			return err
		}
		acct.slots[cards.RequesterSlot] = cards.Slot{v.RequesterID, 0, 0, 0}
		// A self-addressed request seeds a community reveal: the temp
		// slots change so the detector tells it apart from answering
		// someone else's relay.
		if v.RequesterID == acct.id {
			for i, c := range v.Cards {
				acct.slots[cards.TempCardSlot+uint8(i)] = maskedSlot(c)
			}
			acct.slots[cards.PlayerDataSlot] = cards.Slot(v.PlayerData)
		}

	case NoteSendUnmaskedCards:
		v, err := DecodePayload[SendUnmaskedCardsNote](env, NoteSendUnmaskedCards)
		if err != nil {
			return err
		}
		for i, c := range v.Cards {
			acct.slots[cards.TempCardSlot+uint8(i)] = maskedSlot(c)
		}
		acct.slots[cards.PlayerDataSlot] = cards.Slot(v.PlayerData)

	case NoteUnmask:
		v, err := DecodePayload[UnmaskNote](env, NoteUnmask)
		if err != nil {
			return err
		}
		return applyCommunityReveal(acct, v)

	case NoteSendCommunityCard:
		v, err := DecodePayload[SendCommunityCardsNote](env, NoteSendCommunityCard)
		if err != nil {
			return err
		}
		return applyCommunityReveal(acct, UnmaskNote{Cards: v.Cards, CardSlot: cards.FlopIndex})

	case NoteSetHand:
		v, err := DecodePayload[SetHandNote](env, NoteSetHand)
		if err != nil {
			return err
		}
		base, err := cards.PlayerStatBase(int(v.PlayerIndex))
		if err != nil {
			return err
		}
		acct.slots[base+cards.HandOffset] = cards.Slot{v.HoleCard1, v.HoleCard2, v.HandRank, 0}

	case NotePlayBet:
		v, err := DecodePayload[PlayBetNote](env, NotePlayBet)
		if err != nil {
			return err
		}
		return m.applyBet(acct, env.Sender, v.Amount)

	case NotePlayRaise:
		v, err := DecodePayload[PlayRaiseNote](env, NotePlayRaise)
		if err != nil {
			return err
		}
		return m.applyRaise(acct, env.Sender, v.Amount)

	case NotePlayCall:
		if _, err := DecodePayload[PlayCallNote](env, NotePlayCall); err != nil {
			return err
		}
		return m.applyCall(acct, env.Sender)

	case NotePlayCheck:
		if _, err := DecodePayload[PlayCheckNote](env, NotePlayCheck); err != nil {
			return err
		}
		counter := acct.slots[cards.CheckCounterSlot]
		counter[0]++
		acct.slots[cards.CheckCounterSlot] = counter
		return m.advanceTurn(acct)

	case NotePlayFold:
		if _, err := DecodePayload[PlayFoldNote](env, NotePlayFold); err != nil {
			return err
		}
		base, err := m.statBaseOf(acct, env.Sender)
		if err != nil {
			return err
		}
		acct.slots[base+cards.IsFoldOffset] = cards.Slot{1, 0, 0, 0}
		return m.advanceTurn(acct)

	default:
		return fmt.Errorf("unknown note type %q", env.Type)
	}
	return nil
}

func maskedSlot(ct azecrypto.CipherCard) cards.Slot {
	d1, d2 := ct.Digests()
	return cards.MaskedSlot(d1, d2)
}

func writeDeck(acct *memAccount, deck [cards.DeckSize]azecrypto.CipherCard) {
	for i, ct := range deck {
		acct.slots[uint8(cards.DeckSlotFirst+i)] = maskedSlot(ct)
	}
}

func applyCommunityReveal(acct *memAccount, v UnmaskNote) error {
	var count int
	var phase uint64
	switch v.CardSlot {
	case cards.FlopIndex:
		count, phase = cards.FlopNoOfCards, cards.PhaseFlop
	case cards.TurnIndex:
		count, phase = 1, cards.PhaseTurn
	case cards.RiverIndex:
		count, phase = 1, cards.PhaseRiver
	case cards.PlayerCard1Slot:
		// Self-addressed reveal landing the plaintext hole cards.
		acct.slots[cards.PlayerCard1Slot] = v.Cards[0]
		acct.slots[cards.PlayerCard2Slot] = v.Cards[1]
		return nil
	default:
		return fmt.Errorf("card slot %d is not a reveal window", v.CardSlot)
	}
	for i := 0; i < count; i++ {
		acct.slots[v.CardSlot+uint8(i)] = v.Cards[i]
	}
	acct.slots[cards.CurrentPhaseSlot] = cards.Slot{phase, 0, 0, 0}

	// A new street: clear the round commitments, keep the pot.
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return err
		}
		acct.slots[base+cards.PlayerBetOffset] = cards.Slot{}
	}
	acct.slots[cards.HighestBetSlot] = cards.Slot{}
	acct.slots[cards.CheckCounterSlot] = cards.Slot{}
	acct.slots[cards.CurrentTurnIndexSlot] = cards.Slot{cards.FirstPlayerIndex, 0, 0, 0}
	return nil
}

func (m *MemLedger) statBaseOf(acct *memAccount, playerID uint64) (uint8, error) {
	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return 0, err
		}
		if acct.slots[base][0] == playerID {
			return base, nil
		}
	}
	return 0, fmt.Errorf("player %d not seated at table %d", playerID, acct.id)
}

func (m *MemLedger) debit(acct *memAccount, base uint8, amount uint64) error {
	balance := acct.slots[base+cards.PlayerBalanceOffset]
	if balance[0] < amount {
		return fmt.Errorf("insufficient funds: have=%d need=%d", balance[0], amount)
	}
	balance[0] -= amount
	acct.slots[base+cards.PlayerBalanceOffset] = balance

	pot := acct.slots[cards.PotValueSlot]
	pot[0] += amount
	acct.slots[cards.PotValueSlot] = pot
	return nil
}

// applyBet covers blinds and opening bets: the amount becomes the player's
// street commitment outright.
func (m *MemLedger) applyBet(acct *memAccount, playerID, amount uint64) error {
	base, err := m.statBaseOf(acct, playerID)
	if err != nil {
		return err
	}
	if err := m.debit(acct, base, amount); err != nil {
		return err
	}
	acct.slots[base+cards.PlayerBetOffset] = cards.Slot{amount, 0, 0, 0}

	highest := acct.slots[cards.HighestBetSlot]
	if amount > highest[0] {
		acct.slots[cards.HighestBetSlot] = cards.Slot{amount, 0, 0, 0}
	}
	return m.advanceTurn(acct)
}

func (m *MemLedger) applyRaise(acct *memAccount, playerID, amount uint64) error {
	base, err := m.statBaseOf(acct, playerID)
	if err != nil {
		return err
	}
	highest := acct.slots[cards.HighestBetSlot][0]
	total := highest + amount
	delta := total - acct.slots[base+cards.PlayerBetOffset][0]
	if err := m.debit(acct, base, delta); err != nil {
		return err
	}
	acct.slots[base+cards.PlayerBetOffset] = cards.Slot{total, 0, 0, 0}
	acct.slots[cards.HighestBetSlot] = cards.Slot{total, 0, 0, 0}
	acct.slots[cards.RaiserIndexSlot] = cards.Slot{uint64(base), 0, 0, 0}
	return m.advanceTurn(acct)
}

func (m *MemLedger) applyCall(acct *memAccount, playerID uint64) error {
	base, err := m.statBaseOf(acct, playerID)
	if err != nil {
		return err
	}
	highest := acct.slots[cards.HighestBetSlot][0]
	delta := highest - acct.slots[base+cards.PlayerBetOffset][0]
	if err := m.debit(acct, base, delta); err != nil {
		return err
	}
	acct.slots[base+cards.PlayerBetOffset] = cards.Slot{highest, 0, 0, 0}
	return m.advanceTurn(acct)
}

func (m *MemLedger) advanceTurn(acct *memAccount) error {
	cur := acct.slots[cards.CurrentTurnIndexSlot][0]
	ordinal := int(cur-cards.FirstPlayerIndex) / cards.PlayerStatsSlots
	for i := 0; i < cards.NoOfPlayers; i++ {
		ordinal = (ordinal + 1) % cards.NoOfPlayers
		base, err := cards.PlayerStatBase(ordinal)
		if err != nil {
			return err
		}
		if acct.slots[base+cards.IsFoldOffset][0] == 0 {
			acct.slots[cards.CurrentTurnIndexSlot] = cards.Slot{uint64(base), 0, 0, 0}
			return nil
		}
	}
	return fmt.Errorf("no active players at table %d", acct.id)
}
