package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
)

// Note types. Each names the on-ledger script the target runs when it
// consumes the note.
const (
	NoteSendCard          = "aze/send-card"
	NoteGenKey            = "aze/gen-key"
	NoteShuffleCard       = "aze/shuffle-card"
	NoteRemask            = "aze/remask"
	NoteSetCards          = "aze/set-cards"
	NoteSendCommunityCard = "aze/send-community-cards"
	NoteUnmask            = "aze/unmask"
	NoteInterUnmask       = "aze/inter-unmask"
	NoteSendUnmaskedCards = "aze/send-unmasked-cards"
	NoteSetHand           = "aze/set-hand"
	NotePlayBet           = "aze/play-bet"
	NotePlayRaise         = "aze/play-raise"
	NotePlayCall          = "aze/play-call"
	NotePlayCheck         = "aze/play-check"
	NotePlayFold          = "aze/play-fold"
)

// NoteEnvelope is the JSON note container. Ledger notes are opaque bytes;
// the envelope routes them to the right script payload.
type NoteEnvelope struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Sender uint64          `json:"sender"`
	Target uint64          `json:"target"`
	Value  json.RawMessage `json:"value"`
}

func DecodeNoteEnvelope(b []byte) (NoteEnvelope, error) {
	var env NoteEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return NoteEnvelope{}, fmt.Errorf("invalid note json: %w", err)
	}
	if env.Type == "" {
		return NoteEnvelope{}, fmt.Errorf("missing note.type")
	}
	return env, nil
}

func newNote(noteType string, sender, target uint64, value any) (NoteEnvelope, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return NoteEnvelope{}, fmt.Errorf("encode %s note: %w", noteType, err)
	}
	return NoteEnvelope{
		ID:     uuid.NewString(),
		Type:   noteType,
		Sender: sender,
		Target: target,
		Value:  b,
	}, nil
}

func DecodePayload[T any](env NoteEnvelope, want string) (T, error) {
	var v T
	if env.Type != want {
		return v, fmt.Errorf("note is %s, want %s", env.Type, want)
	}
	if err := json.Unmarshal(env.Value, &v); err != nil {
		return v, fmt.Errorf("decode %s note: %w", want, err)
	}
	return v, nil
}

// ---- Dealing / shuffle chain ----

// Masked cards travel in full inside note payloads; account storage holds
// only their digest commitments (see cards.MaskedSlot).

type SendCardNote struct {
	Cards [2]azecrypto.CipherCard `json:"cards"`
}

func NewSendCardNote(sender, target uint64, holeCards [2]azecrypto.CipherCard) (NoteEnvelope, error) {
	return newNote(NoteSendCard, sender, target, SendCardNote{Cards: holeCards})
}

type GenKeyNote struct{}

func NewGenKeyNote(sender, target uint64) (NoteEnvelope, error) {
	return newNote(NoteGenKey, sender, target, GenKeyNote{})
}

// ShuffleCardNote hands the freshly masked deck to the first shuffle hop.
// PlayerData carries [next_action_type, remaining peer ids...] so each hop
// knows where the chain goes without a coordinator.
type ShuffleCardNote struct {
	Deck       [cards.DeckSize]azecrypto.CipherCard `json:"deck"`
	PlayerData [4]uint64                            `json:"player_data"`
}

func NewShuffleCardNote(sender, target uint64, deck [cards.DeckSize]azecrypto.CipherCard, playerData [4]uint64) (NoteEnvelope, error) {
	return newNote(NoteShuffleCard, sender, target, ShuffleCardNote{Deck: deck, PlayerData: playerData})
}

type RemaskNote struct {
	Deck       [cards.DeckSize]azecrypto.CipherCard `json:"deck"`
	PlayerData [4]uint64                            `json:"player_data"`
}

func NewRemaskNote(sender, target uint64, deck [cards.DeckSize]azecrypto.CipherCard, playerData [4]uint64) (NoteEnvelope, error) {
	return newNote(NoteRemask, sender, target, RemaskNote{Deck: deck, PlayerData: playerData})
}

// SetCardsNote returns the fully remasked deck to the game account.
type SetCardsNote struct {
	Deck [cards.DeckSize]azecrypto.CipherCard `json:"deck"`
}

func NewSetCardsNote(sender, target uint64, deck [cards.DeckSize]azecrypto.CipherCard) (NoteEnvelope, error) {
	return newNote(NoteSetCards, sender, target, SetCardsNote{Deck: deck})
}

// ---- Reveal relay ----

// InterUnmaskNote asks the target for its decryption share over up to three
// cards (hole-card relays use two, turn and river use one; unused entries
// stay zero). RequesterID tells the target who to answer; PlayerData is
// echoed back in the response so the requester's counter advances to the
// value it chose before sending the hop.
type InterUnmaskNote struct {
	Cards       [3]azecrypto.CipherCard `json:"cards"`
	RequesterID uint64                  `json:"requester_id"`
	PlayerData  [4]uint64               `json:"player_data"`
}

func NewInterUnmaskNote(sender, target uint64, relayCards [3]azecrypto.CipherCard, requesterID uint64, playerData [4]uint64) (NoteEnvelope, error) {
	return newNote(NoteInterUnmask, sender, target, InterUnmaskNote{Cards: relayCards, RequesterID: requesterID, PlayerData: playerData})
}

type SendUnmaskedCardsNote struct {
	Cards      [3]azecrypto.CipherCard `json:"cards"`
	PlayerData [4]uint64               `json:"player_data"`
}

func NewSendUnmaskedCardsNote(sender, target uint64, relayCards [3]azecrypto.CipherCard, playerData [4]uint64) (NoteEnvelope, error) {
	return newNote(NoteSendUnmaskedCards, sender, target, SendUnmaskedCardsNote{Cards: relayCards, PlayerData: playerData})
}

// UnmaskNote forwards revealed community plaintext to the game account.
// CardSlot selects the reveal window (flop, turn or river).
type UnmaskNote struct {
	Cards    [3]cards.Slot `json:"cards"`
	CardSlot uint8         `json:"card_slot"`
}

func NewUnmaskNote(sender, target uint64, revealed [3]cards.Slot, cardSlot uint8) (NoteEnvelope, error) {
	return newNote(NoteUnmask, sender, target, UnmaskNote{Cards: revealed, CardSlot: cardSlot})
}

type SendCommunityCardsNote struct {
	Cards [3]cards.Slot `json:"cards"`
}

func NewSendCommunityCardsNote(sender, target uint64, community [3]cards.Slot) (NoteEnvelope, error) {
	return newNote(NoteSendCommunityCard, sender, target, SendCommunityCardsNote{Cards: community})
}

// ---- Showdown ----

type SetHandNote struct {
	HoleCard1   uint64 `json:"hole_card_1"`
	HoleCard2   uint64 `json:"hole_card_2"`
	HandRank    uint64 `json:"hand_rank"`
	PlayerIndex uint64 `json:"player_index"`
}

func NewSetHandNote(sender, target uint64, hand SetHandNote) (NoteEnvelope, error) {
	return newNote(NoteSetHand, sender, target, hand)
}

// ---- Betting ----

type PlayBetNote struct {
	Amount uint64 `json:"amount"`
}

func NewPlayBetNote(sender, target uint64, amount uint64) (NoteEnvelope, error) {
	return newNote(NotePlayBet, sender, target, PlayBetNote{Amount: amount})
}

type PlayRaiseNote struct {
	Amount uint64 `json:"amount"`
}

func NewPlayRaiseNote(sender, target uint64, amount uint64) (NoteEnvelope, error) {
	return newNote(NotePlayRaise, sender, target, PlayRaiseNote{Amount: amount})
}

type PlayCallNote struct{}

func NewPlayCallNote(sender, target uint64) (NoteEnvelope, error) {
	return newNote(NotePlayCall, sender, target, PlayCallNote{})
}

type PlayCheckNote struct{}

func NewPlayCheckNote(sender, target uint64) (NoteEnvelope, error) {
	return newNote(NotePlayCheck, sender, target, PlayCheckNote{})
}

type PlayFoldNote struct{}

func NewPlayFoldNote(sender, target uint64) (NoteEnvelope, error) {
	return newNote(NotePlayFold, sender, target, PlayFoldNote{})
}

// ConsumeTransaction builds the tx that consumes notes addressed to account.
func ConsumeTransaction(account uint64, noteIDs ...string) Transaction {
	return Transaction{
		ID:             uuid.NewString(),
		Sender:         account,
		ConsumeNoteIDs: noteIDs,
	}
}

// NoteTransaction wraps a note emission in a signed transaction.
func NoteTransaction(note NoteEnvelope) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Sender: note.Sender,
		Note:   &note,
	}
}
