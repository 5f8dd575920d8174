package cards

import "fmt"

// Account storage is addressed as fixed-width 4-element tuples. The layout
// below is shared by every participant; both sides of the protocol read the
// same indices.
type Slot [4]uint64

// Game account layout. The deck occupies slots 1..52 in canonical order;
// table counters and the per-player stat blocks sit above it.
const (
	DeckSlotFirst = 1
	DeckSlotLast  = DeckSize

	RaiserIndexSlot      = 58
	PotValueSlot         = 59
	CurrentTurnIndexSlot = 60
	HighestBetSlot       = 61
	CurrentPhaseSlot     = 62
	CheckCounterSlot     = 63

	FirstPlayerIndex = 64
	PlayerStatsSlots = 13

	// Offsets within a player stat block.
	PlayerBetOffset     = 3
	PlayerBalanceOffset = 4
	IsFoldOffset        = 10
	HandOffset          = 11
)

// Player account layout.
const (
	SecretKeySlot     = 53
	PublicKeySlot     = 54
	MaskingFactorSlot = 55
	PlayerDataSlot    = 56
	PlayerCard1Slot   = 100
	PlayerCard2Slot   = 101
	RequesterSlot     = 102
	TempCardSlot      = 103
	TempCardSlots     = 3
)

// Table parameters.
const (
	NoOfPlayers      = 4
	BuyInAmount      = 1000
	SmallBlindAmount = 5

	// First community card's deck position: hole cards occupy 2*players.
	FlopIndex       = NoOfPlayers*2 + 1
	TurnIndex       = FlopIndex + 3
	RiverIndex      = FlopIndex + 4
	FlopNoOfCards   = 3
	CommunityCards  = 5
)

// Table phases stored in CurrentPhaseSlot.
const (
	PhasePreflop uint64 = iota
	PhaseFlop
	PhaseTurn
	PhaseRiver
)

// PlayerStatBase returns the stat block base slot for player ordinal 0..3.
func PlayerStatBase(ordinal int) (uint8, error) {
	if ordinal < 0 || ordinal >= NoOfPlayers {
		return 0, fmt.Errorf("cards: player ordinal %d out of range", ordinal)
	}
	return FirstPlayerIndex + uint8(ordinal)*PlayerStatsSlots, nil
}

// CommunityCardSlots lists the deck slots holding the five community cards.
func CommunityCardSlots() [CommunityCards]uint8 {
	var out [CommunityCards]uint8
	for i := range out {
		out[i] = FlopIndex + uint8(i)
	}
	return out
}

// ToSlot encodes a plaintext card as [suit, rank, encrypted_flag, 0].
func (c Card) ToSlot() Slot {
	return Slot{uint64(c.Suit), uint64(c.Rank), 0, 0}
}

// FromSlot decodes a plaintext card tuple. Masked tuples (encrypted flag
// set) cannot be interpreted as cards.
func FromSlot(s Slot) (Card, error) {
	if s[2] != 0 {
		return Card{}, fmt.Errorf("cards: slot holds a masked card")
	}
	c := Card{Suit: uint8(s[0]), Rank: uint8(s[1])}
	if !c.Valid() {
		return Card{}, fmt.Errorf("cards: slot [%d %d] is not a card", s[0], s[1])
	}
	return c, nil
}

// MaskedSlot wraps a ciphertext digest pair in the slot shape used for deck
// storage while a card is encrypted.
func MaskedSlot(c1Digest, c2Digest uint64) Slot {
	return Slot{c1Digest, c2Digest, 1, 0}
}

func (s Slot) IsMasked() bool {
	return s[2] != 0
}
