package cards

import "fmt"

// Card is the protocol's logical card: suit 1..4 (clubs, diamonds, hearts,
// spades), rank 1..13 (ace..king). The zero value renders as "NA" and marks
// an empty slot.
type Card struct {
	Suit uint8
	Rank uint8
}

const (
	NumSuits = 4
	NumRanks = 13
	DeckSize = NumSuits * NumRanks
)

var suitGlyphs = [NumSuits + 1]string{"", "♣", "♦", "♥", "♠"}

func (c Card) IsZero() bool {
	return c.Suit == 0 || c.Rank == 0
}

func (c Card) Valid() bool {
	return c.Suit >= 1 && c.Suit <= NumSuits && c.Rank >= 1 && c.Rank <= NumRanks
}

// Index is the canonical deck position 1..52, suit-major.
func (c Card) Index() uint8 {
	return (c.Suit-1)*NumRanks + c.Rank
}

// FromIndex inverts Index for positions 1..52.
func FromIndex(idx uint8) (Card, error) {
	if idx < 1 || idx > DeckSize {
		return Card{}, fmt.Errorf("cards: index %d out of range", idx)
	}
	return Card{
		Suit: (idx-1)/NumRanks + 1,
		Rank: (idx-1)%NumRanks + 1,
	}, nil
}

func (c Card) String() string {
	if c.IsZero() || !c.Valid() {
		return "NA"
	}
	var rank string
	switch c.Rank {
	case 1:
		rank = "A"
	case 11:
		rank = "J"
	case 12:
		rank = "Q"
	case 13:
		rank = "K"
	default:
		rank = fmt.Sprintf("%d", c.Rank)
	}
	return rank + suitGlyphs[c.Suit]
}

// CardFromNumber renders the deck position 1..52 the way the table UI shows
// it; 0 renders as "NA".
func CardFromNumber(num uint64) string {
	if num == 0 || num > DeckSize {
		return "NA"
	}
	c, _ := FromIndex(uint8(num))
	return c.String()
}

// Hand ranks as committed to the table: 0 is the best hand.
const (
	RoyalFlush uint64 = iota
	StraightFlush
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	Pair
	HighCard
)

var handNames = [...]string{
	"Royal Flush",
	"Straight Flush",
	"4 of Kind",
	"Full House",
	"Flush",
	"Straight",
	"3 of Kind",
	"Two Pair",
	"Pair",
	"High Card",
}

func HandName(rank uint64) (string, error) {
	if rank >= uint64(len(handNames)) {
		return "", fmt.Errorf("cards: invalid hand rank %d", rank)
	}
	return handNames[rank], nil
}

// Deck returns the 52 cards in canonical order (index 1..52).
func Deck() [DeckSize]Card {
	var deck [DeckSize]Card
	for i := range deck {
		c, _ := FromIndex(uint8(i + 1))
		deck[i] = c
	}
	return deck
}
