package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRoundTrip(t *testing.T) {
	seen := map[uint8]bool{}
	for suit := uint8(1); suit <= NumSuits; suit++ {
		for rank := uint8(1); rank <= NumRanks; rank++ {
			c := Card{Suit: suit, Rank: rank}
			idx := c.Index()
			require.GreaterOrEqual(t, idx, uint8(1))
			require.LessOrEqual(t, idx, uint8(DeckSize))
			require.False(t, seen[idx], "index %d assigned twice", idx)
			seen[idx] = true

			back, err := FromIndex(idx)
			require.NoError(t, err)
			require.Equal(t, c, back)
		}
	}
}

func TestFromIndexRejectsOutOfRange(t *testing.T) {
	_, err := FromIndex(0)
	assert.Error(t, err)
	_, err = FromIndex(53)
	assert.Error(t, err)
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♣", Card{Suit: 1, Rank: 1}.String())
	assert.Equal(t, "10♦", Card{Suit: 2, Rank: 10}.String())
	assert.Equal(t, "J♥", Card{Suit: 3, Rank: 11}.String())
	assert.Equal(t, "K♠", Card{Suit: 4, Rank: 13}.String())
	assert.Equal(t, "NA", Card{}.String())
}

func TestCardFromNumber(t *testing.T) {
	assert.Equal(t, "NA", CardFromNumber(0))
	assert.Equal(t, "NA", CardFromNumber(53))
	assert.Equal(t, "A♣", CardFromNumber(1))
	assert.Equal(t, "K♠", CardFromNumber(52))
}

func TestSlotRoundTrip(t *testing.T) {
	for _, c := range Deck() {
		got, err := FromSlot(c.ToSlot())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
}

func TestFromSlotRejectsMaskedAndInvalid(t *testing.T) {
	_, err := FromSlot(MaskedSlot(7, 9))
	assert.Error(t, err)
	_, err = FromSlot(Slot{5, 1, 0, 0})
	assert.Error(t, err)
	_, err = FromSlot(Slot{1, 14, 0, 0})
	assert.Error(t, err)
}

func TestPlayerStatBase(t *testing.T) {
	base, err := PlayerStatBase(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), base)
	assert.Equal(t, uint8(68), base+PlayerBalanceOffset)

	base, err = PlayerStatBase(3)
	require.NoError(t, err)
	assert.Equal(t, uint8(64+3*13), base)

	_, err = PlayerStatBase(4)
	assert.Error(t, err)
}

func TestHandName(t *testing.T) {
	name, err := HandName(RoyalFlush)
	require.NoError(t, err)
	assert.Equal(t, "Royal Flush", name)
	name, err = HandName(HighCard)
	require.NoError(t, err)
	assert.Equal(t, "High Card", name)
	_, err = HandName(10)
	assert.Error(t, err)
}
