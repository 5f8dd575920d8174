package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

func c(suit, rank uint8) cards.Card {
	return cards.Card{Suit: suit, Rank: rank}
}

func TestEvaluate5Categories(t *testing.T) {
	tests := []struct {
		name string
		hand []cards.Card
		want uint64
	}{
		{"royal flush", []cards.Card{c(1, 1), c(1, 13), c(1, 12), c(1, 11), c(1, 10)}, cards.RoyalFlush},
		{"straight flush", []cards.Card{c(2, 9), c(2, 8), c(2, 7), c(2, 6), c(2, 5)}, cards.StraightFlush},
		{"wheel straight flush", []cards.Card{c(3, 1), c(3, 2), c(3, 3), c(3, 4), c(3, 5)}, cards.StraightFlush},
		{"quads", []cards.Card{c(1, 7), c(2, 7), c(3, 7), c(4, 7), c(1, 2)}, cards.FourOfAKind},
		{"full house", []cards.Card{c(1, 4), c(2, 4), c(3, 4), c(1, 9), c(2, 9)}, cards.FullHouse},
		{"flush", []cards.Card{c(4, 2), c(4, 5), c(4, 9), c(4, 11), c(4, 13)}, cards.Flush},
		{"straight", []cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 13), c(1, 1)}, cards.Straight},
		{"wheel", []cards.Card{c(1, 1), c(2, 2), c(3, 3), c(4, 4), c(1, 5)}, cards.Straight},
		{"trips", []cards.Card{c(1, 8), c(2, 8), c(3, 8), c(4, 2), c(1, 5)}, cards.ThreeOfAKind},
		{"two pair", []cards.Card{c(1, 8), c(2, 8), c(3, 3), c(4, 3), c(1, 5)}, cards.TwoPair},
		{"pair", []cards.Card{c(1, 8), c(2, 8), c(3, 4), c(4, 3), c(1, 5)}, cards.Pair},
		{"high card", []cards.Card{c(1, 2), c(2, 5), c(3, 8), c(4, 11), c(1, 13)}, cards.HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := evaluate5(tt.hand)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Category)
		})
	}
}

func TestEvaluate5RejectsDuplicates(t *testing.T) {
	_, err := evaluate5([]cards.Card{c(1, 2), c(1, 2), c(3, 8), c(4, 11), c(1, 13)})
	assert.Error(t, err)
}

func TestCompareOrdersCategoriesAndKickers(t *testing.T) {
	flush, err := evaluate5([]cards.Card{c(4, 2), c(4, 5), c(4, 9), c(4, 11), c(4, 13)})
	require.NoError(t, err)
	straight, err := evaluate5([]cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 13), c(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, Compare(flush, straight))
	assert.Equal(t, -1, Compare(straight, flush))

	pairAceKicker, err := evaluate5([]cards.Card{c(1, 8), c(2, 8), c(3, 1), c(4, 3), c(1, 5)})
	require.NoError(t, err)
	pairKingKicker, err := evaluate5([]cards.Card{c(3, 8), c(4, 8), c(1, 13), c(2, 3), c(2, 5)})
	require.NoError(t, err)
	assert.Equal(t, 1, Compare(pairAceKicker, pairKingKicker))

	chopA, err := evaluate5([]cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 13), c(1, 1)})
	require.NoError(t, err)
	chopB, err := evaluate5([]cards.Card{c(2, 10), c(3, 11), c(4, 12), c(1, 13), c(2, 1)})
	require.NoError(t, err)
	assert.Equal(t, 0, Compare(chopA, chopB))
}

func TestEvaluate7PicksBestFive(t *testing.T) {
	// Board pairs the eights, hole completes a full house.
	hand := []cards.Card{
		c(1, 8), c(2, 8), c(3, 2), c(4, 9), c(1, 13),
		c(3, 8), c(2, 2),
	}
	r, err := Evaluate7(hand)
	require.NoError(t, err)
	assert.Equal(t, cards.FullHouse, r.Category)
}

func TestRankHand(t *testing.T) {
	board := []cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 2), c(1, 7)}
	rank, err := RankHand([2]cards.Card{c(1, 13), c(2, 1)}, board)
	require.NoError(t, err)
	assert.Equal(t, cards.Straight, rank)

	rank, err = RankHand([2]cards.Card{c(2, 2), c(3, 2)}, board)
	require.NoError(t, err)
	assert.Equal(t, cards.ThreeOfAKind, rank)

	_, err = RankHand([2]cards.Card{c(1, 10), c(2, 1)}, board)
	assert.Error(t, err, "hole card duplicates the board")
}

func TestWinners(t *testing.T) {
	board := []cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 2), c(1, 7)}
	holes := map[int][2]cards.Card{
		0: {c(1, 13), c(2, 1)},  // broadway straight
		1: {c(2, 2), c(3, 2)},   // trips
		2: {c(4, 13), c(3, 1)},  // same straight, chops with seat 0
		3: {c(1, 3), c(2, 4)},   // high card
	}
	winners, err := Winners(board, holes)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, winners)
}

func TestWinnersRejectsEmpty(t *testing.T) {
	board := []cards.Card{c(1, 10), c(2, 11), c(3, 12), c(4, 2), c(1, 7)}
	_, err := Winners(board, map[int][2]cards.Card{})
	assert.Error(t, err)
}
