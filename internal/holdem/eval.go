// Package holdem evaluates Texas hold'em hands on the shared 0..9 rank
// scale stored in the table's stat blocks (0 is a royal flush, 9 a high
// card).
package holdem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

// HandRank orders hands: a lower Category wins, ties break lexicographically
// on Tiebreakers (high-to-low card values, ace high).
type HandRank struct {
	Category    uint64
	Tiebreakers []uint8
}

// Compare returns -1 if a loses to b, 0 on a chop, 1 if a beats b.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return -1
		}
		return 1
	}
	l := len(a.Tiebreakers)
	if len(b.Tiebreakers) > l {
		l = len(b.Tiebreakers)
	}
	for i := 0; i < l; i++ {
		var av, bv uint8
		if i < len(a.Tiebreakers) {
			av = a.Tiebreakers[i]
		}
		if i < len(b.Tiebreakers) {
			bv = b.Tiebreakers[i]
		}
		if av == bv {
			continue
		}
		if av < bv {
			return -1
		}
		return 1
	}
	return 0
}

// aceHigh lifts rank 1 (ace) above the king for ordering.
func aceHigh(rank uint8) uint8 {
	if rank == 1 {
		return 14
	}
	return rank
}

func assertDistinct(hand []cards.Card, label string) error {
	var seen [cards.DeckSize]bool
	for _, c := range hand {
		if !c.Valid() {
			return fmt.Errorf("%s contains invalid card %d/%d", label, c.Suit, c.Rank)
		}
		idx := c.Index() - 1
		if seen[idx] {
			return fmt.Errorf("%s contains duplicate card %s", label, c)
		}
		seen[idx] = true
	}
	return nil
}

func straightHigh(uniqueRanksDesc []uint8) (uint8, bool) {
	if len(uniqueRanksDesc) != 5 {
		return 0, false
	}
	wheel := uniqueRanksDesc[0] == 14 &&
		uniqueRanksDesc[1] == 5 && uniqueRanksDesc[2] == 4 &&
		uniqueRanksDesc[3] == 3 && uniqueRanksDesc[4] == 2
	if wheel {
		return 5, true
	}
	for i := 1; i < len(uniqueRanksDesc); i++ {
		if uniqueRanksDesc[i-1]-1 != uniqueRanksDesc[i] {
			return 0, false
		}
	}
	return uniqueRanksDesc[0], true
}

func evaluate5(hand []cards.Card) (HandRank, error) {
	if len(hand) != 5 {
		return HandRank{}, fmt.Errorf("evaluate5 expected 5 cards, got %d", len(hand))
	}
	if err := assertDistinct(hand, "hand"); err != nil {
		return HandRank{}, err
	}

	isFlush := true
	for i := 1; i < len(hand); i++ {
		if hand[i].Suit != hand[0].Suit {
			isFlush = false
			break
		}
	}

	ranks := make([]uint8, 0, 5)
	counts := map[uint8]uint8{}
	for _, c := range hand {
		r := aceHigh(c.Rank)
		ranks = append(ranks, r)
		counts[r]++
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	uniqueDesc := make([]uint8, 0, len(counts))
	for r := range counts {
		uniqueDesc = append(uniqueDesc, r)
	}
	sort.Slice(uniqueDesc, func(i, j int) bool { return uniqueDesc[i] > uniqueDesc[j] })

	high, isStraight := straightHigh(uniqueDesc)

	type group struct {
		rank  uint8
		count uint8
	}
	groups := make([]group, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, group{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickers := func() []uint8 {
		ks := []uint8{}
		for _, g := range groups {
			if g.count == 1 {
				ks = append(ks, g.rank)
			}
		}
		sort.Slice(ks, func(i, j int) bool { return ks[i] > ks[j] })
		return ks
	}

	switch {
	case isStraight && isFlush && high == 14:
		return HandRank{Category: cards.RoyalFlush}, nil
	case isStraight && isFlush:
		return HandRank{Category: cards.StraightFlush, Tiebreakers: []uint8{high}}, nil
	case groups[0].count == 4:
		return HandRank{Category: cards.FourOfAKind, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}, nil
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: cards.FullHouse, Tiebreakers: []uint8{groups[0].rank, groups[1].rank}}, nil
	case isFlush:
		return HandRank{Category: cards.Flush, Tiebreakers: ranks}, nil
	case isStraight:
		return HandRank{Category: cards.Straight, Tiebreakers: []uint8{high}}, nil
	case groups[0].count == 3:
		return HandRank{Category: cards.ThreeOfAKind, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}, nil
	case groups[0].count == 2 && groups[1].count == 2:
		pairs := []uint8{groups[0].rank, groups[1].rank}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i] > pairs[j] })
		return HandRank{Category: cards.TwoPair, Tiebreakers: append(pairs, kickers()...)}, nil
	case groups[0].count == 2:
		return HandRank{Category: cards.Pair, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}, nil
	}
	return HandRank{Category: cards.HighCard, Tiebreakers: ranks}, nil
}

var combos7Choose5 = [21][5]int{
	{0, 1, 2, 3, 4}, {0, 1, 2, 3, 5}, {0, 1, 2, 3, 6},
	{0, 1, 2, 4, 5}, {0, 1, 2, 4, 6}, {0, 1, 2, 5, 6},
	{0, 1, 3, 4, 5}, {0, 1, 3, 4, 6}, {0, 1, 3, 5, 6},
	{0, 1, 4, 5, 6}, {0, 2, 3, 4, 5}, {0, 2, 3, 4, 6},
	{0, 2, 3, 5, 6}, {0, 2, 4, 5, 6}, {0, 3, 4, 5, 6},
	{1, 2, 3, 4, 5}, {1, 2, 3, 4, 6}, {1, 2, 3, 5, 6},
	{1, 2, 4, 5, 6}, {1, 3, 4, 5, 6}, {2, 3, 4, 5, 6},
}

// Evaluate7 picks the best 5-card hand out of 7 cards.
func Evaluate7(hand []cards.Card) (HandRank, error) {
	if len(hand) != 7 {
		return HandRank{}, fmt.Errorf("evaluate7 expected 7 cards, got %d", len(hand))
	}
	if err := assertDistinct(hand, "hand"); err != nil {
		return HandRank{}, err
	}

	var best *HandRank
	for _, idx := range combos7Choose5 {
		r, err := evaluate5([]cards.Card{hand[idx[0]], hand[idx[1]], hand[idx[2]], hand[idx[3]], hand[idx[4]]})
		if err != nil {
			return HandRank{}, err
		}
		if best == nil || Compare(r, *best) == 1 {
			tmp := r
			best = &tmp
		}
	}
	return *best, nil
}

// RankHand evaluates two hole cards against the five community cards and
// returns the rank on the table's 0..9 scale.
func RankHand(hole [2]cards.Card, board []cards.Card) (uint64, error) {
	if len(board) != cards.CommunityCards {
		return 0, fmt.Errorf("rank hand expected %d board cards, got %d", cards.CommunityCards, len(board))
	}
	all := append(append([]cards.Card{}, board...), hole[0], hole[1])
	r, err := Evaluate7(all)
	if err != nil {
		return 0, err
	}
	return r.Category, nil
}

// Winners returns the winning seat ordinals at showdown, lowest first;
// ties chop.
func Winners(board []cards.Card, holeBySeat map[int][2]cards.Card) ([]int, error) {
	if len(board) != cards.CommunityCards {
		return nil, fmt.Errorf("winners expected %d board cards, got %d", cards.CommunityCards, len(board))
	}
	if err := assertDistinct(board, "board"); err != nil {
		return nil, err
	}

	seats := make([]int, 0, len(holeBySeat))
	for seat := range holeBySeat {
		if seat < 0 || seat >= cards.NoOfPlayers {
			continue
		}
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	var best *HandRank
	bestSeats := []int{}
	for _, seat := range seats {
		hole := holeBySeat[seat]
		all := append(append([]cards.Card{}, board...), hole[0], hole[1])
		if err := assertDistinct(all, fmt.Sprintf("seat %d cards", seat)); err != nil {
			return nil, err
		}
		r, err := Evaluate7(all)
		if err != nil {
			return nil, err
		}
		switch {
		case best == nil:
			tmp := r
			best = &tmp
			bestSeats = []int{seat}
		default:
			switch Compare(r, *best) {
			case 1:
				tmp := r
				best = &tmp
				bestSeats = []int{seat}
			case 0:
				bestSeats = append(bestSeats, seat)
			}
		}
	}
	if best == nil {
		return nil, errors.New("no eligible hands to evaluate")
	}
	return bestSeats, nil
}
