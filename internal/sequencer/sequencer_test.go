package sequencer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/protocol"
)

const testGameID = uint64(9000)

func testLedger(t *testing.T) (*ledger.MemLedger, *ledger.Executor) {
	t.Helper()
	l := ledger.NewMemLedger()
	require.NoError(t, l.CreateGameAccount(testGameID, []uint64{1, 2, 3, 4}, cards.SmallBlindAmount, cards.BuyInAmount))
	for _, id := range []uint64{1, 2, 3, 4} {
		require.NoError(t, l.CreatePlayerAccount(id))
	}
	e := ledger.NewExecutor(l, nil)
	e.PollInterval = time.Millisecond
	e.Pause = time.Millisecond
	return l, e
}

func testPlayer(t *testing.T, l *ledger.MemLedger, e *ledger.Executor, seat int) *Player {
	t.Helper()
	ids := []uint64{1, 2, 3, 4}
	var peers [3]uint64
	for i := 1; i < cards.NoOfPlayers; i++ {
		peers[i-1] = ids[(seat+i)%cards.NoOfPlayers]
	}
	p, err := NewPlayer(ids[seat], testGameID, seat, []byte{byte(seat)}, peers, e, nil)
	require.NoError(t, err)
	return p
}

func TestCardCount(t *testing.T) {
	for purpose, want := range map[protocol.Purpose]int{
		protocol.PurposeHoleCards: 2,
		protocol.PurposeFlop:      3,
		protocol.PurposeTurn:      1,
		protocol.PurposeRiver:     1,
	} {
		got, err := cardCount(purpose)
		require.NoError(t, err)
		assert.Equal(t, want, got, "purpose %v", purpose)
	}
	_, err := cardCount(protocol.PurposeNone)
	assert.Error(t, err)
}

func TestShuffleDeckPreservesCiphertexts(t *testing.T) {
	var deck [cards.DeckSize]azecrypto.CipherCard
	for i := range deck {
		deck[i] = azecrypto.CipherCard{
			C1: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 1))),
			C2: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 100))),
		}
	}
	orig := deck
	require.NoError(t, shuffleDeck(&deck))

	// same multiset of ciphertexts
	matched := 0
	for _, want := range orig {
		for _, got := range deck {
			if azecrypto.PointEq(want.C1, got.C1) && azecrypto.PointEq(want.C2, got.C2) {
				matched++
				break
			}
		}
	}
	assert.Equal(t, cards.DeckSize, matched)
}

func TestHandleShuffleForwardsToNextHop(t *testing.T) {
	l, e := testLedger(t)
	p := testPlayer(t, l, e, 0)
	p.SetAggregateKey(azecrypto.MulBase(azecrypto.ScalarFromUint64(7)))

	var deck [cards.DeckSize]azecrypto.CipherCard
	for i := range deck {
		deck[i] = azecrypto.CipherCard{
			C1: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 1))),
			C2: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 60))),
		}
	}
	require.NoError(t, p.HandleShuffle(context.Background(), deck, [4]uint64{1, 2, 3, 4}))

	notes, err := l.GetConsumableNotes(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, ledger.NoteRemask, notes[0].Type)

	v, err := ledger.DecodePayload[ledger.RemaskNote](notes[0], ledger.NoteRemask)
	require.NoError(t, err)
	assert.Equal(t, [4]uint64{2, 3, 4, 0}, v.PlayerData)
	// the hop remasked every card
	for i := range deck {
		assert.False(t, azecrypto.PointEq(deck[i].C2, v.Deck[i].C2), "card %d not remasked", i)
	}
}

func TestHandleShuffleLastHopReturnsDeck(t *testing.T) {
	l, e := testLedger(t)
	p := testPlayer(t, l, e, 3)
	p.SetAggregateKey(azecrypto.MulBase(azecrypto.ScalarFromUint64(7)))

	var deck [cards.DeckSize]azecrypto.CipherCard
	for i := range deck {
		deck[i] = azecrypto.CipherCard{
			C1: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 1))),
			C2: azecrypto.MulBase(azecrypto.ScalarFromUint64(uint64(i + 60))),
		}
	}
	require.NoError(t, p.HandleShuffle(context.Background(), deck, [4]uint64{4, 0, 0, 0}))

	notes, err := l.GetConsumableNotes(context.Background(), testGameID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, ledger.NoteSetCards, notes[0].Type)
}

func TestSendHopCounters(t *testing.T) {
	l, e := testLedger(t)
	p := testPlayer(t, l, e, 2)
	ctx := context.Background()

	cts := [3]azecrypto.CipherCard{azecrypto.ZeroCipher(), azecrypto.ZeroCipher(), azecrypto.ZeroCipher()}
	require.NoError(t, p.sendHop(ctx, protocol.PurposeFlop, 1, cts))
	require.NoError(t, p.sendHop(ctx, protocol.PurposeFlop, 3, cts))
	assert.Error(t, p.sendHop(ctx, protocol.PurposeFlop, 4, cts))

	// hop 1 goes to the first peer with a relay counter
	notes, err := l.GetConsumableNotes(ctx, 4)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	v, err := ledger.DecodePayload[ledger.InterUnmaskNote](notes[0], ledger.NoteInterUnmask)
	require.NoError(t, err)
	step, err := protocol.DecodeCounter(v.PlayerData[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.KindRelay, step.Kind)
	assert.Equal(t, uint8(1), step.Ordinal)
	assert.Equal(t, uint64(3), v.RequesterID)

	// the last hop announces the final-unmask counter tagged with the seat
	notes, err = l.GetConsumableNotes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	v, err = ledger.DecodePayload[ledger.InterUnmaskNote](notes[0], ledger.NoteInterUnmask)
	require.NoError(t, err)
	step, err = protocol.DecodeCounter(v.PlayerData[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.KindFinalUnmask, step.Kind)
	assert.Equal(t, uint8(2), step.Ordinal)
}

func TestAnswerRelayStripsOneShare(t *testing.T) {
	l, e := testLedger(t)
	requester := testPlayer(t, l, e, 0)
	responder := testPlayer(t, l, e, 1)

	agg := azecrypto.AggregateKeys(requester.PublicKey(), responder.PublicKey())
	requester.SetAggregateKey(agg)
	responder.SetAggregateKey(agg)

	pt, err := azecrypto.CardPoint(17)
	require.NoError(t, err)
	r, err := azecrypto.RandomScalar()
	require.NoError(t, err)
	ct, err := azecrypto.Mask(agg, pt, r)
	require.NoError(t, err)

	ctx := context.Background()
	req := ledger.InterUnmaskNote{
		Cards:       [3]azecrypto.CipherCard{ct, azecrypto.ZeroCipher(), azecrypto.ZeroCipher()},
		RequesterID: requester.ID(),
		PlayerData:  [4]uint64{6, 0, 0, 0},
	}
	require.NoError(t, responder.AnswerRelay(ctx, req))

	notes, err := l.GetConsumableNotes(ctx, requester.ID())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	v, err := ledger.DecodePayload[ledger.SendUnmaskedCardsNote](notes[0], ledger.NoteSendUnmaskedCards)
	require.NoError(t, err)
	assert.Equal(t, req.PlayerData, v.PlayerData)

	// with the responder's share stripped, the requester's own key opens it
	opened := azecrypto.FinalUnmask(v.Cards[0], requester.sk)
	id, ok := azecrypto.CardFromPoint(opened)
	require.True(t, ok)
	assert.Equal(t, uint8(17), id)
}

// Turn and river relays carry one live card inside the three-card carrier;
// the responder must strip shares only over the live entries and keep the
// padding on the identity.
func TestAnswerRelayHandlesShortPayload(t *testing.T) {
	l, e := testLedger(t)
	requester := testPlayer(t, l, e, 0)
	responder := testPlayer(t, l, e, 1)

	agg := azecrypto.AggregateKeys(requester.PublicKey(), responder.PublicKey())
	requester.SetAggregateKey(agg)
	responder.SetAggregateKey(agg)

	pt, err := azecrypto.CardPoint(33)
	require.NoError(t, err)
	r, err := azecrypto.RandomScalar()
	require.NoError(t, err)
	ct, err := azecrypto.Mask(agg, pt, r)
	require.NoError(t, err)

	counter, err := protocol.EncodeCounter(protocol.Step{
		Kind: protocol.KindRelay, Purpose: protocol.PurposeTurn, Ordinal: 1,
	})
	require.NoError(t, err)

	ctx := context.Background()
	req := ledger.InterUnmaskNote{
		Cards:       [3]azecrypto.CipherCard{ct, azecrypto.ZeroCipher(), azecrypto.ZeroCipher()},
		RequesterID: requester.ID(),
		PlayerData:  [4]uint64{counter, 0, 0, 0},
	}
	require.NoError(t, responder.AnswerRelay(ctx, req))

	notes, err := l.GetConsumableNotes(ctx, requester.ID())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	v, err := ledger.DecodePayload[ledger.SendUnmaskedCardsNote](notes[0], ledger.NoteSendUnmaskedCards)
	require.NoError(t, err)

	opened := azecrypto.FinalUnmask(v.Cards[0], requester.sk)
	id, ok := azecrypto.CardFromPoint(opened)
	require.True(t, ok)
	assert.Equal(t, uint8(33), id)
	assert.True(t, azecrypto.PointEq(v.Cards[1].C1, azecrypto.PointZero()))
	assert.True(t, azecrypto.PointEq(v.Cards[2].C2, azecrypto.PointZero()))
}

func TestCommitHandRequiresRevealedHole(t *testing.T) {
	l, e := testLedger(t)
	p := testPlayer(t, l, e, 0)
	board := []cards.Card{
		{Suit: 1, Rank: 2}, {Suit: 2, Rank: 5}, {Suit: 3, Rank: 9},
		{Suit: 4, Rank: 11}, {Suit: 1, Rank: 13},
	}
	assert.Error(t, p.CommitHand(context.Background(), board))
}
