package azecrypto

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func testScalar(t *testing.T, label string) Scalar {
	t.Helper()
	s, err := HashToScalar("test", []byte(label))
	require.NoError(t, err)
	require.False(t, s.IsZero())
	return s
}

func TestMaskRejectsZeroRandomness(t *testing.T) {
	card, err := CardPoint(7)
	require.NoError(t, err)
	_, err = Mask(PointBase(), card, ScalarZero())
	require.Error(t, err)
	_, err = Remask(PointBase(), CipherCard{}, ScalarZero())
	require.Error(t, err)
}

func TestCardPointRoundTrip(t *testing.T) {
	for id := uint8(1); id <= DeckSize; id++ {
		p, err := CardPoint(id)
		require.NoError(t, err)
		got, ok := CardFromPoint(p)
		require.True(t, ok)
		require.Equal(t, id, got)
	}
	_, err := CardPoint(0)
	require.Error(t, err)
	_, err = CardPoint(53)
	require.Error(t, err)
	_, ok := CardFromPoint(PointBase())
	require.False(t, ok)
}

// Full protocol algebra: mask under the aggregate key, remask once per
// player, then strip three shares and final-unmask with the fourth. The
// plaintext must survive any share order.
func TestMaskRemaskUnmaskRecoversCard(t *testing.T) {
	const players = 4

	sks := make([]Scalar, players)
	pks := make([]Point, players)
	for i := range sks {
		sk, pk, err := KeyGen([]byte{byte(i + 1)})
		require.NoError(t, err)
		sks[i] = sk
		pks[i] = pk
	}
	agg := AggregateKeys(pks...)

	for _, cardID := range []uint8{1, 13, 26, 52} {
		card, err := CardPoint(cardID)
		require.NoError(t, err)

		ct, err := Mask(agg, card, testScalar(t, fmt.Sprintf("mask-%d", cardID)))
		require.NoError(t, err)
		for i := 0; i < players; i++ {
			ct, err = Remask(agg, ct, testScalar(t, fmt.Sprintf("remask-%d-%d", cardID, i)))
			require.NoError(t, err)
		}

		// Ciphertext must not expose the plaintext before shares land.
		_, ok := CardFromPoint(ct.C2)
		require.False(t, ok)

		orders := [][]int{{0, 1, 2, 3}, {3, 1, 0, 2}, {2, 3, 1, 0}}
		for _, order := range orders {
			partial := ct
			for _, i := range order[:players-1] {
				partial = InterUnmask(partial, sks[i])
			}
			plain := FinalUnmask(partial, sks[order[players-1]])
			got, ok := CardFromPoint(plain)
			require.True(t, ok, "order %v", order)
			require.Equal(t, cardID, got)
		}
	}
}

// Short reveals (turn, river, hole) travel in a fixed three-card array with
// identity padding. The padding must survive encoding and share stripping.
func TestZeroCipherPaddingSurvivesWireAndUnmask(t *testing.T) {
	sk, pk, err := KeyGen([]byte("padding"))
	require.NoError(t, err)

	card, err := CardPoint(21)
	require.NoError(t, err)
	ct, err := Mask(pk, card, testScalar(t, "pad"))
	require.NoError(t, err)

	payload := [3]CipherCard{ct, ZeroCipher(), ZeroCipher()}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	var got [3]CipherCard
	require.NoError(t, json.Unmarshal(b, &got))

	share := InterUnmask(got[1], sk)
	require.True(t, PointEq(share.C1, PointZero()))
	require.True(t, PointEq(share.C2, PointZero()))

	plain := FinalUnmask(got[0], sk)
	id, ok := CardFromPoint(plain)
	require.True(t, ok)
	require.Equal(t, uint8(21), id)
}

func TestRemaskChangesCiphertext(t *testing.T) {
	_, pk, err := KeyGen([]byte("solo"))
	require.NoError(t, err)

	card, err := CardPoint(9)
	require.NoError(t, err)
	ct, err := Mask(pk, card, testScalar(t, "m"))
	require.NoError(t, err)
	re, err := Remask(pk, ct, testScalar(t, "r"))
	require.NoError(t, err)

	require.False(t, PointEq(ct.C1, re.C1))
	require.False(t, PointEq(ct.C2, re.C2))
}

func TestScalarArithmetic(t *testing.T) {
	a := ScalarFromUint64(41)
	b := ScalarFromUint64(1)
	require.Equal(t, ScalarFromUint64(42).Bytes(), ScalarAdd(a, b).Bytes())
	require.Equal(t, ScalarFromUint64(40).Bytes(), ScalarSub(a, b).Bytes())
	require.Equal(t, ScalarFromUint64(41).Bytes(), ScalarMul(a, b).Bytes())
	require.True(t, ScalarAdd(a, ScalarNeg(a)).IsZero())
}
