package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRanges(t *testing.T) {
	cases := []struct {
		counter uint64
		step    Step
	}{
		{0, Step{Kind: KindIdle}},
		{1, Step{Kind: KindShuffle, Ordinal: 1}},
		{4, Step{Kind: KindShuffle, Ordinal: 4}},
		{5, Step{Kind: KindRelay, Purpose: PurposeHoleCards, Ordinal: 0}},
		{12, Step{Kind: KindRelay, Purpose: PurposeHoleCards, Ordinal: 7}},
		{13, Step{Kind: KindFinalUnmask, Purpose: PurposeHoleCards, Ordinal: 0}},
		{16, Step{Kind: KindFinalUnmask, Purpose: PurposeHoleCards, Ordinal: 3}},
		{17, Step{Kind: KindRelay, Purpose: PurposeFlop, Ordinal: 0}},
		{24, Step{Kind: KindRelay, Purpose: PurposeFlop, Ordinal: 7}},
		{25, Step{Kind: KindFinalUnmask, Purpose: PurposeFlop, Ordinal: 0}},
		{28, Step{Kind: KindFinalUnmask, Purpose: PurposeFlop, Ordinal: 3}},
		{29, Step{Kind: KindRelay, Purpose: PurposeTurn, Ordinal: 0}},
		{36, Step{Kind: KindRelay, Purpose: PurposeTurn, Ordinal: 7}},
		{37, Step{Kind: KindFinalUnmask, Purpose: PurposeTurn, Ordinal: 0}},
		{40, Step{Kind: KindFinalUnmask, Purpose: PurposeTurn, Ordinal: 3}},
		{41, Step{Kind: KindRelay, Purpose: PurposeRiver, Ordinal: 0}},
		{48, Step{Kind: KindRelay, Purpose: PurposeRiver, Ordinal: 7}},
		{49, Step{Kind: KindFinalUnmask, Purpose: PurposeRiver, Ordinal: 0}},
		{52, Step{Kind: KindFinalUnmask, Purpose: PurposeRiver, Ordinal: 3}},
	}

	for _, tc := range cases {
		step, err := DecodeCounter(tc.counter)
		require.NoError(t, err, "counter %d", tc.counter)
		assert.Equal(t, tc.step, step, "counter %d", tc.counter)

		counter, err := EncodeCounter(tc.step)
		require.NoError(t, err, "step %v", tc.step)
		assert.Equal(t, tc.counter, counter, "step %v", tc.step)
	}
}

func TestDecodeCounterFullRoundTrip(t *testing.T) {
	for counter := uint64(0); counter <= 52; counter++ {
		step, err := DecodeCounter(counter)
		require.NoError(t, err)
		back, err := EncodeCounter(step)
		require.NoError(t, err)
		assert.Equal(t, counter, back)
	}
	_, err := DecodeCounter(53)
	assert.Error(t, err)
}

func TestEncodeCounterRejectsBadSteps(t *testing.T) {
	bad := []Step{
		{Kind: KindShuffle, Ordinal: 0},
		{Kind: KindShuffle, Ordinal: 5},
		{Kind: KindRelay, Purpose: PurposeNone, Ordinal: 0},
		{Kind: KindRelay, Purpose: PurposeFlop, Ordinal: 8},
		{Kind: KindFinalUnmask, Purpose: PurposeRiver, Ordinal: 4},
	}
	for _, s := range bad {
		_, err := EncodeCounter(s)
		assert.Error(t, err, "step %v", s)
	}
}

func TestRevealWindow(t *testing.T) {
	slot, count, err := RevealWindow(PurposeFlop, 9)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), slot)
	assert.Equal(t, 3, count)

	slot, count, err = RevealWindow(PurposeTurn, 9)
	require.NoError(t, err)
	assert.Equal(t, uint8(12), slot)
	assert.Equal(t, 1, count)

	slot, count, err = RevealWindow(PurposeRiver, 9)
	require.NoError(t, err)
	assert.Equal(t, uint8(13), slot)
	assert.Equal(t, 1, count)

	_, _, err = RevealWindow(PurposeHoleCards, 9)
	assert.Error(t, err)
}
