package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

type fakeStorage map[uint8]cards.Slot

func (f fakeStorage) Slot(index uint8) cards.Slot {
	return f[index]
}

func TestTakeSnapshot(t *testing.T) {
	st := fakeStorage{
		cards.PlayerDataSlot:    {7, 0, 0, 0},
		cards.RequesterSlot:     {99, 0, 0, 0},
		cards.TempCardSlot:      {1, 2, 1, 0},
		cards.TempCardSlot + 1:  {3, 4, 1, 0},
		cards.TempCardSlot + 2:  {5, 6, 1, 0},
	}
	snap := TakeSnapshot(st)
	assert.Equal(t, uint64(7), snap.ActionType)
	assert.Equal(t, uint64(99), snap.RequesterID)

	st[cards.TempCardSlot+1] = cards.Slot{3, 4, 0, 0}
	changed := TakeSnapshot(st)
	assert.NotEqual(t, snap.TempCardDigest, changed.TempCardDigest)
}

func TestDetectTransitionNone(t *testing.T) {
	snap := Snapshot{ActionType: 4, RequesterID: 11}
	tr, err := DetectTransition(snap, snap)
	require.NoError(t, err)
	assert.Equal(t, TransitionNone, tr.Kind)
}

func TestDetectTransitionStep(t *testing.T) {
	before := Snapshot{ActionType: 4, RequesterID: 11}
	after := Snapshot{ActionType: 13, RequesterID: 11}
	tr, err := DetectTransition(before, after)
	require.NoError(t, err)
	assert.Equal(t, TransitionStep, tr.Kind)
	assert.Equal(t, Step{Kind: KindFinalUnmask, Purpose: PurposeHoleCards, Ordinal: 0}, tr.Step)
}

// Requester changes take precedence over counter changes; a share request
// may land in the same consumption round as an unrelated counter bump.
func TestRequesterCheckedBeforeCounter(t *testing.T) {
	before := Snapshot{ActionType: 5, RequesterID: 11}
	after := Snapshot{ActionType: 6, RequesterID: 22}
	tr, err := DetectTransition(before, after)
	require.NoError(t, err)
	assert.Equal(t, TransitionRelayRequest, tr.Kind)
	assert.Equal(t, uint64(22), tr.RequesterID)
}

func TestRequesterWithTempChangeIsCommunityReveal(t *testing.T) {
	before := Snapshot{ActionType: 17, RequesterID: 11, TempCardDigest: [32]byte{1}}
	after := Snapshot{ActionType: 17, RequesterID: 22, TempCardDigest: [32]byte{2}}
	tr, err := DetectTransition(before, after)
	require.NoError(t, err)
	assert.Equal(t, TransitionCommunityReveal, tr.Kind)
	assert.Equal(t, uint64(22), tr.RequesterID)
}

func TestCounterMonotonicity(t *testing.T) {
	before := Snapshot{ActionType: 20}
	after := Snapshot{ActionType: 19}
	_, err := DetectTransition(before, after)
	assert.Error(t, err)
}

func TestDetectTransitionRejectsUnknownCounter(t *testing.T) {
	before := Snapshot{ActionType: 52}
	after := Snapshot{ActionType: 77}
	_, err := DetectTransition(before, after)
	assert.Error(t, err)
}
