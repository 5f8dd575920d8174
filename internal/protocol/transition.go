package protocol

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mFragaBA/aze-cli/internal/cards"
)

// SlotReader is the view of one account's storage the detector needs.
type SlotReader interface {
	Slot(index uint8) cards.Slot
}

// Snapshot captures the fields the progress detector compares across a
// note-consumption round.
type Snapshot struct {
	ActionType     uint64
	RequesterID    uint64
	TempCardDigest [32]byte
}

// TakeSnapshot reads the detector fields from player-account storage.
func TakeSnapshot(r SlotReader) Snapshot {
	var buf [cards.TempCardSlots * 4 * 8]byte
	for i := 0; i < cards.TempCardSlots; i++ {
		slot := r.Slot(cards.TempCardSlot + uint8(i))
		for j, v := range slot {
			binary.LittleEndian.PutUint64(buf[(i*4+j)*8:], v)
		}
	}
	return Snapshot{
		ActionType:     r.Slot(cards.PlayerDataSlot)[0],
		RequesterID:    r.Slot(cards.RequesterSlot)[0],
		TempCardDigest: sha256.Sum256(buf[:]),
	}
}

type TransitionKind uint8

const (
	// TransitionNone: nothing changed; sleep and poll again.
	TransitionNone TransitionKind = iota
	// TransitionRelayRequest: a peer asked this account for its decryption
	// share over the cards now sitting in the temp slots.
	TransitionRelayRequest
	// TransitionCommunityReveal: a community reveal round reached this
	// account; it must relay the inter-unmask request onward.
	TransitionCommunityReveal
	// TransitionStep: the action counter advanced into a new protocol step.
	TransitionStep
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNone:
		return "none"
	case TransitionRelayRequest:
		return "relayRequest"
	case TransitionCommunityReveal:
		return "communityReveal"
	case TransitionStep:
		return "step"
	}
	return fmt.Sprintf("transition(%d)", uint8(k))
}

type Transition struct {
	Kind TransitionKind

	// RequesterID is set for relay-request and community-reveal transitions.
	RequesterID uint64

	// Step is set for step transitions.
	Step Step
}

// DetectTransition diffs two snapshots taken around note consumption.
//
// The requester check runs before the counter check: an incoming share
// request mutates RequesterID without necessarily advancing this account's
// own counter, and a temp-card change alongside it distinguishes a
// community reveal from a private hand request. This ordering is
// load-bearing; do not reorder.
func DetectTransition(before, after Snapshot) (Transition, error) {
	if after.ActionType < before.ActionType {
		return Transition{}, fmt.Errorf(
			"protocol: action counter regressed %d -> %d", before.ActionType, after.ActionType)
	}

	if after.RequesterID != before.RequesterID {
		if after.TempCardDigest != before.TempCardDigest {
			return Transition{
				Kind:        TransitionCommunityReveal,
				RequesterID: after.RequesterID,
			}, nil
		}
		return Transition{
			Kind:        TransitionRelayRequest,
			RequesterID: after.RequesterID,
		}, nil
	}

	if after.ActionType == before.ActionType {
		return Transition{Kind: TransitionNone}, nil
	}

	step, err := DecodeCounter(after.ActionType)
	if err != nil {
		return Transition{}, err
	}
	return Transition{Kind: TransitionStep, Step: step}, nil
}
