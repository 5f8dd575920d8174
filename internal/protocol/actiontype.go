// Package protocol defines the sequencing state machine shared by all
// participants. A player account's progress is a single monotonically
// increasing counter on the wire; internally every step is a structured
// value and the numeric form exists only in EncodeCounter/DecodeCounter.
package protocol

import "fmt"

type Kind uint8

const (
	KindIdle Kind = iota
	// KindShuffle covers the shuffle/remask handoff: the table deals the
	// masked deck to hop 1, each hop remasks all 52 cards and relays.
	KindShuffle
	// KindRelay is the peer-to-peer inter-unmask relay for one reveal
	// purpose; peers answer the requester with their decryption shares.
	KindRelay
	// KindFinalUnmask is the requester applying its own final share.
	KindFinalUnmask
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindShuffle:
		return "shuffle"
	case KindRelay:
		return "relay"
	case KindFinalUnmask:
		return "finalUnmask"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Purpose names the reveal window a relay or final-unmask step serves.
type Purpose uint8

const (
	PurposeNone Purpose = iota
	PurposeHoleCards
	PurposeFlop
	PurposeTurn
	PurposeRiver
)

func (p Purpose) String() string {
	switch p {
	case PurposeNone:
		return "none"
	case PurposeHoleCards:
		return "holeCards"
	case PurposeFlop:
		return "flop"
	case PurposeTurn:
		return "turn"
	case PurposeRiver:
		return "river"
	}
	return fmt.Sprintf("purpose(%d)", uint8(p))
}

// Step is one position of the sequencing protocol.
//
// Ordinal is the offset within the step's counter range: hop index 1..4 for
// shuffle, 0..7 for relay, 0..3 for final unmask.
type Step struct {
	Kind    Kind
	Purpose Purpose
	Ordinal uint8
}

func (s Step) String() string {
	if s.Kind == KindIdle {
		return "idle"
	}
	if s.Purpose == PurposeNone {
		return fmt.Sprintf("%s[%d]", s.Kind, s.Ordinal)
	}
	return fmt.Sprintf("%s/%s[%d]", s.Kind, s.Purpose, s.Ordinal)
}

const (
	shuffleFirst = 1
	shuffleLast  = 4

	relaySpan = 8
	finalSpan = 4
	// Each reveal purpose owns a relay range and a final-unmask range.
	purposeStride = relaySpan + finalSpan

	holeCardsBase = 5
	maxCounter    = holeCardsBase + 4*purposeStride - 1 // 52
)

func purposeBase(p Purpose) (uint64, error) {
	switch p {
	case PurposeHoleCards:
		return holeCardsBase, nil
	case PurposeFlop:
		return holeCardsBase + purposeStride, nil
	case PurposeTurn:
		return holeCardsBase + 2*purposeStride, nil
	case PurposeRiver:
		return holeCardsBase + 3*purposeStride, nil
	}
	return 0, fmt.Errorf("protocol: purpose %v has no counter range", p)
}

// EncodeCounter maps a step to its wire counter value.
func EncodeCounter(s Step) (uint64, error) {
	switch s.Kind {
	case KindIdle:
		return 0, nil
	case KindShuffle:
		if s.Ordinal < shuffleFirst || s.Ordinal > shuffleLast {
			return 0, fmt.Errorf("protocol: shuffle hop %d out of range", s.Ordinal)
		}
		return uint64(s.Ordinal), nil
	case KindRelay:
		base, err := purposeBase(s.Purpose)
		if err != nil {
			return 0, err
		}
		if s.Ordinal >= relaySpan {
			return 0, fmt.Errorf("protocol: relay ordinal %d out of range", s.Ordinal)
		}
		return base + uint64(s.Ordinal), nil
	case KindFinalUnmask:
		base, err := purposeBase(s.Purpose)
		if err != nil {
			return 0, err
		}
		if s.Ordinal >= finalSpan {
			return 0, fmt.Errorf("protocol: final-unmask ordinal %d out of range", s.Ordinal)
		}
		return base + relaySpan + uint64(s.Ordinal), nil
	}
	return 0, fmt.Errorf("protocol: cannot encode kind %v", s.Kind)
}

// DecodeCounter maps a wire counter value back to a structured step.
func DecodeCounter(counter uint64) (Step, error) {
	switch {
	case counter == 0:
		return Step{Kind: KindIdle}, nil
	case counter <= shuffleLast:
		return Step{Kind: KindShuffle, Ordinal: uint8(counter)}, nil
	case counter <= maxCounter:
		offset := counter - holeCardsBase
		purpose := PurposeHoleCards + Purpose(offset/purposeStride)
		within := uint8(offset % purposeStride)
		if within < relaySpan {
			return Step{Kind: KindRelay, Purpose: purpose, Ordinal: within}, nil
		}
		return Step{Kind: KindFinalUnmask, Purpose: purpose, Ordinal: within - relaySpan}, nil
	}
	return Step{}, fmt.Errorf("protocol: counter %d out of range", counter)
}

// RevealWindow returns the deck position and card count for a community
// reveal purpose.
func RevealWindow(p Purpose, flopIndex uint8) (slot uint8, count int, err error) {
	switch p {
	case PurposeFlop:
		return flopIndex, 3, nil
	case PurposeTurn:
		return flopIndex + 3, 1, nil
	case PurposeRiver:
		return flopIndex + 4, 1, nil
	}
	return 0, 0, fmt.Errorf("protocol: %v is not a community reveal", p)
}
