// Package sequencer drives the masking protocol for one participant: the
// shuffle/remask handoff, the inter-unmask relay, final unmasking and hand
// commitment. Handlers receive decoded note payloads from the reactor loop
// and emit follow-up transactions through the ledger executor.
package sequencer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/azecrypto"
	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/holdem"
	"github.com/mFragaBA/aze-cli/internal/ledger"
	"github.com/mFragaBA/aze-cli/internal/protocol"
)

// Player holds one seat's masking keys and relay state.
type Player struct {
	id     uint64
	gameID uint64
	seat   int

	sk azecrypto.Scalar
	pk azecrypto.Point

	// peers is the fixed relay order for this seat's reveal requests.
	peers [3]uint64

	exec *ledger.Executor
	log  *zap.Logger

	mu      sync.Mutex
	agg     azecrypto.Point
	hole    [2]cards.Card
	holeSet bool
}

func NewPlayer(id, gameID uint64, seat int, seed []byte, peers [3]uint64, exec *ledger.Executor, log *zap.Logger) (*Player, error) {
	if seat < 0 || seat >= cards.NoOfPlayers {
		return nil, fmt.Errorf("seat %d out of range", seat)
	}
	if log == nil {
		log = zap.NewNop()
	}
	sk, pk, err := azecrypto.KeyGen(seed)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	return &Player{
		id:     id,
		gameID: gameID,
		seat:   seat,
		sk:     sk,
		pk:     pk,
		peers:  peers,
		exec:   exec,
		log:    log,
	}, nil
}

func (p *Player) ID() uint64                 { return p.id }
func (p *Player) Seat() int                  { return p.seat }
func (p *Player) PublicKey() azecrypto.Point { return p.pk }

// SetAggregateKey installs the summed table key once every seat has
// published its share.
func (p *Player) SetAggregateKey(agg azecrypto.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg = agg
}

func (p *Player) aggregate() azecrypto.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agg
}

// HoleCards returns the plaintext hole cards once the preflop reveal has
// completed.
func (p *Player) HoleCards() ([2]cards.Card, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hole, p.holeSet
}

// HandleShuffle remasks and reshuffles the full deck, then hands it to the
// next hop named in the incoming player data, or back to the table when
// this seat is the last hop.
func (p *Player) HandleShuffle(ctx context.Context, deck [cards.DeckSize]azecrypto.CipherCard, playerData [4]uint64) error {
	agg := p.aggregate()
	for i := range deck {
		r, err := azecrypto.RandomScalar()
		if err != nil {
			return err
		}
		deck[i], err = azecrypto.Remask(agg, deck[i], r)
		if err != nil {
			return fmt.Errorf("remask card %d: %w", i+1, err)
		}
	}
	if err := shuffleDeck(&deck); err != nil {
		return err
	}

	next := playerData[1]
	if next == 0 {
		p.log.Info("shuffle chain complete, returning deck to table",
			zap.Uint64("player", p.id))
		note, err := ledger.NewSetCardsNote(p.id, p.gameID, deck)
		if err != nil {
			return err
		}
		return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
	}

	forward := [4]uint64{playerData[0] + 1, playerData[2], playerData[3], 0}
	p.log.Info("forwarding remasked deck",
		zap.Uint64("player", p.id),
		zap.Uint64("next", next))
	note, err := ledger.NewRemaskNote(p.id, next, deck, forward)
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// cardCount is how many live ciphertexts a reveal purpose carries.
func cardCount(purpose protocol.Purpose) (int, error) {
	switch purpose {
	case protocol.PurposeHoleCards:
		return 2, nil
	case protocol.PurposeFlop:
		return 3, nil
	case protocol.PurposeTurn, protocol.PurposeRiver:
		return 1, nil
	}
	return 0, fmt.Errorf("purpose %v carries no cards", purpose)
}

// sendHop forwards the relay payload to the hop'th peer (1-based). The
// embedded player data tells the responder which counter value to echo
// back, advancing this seat's own state machine when the response lands.
func (p *Player) sendHop(ctx context.Context, purpose protocol.Purpose, hop int, cts [3]azecrypto.CipherCard) error {
	if hop < 1 || hop > len(p.peers) {
		return fmt.Errorf("relay hop %d out of range", hop)
	}
	var next uint64
	var err error
	if hop < len(p.peers) {
		next, err = protocol.EncodeCounter(protocol.Step{
			Kind: protocol.KindRelay, Purpose: purpose, Ordinal: uint8(hop),
		})
	} else {
		next, err = protocol.EncodeCounter(protocol.Step{
			Kind: protocol.KindFinalUnmask, Purpose: purpose, Ordinal: uint8(p.seat),
		})
	}
	if err != nil {
		return err
	}

	target := p.peers[hop-1]
	p.log.Info("requesting decryption share",
		zap.Uint64("player", p.id),
		zap.Uint64("peer", target),
		zap.Stringer("purpose", purpose),
		zap.Int("hop", hop))
	note, err := ledger.NewInterUnmaskNote(p.id, target, cts, p.id, [4]uint64{next, 0, 0, 0})
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// StartHoleRelay opens the private-hand reveal after the deal.
func (p *Player) StartHoleRelay(ctx context.Context, hole [2]azecrypto.CipherCard) error {
	cts := [3]azecrypto.CipherCard{hole[0], hole[1], azecrypto.ZeroCipher()}
	return p.sendHop(ctx, protocol.PurposeHoleCards, 1, cts)
}

// StartCommunityRelay opens a community reveal this seat was asked to
// coordinate. The trigger note's player data names the reveal purpose.
func (p *Player) StartCommunityRelay(ctx context.Context, v ledger.InterUnmaskNote) error {
	step, err := protocol.DecodeCounter(v.PlayerData[0])
	if err != nil {
		return err
	}
	if step.Kind != protocol.KindRelay {
		return fmt.Errorf("community trigger counter %d is not a relay step", v.PlayerData[0])
	}
	return p.sendHop(ctx, step.Purpose, 1, v.Cards)
}

// HandleRelayResponse forwards the partial decryptions to the next peer.
func (p *Player) HandleRelayResponse(ctx context.Context, v ledger.SendUnmaskedCardsNote, step protocol.Step) error {
	if step.Kind != protocol.KindRelay {
		return fmt.Errorf("step %v is not a relay response", step)
	}
	return p.sendHop(ctx, step.Purpose, int(step.Ordinal)+1, v.Cards)
}

// AnswerRelay computes this seat's decryption share over the requested
// cards and answers the requester. The echoed counter names the purpose,
// which bounds how many of the three carrier entries are live.
func (p *Player) AnswerRelay(ctx context.Context, v ledger.InterUnmaskNote) error {
	step, err := protocol.DecodeCounter(v.PlayerData[0])
	if err != nil {
		return err
	}
	count, err := cardCount(step.Purpose)
	if err != nil {
		return err
	}
	shares := [3]azecrypto.CipherCard{azecrypto.ZeroCipher(), azecrypto.ZeroCipher(), azecrypto.ZeroCipher()}
	for i := 0; i < count; i++ {
		shares[i] = azecrypto.InterUnmask(v.Cards[i], p.sk)
	}
	p.log.Info("answering share request",
		zap.Uint64("player", p.id),
		zap.Uint64("requester", v.RequesterID))
	note, err := ledger.NewSendUnmaskedCardsNote(p.id, v.RequesterID, shares, v.PlayerData)
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// HandleFinalUnmask applies this seat's own share last and lands the
// plaintext: hole cards stay on the player's account, community cards are
// forwarded to the table's reveal window.
func (p *Player) HandleFinalUnmask(ctx context.Context, v ledger.SendUnmaskedCardsNote, purpose protocol.Purpose) error {
	count, err := cardCount(purpose)
	if err != nil {
		return err
	}
	revealed := make([]cards.Card, count)
	for i := 0; i < count; i++ {
		pt := azecrypto.FinalUnmask(v.Cards[i], p.sk)
		id, ok := azecrypto.CardFromPoint(pt)
		if !ok {
			return fmt.Errorf("final unmask: card %d does not decode", i)
		}
		c, err := cards.FromIndex(id)
		if err != nil {
			return err
		}
		revealed[i] = c
	}

	if purpose == protocol.PurposeHoleCards {
		p.mu.Lock()
		p.hole = [2]cards.Card{revealed[0], revealed[1]}
		p.holeSet = true
		p.mu.Unlock()

		payload := [3]cards.Slot{revealed[0].ToSlot(), revealed[1].ToSlot()}
		note, err := ledger.NewUnmaskNote(p.id, p.id, payload, cards.PlayerCard1Slot)
		if err != nil {
			return err
		}
		p.log.Info("hole cards revealed", zap.Uint64("player", p.id))
		return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
	}

	window, _, err := protocol.RevealWindow(purpose, cards.FlopIndex)
	if err != nil {
		return err
	}
	var payload [3]cards.Slot
	for i, c := range revealed {
		payload[i] = c.ToSlot()
	}
	p.log.Info("community cards revealed",
		zap.Uint64("player", p.id),
		zap.Stringer("purpose", purpose))
	note, err := ledger.NewUnmaskNote(p.id, p.gameID, payload, window)
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// CommitHand evaluates the revealed hand against the board and records it
// in the table's stat block.
func (p *Player) CommitHand(ctx context.Context, board []cards.Card) error {
	hole, ok := p.HoleCards()
	if !ok {
		return fmt.Errorf("hole cards not yet revealed")
	}
	rank, err := holdem.RankHand(hole, board)
	if err != nil {
		return err
	}
	name, _ := cards.HandName(rank)
	p.log.Info("committing hand",
		zap.Uint64("player", p.id),
		zap.String("hand", name))
	note, err := ledger.NewSetHandNote(p.id, p.gameID, ledger.SetHandNote{
		HoleCard1:   uint64(hole[0].Index()),
		HoleCard2:   uint64(hole[1].Index()),
		HandRank:    rank,
		PlayerIndex: uint64(p.seat),
	})
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

// ---- Betting actions ----

func (p *Player) submitNote(ctx context.Context, note ledger.NoteEnvelope, err error) error {
	if err != nil {
		return err
	}
	return p.exec.ExecuteAndSync(ctx, ledger.NoteTransaction(note))
}

func (p *Player) Bet(ctx context.Context, amount uint64) error {
	note, err := ledger.NewPlayBetNote(p.id, p.gameID, amount)
	return p.submitNote(ctx, note, err)
}

func (p *Player) Raise(ctx context.Context, amount uint64) error {
	note, err := ledger.NewPlayRaiseNote(p.id, p.gameID, amount)
	return p.submitNote(ctx, note, err)
}

func (p *Player) Call(ctx context.Context) error {
	note, err := ledger.NewPlayCallNote(p.id, p.gameID)
	return p.submitNote(ctx, note, err)
}

func (p *Player) Check(ctx context.Context) error {
	note, err := ledger.NewPlayCheckNote(p.id, p.gameID)
	return p.submitNote(ctx, note, err)
}

func (p *Player) Fold(ctx context.Context) error {
	note, err := ledger.NewPlayFoldNote(p.id, p.gameID)
	return p.submitNote(ctx, note, err)
}
