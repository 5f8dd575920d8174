// Package broadcast is the off-chain coordination server: it republishes
// game events to websocket subscribers, serves aggregated table state read
// from ledger storage, and validates betting actions against the local
// game engine before they are signed into notes.
package broadcast

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mFragaBA/aze-cli/internal/cards"
	"github.com/mFragaBA/aze-cli/internal/game"
	"github.com/mFragaBA/aze-cli/internal/ledger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server exposes the HTTP/WS coordination surface for one table.
type Server struct {
	gameID uint64
	ledger ledger.Ledger
	hub    *Hub
	log    *zap.Logger

	// engine is the shared authoritative validator; one lock, no
	// reentrancy.
	mu     sync.Mutex
	engine *game.PokerGame
}

func NewServer(gameID uint64, l ledger.Ledger, engine *game.PokerGame, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		gameID: gameID,
		ledger: l,
		hub:    NewHub(log),
		log:    log,
		engine: engine,
	}
}

func (s *Server) gameIDString() string {
	return strconv.FormatUint(s.gameID, 10)
}

// Router wires the fixed coordination contract.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/publish", s.handlePublish)
	r.POST("/stats", s.handleStats)
	r.POST("/checkmove", s.handleCheckMove)
	r.GET("/ws/:game_id", s.handleWS)
	return r
}

type publishRequest struct {
	GameID string          `json:"game_id"`
	Event  json.RawMessage `json:"event"`
}

func (s *Server) handlePublish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.hub.Publish(req.GameID, req.Event)
	s.log.Debug("event published",
		zap.String("game", req.GameID),
		zap.Int("subscribers", s.hub.subscriberCount(req.GameID)))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type statsRequest struct {
	GameID string `json:"game_id"`
}

// StatsResponse is the aggregated table view assembled from ledger storage.
type StatsResponse struct {
	CommunityCards  []string `json:"community_cards"`
	PlayerBalances  []uint64 `json:"player_balances"`
	CurrentPlayer   uint64   `json:"current_player"`
	PotValue        uint64   `json:"pot_value"`
	PlayerHands     []string `json:"player_hands"`
	CurrentState    string   `json:"current_state"`
	PlayerHandCards []string `json:"player_hand_cards"`
	HasFolded       []bool   `json:"has_folded"`
	HighestBet      uint64   `json:"highest_bet"`
}

var phaseNames = map[uint64]string{
	cards.PhasePreflop: "preflop",
	cards.PhaseFlop:    "flop",
	cards.PhaseTurn:    "turn",
	cards.PhaseRiver:   "river",
}

func (s *Server) handleStats(c *gin.Context) {
	var req statsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.GameID != s.gameIDString() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}

	acct, err := s.ledger.GetAccount(s.gameID)
	if err != nil {
		s.log.Error("stats read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats, err := buildStats(acct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func buildStats(acct ledger.AccountSnapshot) (StatsResponse, error) {
	out := StatsResponse{
		PotValue:   acct.Slot(cards.PotValueSlot)[0],
		HighestBet: acct.Slot(cards.HighestBetSlot)[0],
	}

	phase := acct.Slot(cards.CurrentPhaseSlot)[0]

	// The reveal window slots start out holding the pre-shuffle deck, so a
	// slot that decodes as a card is only shown once its street is open.
	revealedAt := [cards.CommunityCards]uint64{
		cards.PhaseFlop, cards.PhaseFlop, cards.PhaseFlop, cards.PhaseTurn, cards.PhaseRiver,
	}
	for i, slot := range cards.CommunityCardSlots() {
		c, err := cards.FromSlot(acct.Slot(slot))
		if err != nil || phase < revealedAt[i] {
			out.CommunityCards = append(out.CommunityCards, "NA")
			continue
		}
		out.CommunityCards = append(out.CommunityCards, c.String())
	}

	name, ok := phaseNames[phase]
	if !ok {
		name = "unknown"
	}
	out.CurrentState = name

	turnBase := uint8(acct.Slot(cards.CurrentTurnIndexSlot)[0])
	out.CurrentPlayer = acct.Slot(turnBase)[0]

	for i := 0; i < cards.NoOfPlayers; i++ {
		base, err := cards.PlayerStatBase(i)
		if err != nil {
			return StatsResponse{}, err
		}
		out.PlayerBalances = append(out.PlayerBalances, acct.Slot(base+cards.PlayerBalanceOffset)[0])
		out.HasFolded = append(out.HasFolded, acct.Slot(base+cards.IsFoldOffset)[0] != 0)

		hand := acct.Slot(base + cards.HandOffset)
		if hand[0] == 0 {
			// nothing committed yet
			out.PlayerHands = append(out.PlayerHands, "NA")
			out.PlayerHandCards = append(out.PlayerHandCards, "NA")
			continue
		}
		rankName, err := cards.HandName(hand[2])
		if err != nil {
			rankName = "NA"
		}
		out.PlayerHands = append(out.PlayerHands, rankName)
		out.PlayerHandCards = append(out.PlayerHandCards,
			cards.CardFromNumber(hand[0])+" "+cards.CardFromNumber(hand[1]))
	}
	return out, nil
}

type checkMoveRequest struct {
	PlayerID uint64      `json:"player_id"`
	Action   game.Action `json:"action"`
}

// handleCheckMove validates (and applies) a betting action against the
// shared engine. The response is a single-element bool array.
func (s *Server) handleCheckMove(c *gin.Context) {
	var req checkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	ok := s.engine.CheckMove(req.Action, req.PlayerID)
	s.mu.Unlock()

	c.JSON(http.StatusOK, []bool{ok})
}

func (s *Server) handleWS(c *gin.Context) {
	gameID := c.Param("game_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, 16), gameID: gameID}
	s.hub.register(cl)
	go cl.writePump(s.hub)
	go cl.readPump(s.hub)
}
