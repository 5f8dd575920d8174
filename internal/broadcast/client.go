package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mFragaBA/aze-cli/internal/game"
)

// Client talks to a coordination server over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// BroadcastMessage publishes an event to every subscriber of the game.
func (c *Client) BroadcastMessage(ctx context.Context, gameID string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return c.post(ctx, "/publish", publishRequest{GameID: gameID, Event: raw}, nil)
}

// GetStats fetches the aggregated table view.
func (c *Client) GetStats(ctx context.Context, gameID string) (StatsResponse, error) {
	var out StatsResponse
	err := c.post(ctx, "/stats", statsRequest{GameID: gameID}, &out)
	return out, err
}

// ValidateAction asks the server's game engine whether the move is legal.
func (c *Client) ValidateAction(ctx context.Context, playerID uint64, action game.Action) (bool, error) {
	var out []bool
	if err := c.post(ctx, "/checkmove", checkMoveRequest{PlayerID: playerID, Action: action}, &out); err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("checkmove: unexpected response shape")
	}
	return out[0], nil
}
