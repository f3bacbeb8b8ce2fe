package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/crow2678/Digital-Twin-sub001/pkg/config"
)

// SourceTag identifies this agent in outbound delivery requests.
const SourceTag = "chrome_extension"

// Client talks to the remote collector API. It implements the sync
// queue's Deliverer and the aggregation engine's RemoteStats.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a collector client from configuration.
func NewClient(cfg config.CollectorConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type deliveryRequest struct {
	UserID    string       `json:"user_id"`
	EventData events.Event `json:"event_data"`
	Timestamp string       `json:"timestamp"`
	Source    string       `json:"source"`
}

// DeliverEvent posts one event to the collector. Only a 2xx response
// counts as delivered.
func (c *Client) DeliverEvent(ctx context.Context, userID string, e events.Event) error {
	payload := deliveryRequest{
		UserID:    userID,
		EventData: e,
		Timestamp: time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339),
		Source:    SourceTag,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode delivery request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/behavioral-data", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver event: collector returned %d", resp.StatusCode)
	}
	return nil
}

// FetchUserStats queries the collector's per-user stats endpoint. A
// non-2xx status or malformed body is a source failure, not a fatal
// error; the caller advances to the next fallback.
func (c *Client) FetchUserStats(ctx context.Context, userID string) (*analytics.CanonicalStatistics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/"+userID+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch stats: collector returned %d", resp.StatusCode)
	}

	var stats analytics.CanonicalStatistics
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	return &stats, nil
}

// Health probes the collector's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collector unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
