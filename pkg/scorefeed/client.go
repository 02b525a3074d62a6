package scorefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Handler receives opponent score events in delivery order
type Handler func(event ScoreEvent)

// Client polls the feed provider for opponent score events
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new feed client
func NewClient(config *ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// NewClientWithHTTPClient creates a new feed client with a custom HTTP client
func NewClientWithHTTPClient(config *ClientConfig, httpClient *http.Client) *Client {
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// Poll fetches events for a battle past the given cursor. Returns the
// events and the next cursor.
func (c *Client) Poll(ctx context.Context, battleID, cursor string) ([]ScoreEvent, string, error) {
	endpoint := fmt.Sprintf("%s/battles/%s/events", c.config.BaseURL, url.PathEscape(battleID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if cursor != "" {
		q := req.URL.Query()
		q.Set("cursor", cursor)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("poll failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, "", apiErr
	}

	var parsed pollResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed.Events, parsed.Cursor, nil
}

// Run polls until the context is cancelled, delivering each event to
// the handler. Poll errors are retried on the next interval.
func (c *Client) Run(ctx context.Context, battleID string, handler Handler) error {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	var cursor string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			events, next, err := c.Poll(ctx, battleID, cursor)
			if err != nil {
				continue
			}
			cursor = next
			for _, ev := range events {
				handler(ev)
			}
		}
	}
}
