package scorefeed

import (
	"fmt"
	"time"
)

// ClientConfig holds feed client configuration
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
}

// ScoreEvent is one opponent score increment from the feed
type ScoreEvent struct {
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// pollResponse is the provider's poll payload
type pollResponse struct {
	Events []ScoreEvent `json:"events"`
	Cursor string       `json:"cursor"`
}

// APIError is an error response from the feed provider
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scorefeed: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}
