// Package domain contains the core domain models for the live gift and
// battle engine: the gift catalog, viewer progression, combo and battle
// state, and the session event feed.
package domain

import (
	"encoding/json"
	"time"
)

// GiftCategory groups catalog entries for display
type GiftCategory string

const (
	GiftCategoryClassic GiftCategory = "classic"
	GiftCategoryPremium GiftCategory = "premium"
	GiftCategoryEvent   GiftCategory = "event"
)

// Gift represents a catalog entry for a purchasable virtual gift.
// Catalog entries are built at process start and never mutated.
type Gift struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Cost      int64        `json:"cost"` // Cost in coins, always positive
	Animation string       `json:"animation"`
	Category  GiftCategory `json:"category"`
}

// PlayToken is an opaque handle representing "this gift's animation should
// play now", queued for sequential display on the playback surface.
type PlayToken struct {
	ID        string `json:"id"`
	GiftID    string `json:"gift_id"`
	Animation string `json:"animation"`
}

// SpendResult reports the progression outcome of a single spend.
// LevelsGained counts thresholds crossed in this one call; callers emit at
// most one level-up notice per call regardless of how many were crossed.
type SpendResult struct {
	Level        int   `json:"level"`
	XP           int64 `json:"xp"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained int   `json:"levels_gained"`
}

// ComboState is a snapshot of the running same-gift multiplier.
type ComboState struct {
	Active    bool      `json:"active"`
	GiftID    string    `json:"gift_id,omitempty"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// BattleMode represents the battle state machine phase
type BattleMode string

const (
	BattleInactive BattleMode = "inactive"
	BattleActive   BattleMode = "active"
	BattleEnded    BattleMode = "ended"
)

// BattleWinner identifies the side that won an ended battle
type BattleWinner string

const (
	WinnerNone     BattleWinner = ""
	WinnerSelf     BattleWinner = "self"
	WinnerOpponent BattleWinner = "opponent"
	WinnerTie      BattleWinner = "tie"
)

// BattleState is a snapshot of a battle. Scores only grow while the battle
// is active; Winner is set exactly once, when the clock reaches zero.
type BattleState struct {
	Mode             BattleMode   `json:"mode"`
	OpponentLabel    string       `json:"opponent_label,omitempty"`
	RemainingSeconds int          `json:"remaining_seconds"`
	ScoreSelf        int64        `json:"score_self"`
	ScoreOpponent    int64        `json:"score_opponent"`
	Winner           BattleWinner `json:"winner,omitempty"`
}

// LogEntry is one item in a session's event feed: a chat message, a gift
// announcement, or a system notice. Entries are immutable once appended.
type LogEntry struct {
	ID          string    `json:"id"`
	AuthorLabel string    `json:"author_label"`
	AuthorLevel *int      `json:"author_level,omitempty"`
	Text        string    `json:"text"`
	IsSystem    bool      `json:"is_system"`
	IsGift      bool      `json:"is_gift"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventSeverity represents audit event severity
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// AuditEvent represents a significant event recorded for diagnostics:
// gift sends, level-ups, battle lifecycle, playback failures.
type AuditEvent struct {
	ID          string          `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	Severity    EventSeverity   `json:"severity" db:"severity"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	ViewerID    *string         `json:"viewer_id,omitempty" db:"viewer_id"`
	SessionID   *string         `json:"session_id,omitempty" db:"session_id"`
	Description string          `json:"description" db:"description"`
	Data        json.RawMessage `json:"data,omitempty" db:"data"`
	Component   string          `json:"component" db:"component"`
}

// SessionInfo summarizes a live broadcast session for listings.
type SessionInfo struct {
	ID          string    `json:"id"`
	Broadcaster string    `json:"broadcaster"`
	StartedAt   time.Time `json:"started_at"`
	BattleMode  BattleMode `json:"battle_mode"`
}
