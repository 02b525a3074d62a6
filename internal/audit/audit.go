// Package audit records significant engine events for diagnostics:
// gift sends, level-ups, battle lifecycle, playback failures.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// Event types
const (
	EventViewerJoined    = "viewer_joined"
	EventSessionCreated  = "session_created"
	EventSessionClosed   = "session_closed"
	EventGiftSent        = "gift_sent"
	EventInsufficient    = "insufficient_funds"
	EventLevelUp         = "level_up"
	EventBattleStarted   = "battle_started"
	EventBattleEnded     = "battle_ended"
	EventBattleStopped   = "battle_stopped"
	EventPlaybackFailure = "playback_failure"
	EventWalletTopUp     = "wallet_topup"
)

// Service provides audit logging. A nil *Service is a valid no-op sink,
// so the engine runs without a database.
type Service struct {
	db *sql.DB
}

// New creates a new audit service
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// LogEvent records a significant event
func (s *Service) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	dataJSON, _ := json.Marshal(event.Data)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, type, severity, timestamp, viewer_id, session_id, description, data, component)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.Type, event.Severity, event.Timestamp, event.ViewerID, event.SessionID,
		event.Description, string(dataJSON), event.Component)

	return err
}

// Log is a convenience method for logging events
func (s *Service) Log(ctx context.Context, eventType string, severity domain.EventSeverity, description string, data interface{}, opts ...EventOption) error {
	if s == nil || s.db == nil {
		return nil
	}

	event := &domain.AuditEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
		Description: description,
		Component:   "engine",
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err == nil {
			event.Data = jsonData
		}
	}

	for _, opt := range opts {
		opt(event)
	}

	return s.LogEvent(ctx, event)
}

// EventOption is a functional option for configuring audit events
type EventOption func(*domain.AuditEvent)

// WithViewer sets the viewer ID for the event
func WithViewer(viewerID string) EventOption {
	return func(e *domain.AuditEvent) {
		e.ViewerID = &viewerID
	}
}

// WithSession sets the session ID for the event
func WithSession(sessionID string) EventOption {
	return func(e *domain.AuditEvent) {
		e.SessionID = &sessionID
	}
}

// WithComponent sets the component for the event
func WithComponent(component string) EventOption {
	return func(e *domain.AuditEvent) {
		e.Component = component
	}
}

// GetEvents retrieves audit events with optional filtering
func (s *Service) GetEvents(ctx context.Context, filter *EventFilter) ([]*domain.AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `SELECT id, type, severity, timestamp, viewer_id, session_id, description, data, component
			  FROM audit_events WHERE 1=1`
	args := []interface{}{}
	paramIdx := 1

	if filter != nil {
		if filter.ViewerID != "" {
			query += fmt.Sprintf(" AND viewer_id = $%d", paramIdx)
			args = append(args, filter.ViewerID)
			paramIdx++
		}
		if filter.SessionID != "" {
			query += fmt.Sprintf(" AND session_id = $%d", paramIdx)
			args = append(args, filter.SessionID)
			paramIdx++
		}
		if filter.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", paramIdx)
			args = append(args, filter.Type)
			paramIdx++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND timestamp >= $%d", paramIdx)
			args = append(args, filter.From)
			paramIdx++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND timestamp <= $%d", paramIdx)
			args = append(args, filter.To)
			paramIdx++
		}
	}

	query += " ORDER BY timestamp DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", paramIdx)
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		var viewerID, sessionID sql.NullString
		var data string

		err := rows.Scan(&event.ID, &event.Type, &event.Severity, &event.Timestamp,
			&viewerID, &sessionID, &event.Description, &data, &event.Component)
		if err != nil {
			return nil, err
		}

		if viewerID.Valid {
			event.ViewerID = &viewerID.String
		}
		if sessionID.Valid {
			event.SessionID = &sessionID.String
		}
		if data != "" {
			event.Data = json.RawMessage(data)
		}

		events = append(events, &event)
	}

	return events, nil
}

// EventFilter defines criteria for filtering audit events
type EventFilter struct {
	ViewerID  string
	SessionID string
	Type      string
	From      time.Time
	To        time.Time
	Limit     int
}
