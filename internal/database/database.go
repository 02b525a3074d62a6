// Package database provides the audit trail database connection
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the audit schema
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		type VARCHAR(100) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		viewer_id UUID,
		session_id UUID,
		description TEXT NOT NULL,
		data JSONB,
		component VARCHAR(100) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(type);
	CREATE INDEX IF NOT EXISTS idx_audit_events_session ON audit_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_audit_events_viewer ON audit_events(viewer_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Prune deletes audit events older than the retention cutoff. Returns
// the number of rows removed.
func (db *DB) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := db.Exec("DELETE FROM audit_events WHERE timestamp < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CleanData removes all audit events, for test environments
func (db *DB) CleanData() error {
	_, err := db.Exec("DELETE FROM audit_events")
	return err
}
