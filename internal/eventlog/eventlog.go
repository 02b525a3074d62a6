// Package eventlog keeps a session's bounded feed of chat messages, gift
// announcements, and system notices.
package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// DefaultCap bounds the number of retained entries
const DefaultCap = 200

// Subscriber receives every appended entry
type Subscriber func(entry domain.LogEntry)

// Log is an insertion-ordered, capped event feed. Appending past the cap
// drops the oldest entry. Entries are immutable once appended.
type Log struct {
	mu      sync.Mutex
	cap     int
	entries []domain.LogEntry
	subs    []Subscriber
}

// New creates a log with the given capacity
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Log{cap: capacity}
}

// Append stamps the entry with an id and timestamp, stores it, and
// notifies subscribers. Returns the stamped entry.
func (l *Log) Append(entry domain.LogEntry) domain.LogEntry {
	entry.ID = uuid.New().String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
	subs := l.subs
	l.mu.Unlock()

	// Notify outside the lock so a subscriber can read the log.
	for _, fn := range subs {
		fn(entry)
	}
	return entry
}

// Entries returns a copy of the retained entries, oldest first
func (l *Log) Entries() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Subscribe registers a subscriber for future appends
func (l *Log) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

// Chat builds a viewer chat entry
func Chat(authorLabel string, authorLevel int, text string, at time.Time) domain.LogEntry {
	return domain.LogEntry{
		AuthorLabel: authorLabel,
		AuthorLevel: &authorLevel,
		Text:        text,
		CreatedAt:   at,
	}
}

// SystemNotice builds a system entry (level-ups, battle lifecycle)
func SystemNotice(text string, at time.Time) domain.LogEntry {
	return domain.LogEntry{
		AuthorLabel: "system",
		Text:        text,
		IsSystem:    true,
		CreatedAt:   at,
	}
}

// GiftAnnouncement builds a gift entry. Combo counts above one render as
// a multiplier suffix.
func GiftAnnouncement(authorLabel string, authorLevel int, gift domain.Gift, comboCount int, at time.Time) domain.LogEntry {
	text := fmt.Sprintf("sent %s", gift.Name)
	if comboCount > 1 {
		text = fmt.Sprintf("sent %s ×%d", gift.Name, comboCount)
	}
	return domain.LogEntry{
		AuthorLabel: authorLabel,
		AuthorLevel: &authorLevel,
		Text:        text,
		IsGift:      true,
		CreatedAt:   at,
	}
}
