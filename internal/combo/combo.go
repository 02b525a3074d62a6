// Package combo aggregates rapid repeat sends of the same gift into a
// running multiplier. The aggregator is a pure reducer over explicit
// timestamps; the owning engine supplies the clock and the expiry timer.
package combo

import (
	"time"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// DefaultWindow is the rolling inactivity window for a combo
const DefaultWindow = 5 * time.Second

// Aggregator tracks the session's single running combo. Not safe for
// concurrent use; the owning engine serializes access.
type Aggregator struct {
	window    time.Duration
	active    bool
	giftID    string
	count     int
	expiresAt time.Time
}

// New creates an aggregator with the given window
func New(window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Aggregator{window: window}
}

// RegisterSend records a gift send at the given instant and returns the
// resulting combo count. A new combo starts when there is no active
// combo, the active combo has expired, or the gift differs; otherwise
// the count increments. Either way the expiry extends to now + window.
func (a *Aggregator) RegisterSend(giftID string, now time.Time) int {
	if !a.active || now.After(a.expiresAt) || a.giftID != giftID {
		a.active = true
		a.giftID = giftID
		a.count = 1
	} else {
		a.count++
	}
	a.expiresAt = now.Add(a.window)
	return a.count
}

// ExpireIfStale clears the combo if its window has elapsed at the given
// instant. Returns true when a combo was actually cleared, so a stale
// timer fire after a refresh is a silent no-op.
func (a *Aggregator) ExpireIfStale(now time.Time) bool {
	if !a.active || !now.After(a.expiresAt) {
		return false
	}
	a.active = false
	a.giftID = ""
	a.count = 0
	a.expiresAt = time.Time{}
	return true
}

// Active reports whether a combo is running
func (a *Aggregator) Active() bool {
	return a.active
}

// ExpiresAt returns the current expiry instant, zero when inactive
func (a *Aggregator) ExpiresAt() time.Time {
	return a.expiresAt
}

// State returns a snapshot of the combo
func (a *Aggregator) State() domain.ComboState {
	return domain.ComboState{
		Active:    a.active,
		GiftID:    a.giftID,
		Count:     a.count,
		ExpiresAt: a.expiresAt,
	}
}
