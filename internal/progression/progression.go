// Package progression tracks a viewer's level and experience. Every coin
// spent on a gift grants one XP; crossing a level threshold carries the
// remainder forward, and a single spend may cross several thresholds.
package progression

import (
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// ThresholdFunc returns the XP required to advance past the given level.
// Must be positive for every level.
type ThresholdFunc func(level int) int64

// DefaultThreshold requires level*1000 XP to advance past a level
func DefaultThreshold(level int) int64 {
	return int64(level) * 1000
}

// Tracker holds one viewer's progression state. Not safe for concurrent
// use; the owning engine serializes access.
type Tracker struct {
	level     int
	xp        int64
	threshold ThresholdFunc
}

// New creates a tracker at level 1 with the default threshold policy
func New() *Tracker {
	return NewWithThreshold(DefaultThreshold)
}

// NewWithThreshold creates a tracker with a custom threshold policy
func NewWithThreshold(fn ThresholdFunc) *Tracker {
	if fn == nil {
		fn = DefaultThreshold
	}
	return &Tracker{level: 1, threshold: fn}
}

// Level returns the current level
func (t *Tracker) Level() int {
	return t.level
}

// XP returns the XP accumulated toward the next level
func (t *Tracker) XP() int64 {
	return t.xp
}

// ApplySpend grants amount XP and resolves any level-ups. Excess XP
// carries into the new level, possibly cascading across several
// thresholds. After the call, xp is always below the current threshold.
func (t *Tracker) ApplySpend(amount int64) domain.SpendResult {
	if amount > 0 {
		t.xp += amount
	}

	gained := 0
	for t.xp >= t.threshold(t.level) {
		t.xp -= t.threshold(t.level)
		t.level++
		gained++
	}

	return domain.SpendResult{
		Level:        t.level,
		XP:           t.xp,
		LeveledUp:    gained > 0,
		LevelsGained: gained,
	}
}
