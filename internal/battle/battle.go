// Package battle implements the timed score battle between the session's
// broadcaster and an opponent. The controller is a pure state machine;
// the owning engine drives Tick from its clock and routes score events.
package battle

import (
	"errors"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

var (
	// ErrAlreadyActive is returned when starting over a running battle
	ErrAlreadyActive = errors.New("battle already active")
	// ErrInvalidDuration is returned for a non-positive battle duration
	ErrInvalidDuration = errors.New("invalid battle duration")
)

// Controller holds one session's battle state. It has no timer and no
// randomness of its own. Not safe for concurrent use; the owning engine
// serializes access.
type Controller struct {
	mode          domain.BattleMode
	opponentLabel string
	remaining     int
	scoreSelf     int64
	scoreOpponent int64
	winner        domain.BattleWinner
}

// New creates a controller in the inactive state
func New() *Controller {
	return &Controller{mode: domain.BattleInactive}
}

// Start begins a battle with the given duration in seconds. Allowed from
// the inactive and ended states; an ended battle's result is discarded.
func (c *Controller) Start(durationSeconds int, opponentLabel string) error {
	if durationSeconds <= 0 {
		return ErrInvalidDuration
	}
	if c.mode == domain.BattleActive {
		return ErrAlreadyActive
	}

	c.mode = domain.BattleActive
	c.opponentLabel = opponentLabel
	c.remaining = durationSeconds
	c.scoreSelf = 0
	c.scoreOpponent = 0
	c.winner = domain.WinnerNone
	return nil
}

// Tick advances the battle clock by one second. Returns true when this
// tick ended the battle. Ticks outside the active state are ignored, so
// a stale timer fire after Stop is harmless.
func (c *Controller) Tick() bool {
	if c.mode != domain.BattleActive {
		return false
	}

	c.remaining--
	if c.remaining > 0 {
		return false
	}

	c.remaining = 0
	c.mode = domain.BattleEnded
	switch {
	case c.scoreSelf > c.scoreOpponent:
		c.winner = domain.WinnerSelf
	case c.scoreOpponent > c.scoreSelf:
		c.winner = domain.WinnerOpponent
	default:
		c.winner = domain.WinnerTie
	}
	return true
}

// AddSelfScore adds to the broadcaster's score. Returns false when the
// battle is not active or the amount is not positive.
func (c *Controller) AddSelfScore(amount int64) bool {
	if c.mode != domain.BattleActive || amount <= 0 {
		return false
	}
	c.scoreSelf += amount
	return true
}

// AddOpponentScore adds to the opponent's score under the same rules
func (c *Controller) AddOpponentScore(amount int64) bool {
	if c.mode != domain.BattleActive || amount <= 0 {
		return false
	}
	c.scoreOpponent += amount
	return true
}

// Stop aborts any battle and resets to the inactive state. Idempotent;
// stopping an inactive controller is a no-op.
func (c *Controller) Stop() {
	c.mode = domain.BattleInactive
	c.opponentLabel = ""
	c.remaining = 0
	c.scoreSelf = 0
	c.scoreOpponent = 0
	c.winner = domain.WinnerNone
}

// Active reports whether a battle is running
func (c *Controller) Active() bool {
	return c.mode == domain.BattleActive
}

// State returns a snapshot of the battle
func (c *Controller) State() domain.BattleState {
	return domain.BattleState{
		Mode:             c.mode,
		OpponentLabel:    c.opponentLabel,
		RemainingSeconds: c.remaining,
		ScoreSelf:        c.scoreSelf,
		ScoreOpponent:    c.scoreOpponent,
		Winner:           c.winner,
	}
}
