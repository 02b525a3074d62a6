package battle

import (
	"errors"
	"testing"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/rng"
)

func TestStart(t *testing.T) {
	t.Run("starts from inactive", func(t *testing.T) {
		c := New()
		if err := c.Start(60, "RivalStreamer"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		st := c.State()
		if st.Mode != domain.BattleActive {
			t.Errorf("expected active, got %s", st.Mode)
		}
		if st.RemainingSeconds != 60 {
			t.Errorf("expected 60s remaining, got %d", st.RemainingSeconds)
		}
		if st.ScoreSelf != 0 || st.ScoreOpponent != 0 {
			t.Errorf("scores not zeroed: %d vs %d", st.ScoreSelf, st.ScoreOpponent)
		}
		if st.OpponentLabel != "RivalStreamer" {
			t.Errorf("expected opponent label, got %q", st.OpponentLabel)
		}
	})

	t.Run("rejects start while active", func(t *testing.T) {
		c := New()
		c.Start(60, "a")
		if err := c.Start(30, "b"); !errors.Is(err, ErrAlreadyActive) {
			t.Errorf("expected ErrAlreadyActive, got %v", err)
		}
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		c := New()
		if err := c.Start(0, "a"); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("expected ErrInvalidDuration, got %v", err)
		}
	})

	t.Run("restart from ended discards the result", func(t *testing.T) {
		c := New()
		c.Start(1, "a")
		c.AddSelfScore(100)
		c.Tick()
		if c.State().Mode != domain.BattleEnded {
			t.Fatal("battle should have ended")
		}
		if err := c.Start(30, "b"); err != nil {
			t.Fatalf("restart from ended failed: %v", err)
		}
		st := c.State()
		if st.ScoreSelf != 0 || st.Winner != domain.WinnerNone {
			t.Errorf("previous result leaked: %+v", st)
		}
	})
}

func TestTick(t *testing.T) {
	t.Run("decrements and ends at zero", func(t *testing.T) {
		c := New()
		c.Start(3, "a")
		c.AddSelfScore(100)

		if c.Tick() {
			t.Error("ended too early at 2s")
		}
		if c.Tick() {
			t.Error("ended too early at 1s")
		}
		if !c.Tick() {
			t.Error("expected the final tick to end the battle")
		}

		st := c.State()
		if st.Mode != domain.BattleEnded {
			t.Errorf("expected ended, got %s", st.Mode)
		}
		if st.Winner != domain.WinnerSelf {
			t.Errorf("expected self winner, got %s", st.Winner)
		}
		if st.ScoreSelf != 100 || st.ScoreOpponent != 0 {
			t.Errorf("unexpected final scores: %d vs %d", st.ScoreSelf, st.ScoreOpponent)
		}
	})

	t.Run("opponent wins", func(t *testing.T) {
		c := New()
		c.Start(1, "a")
		c.AddSelfScore(50)
		c.AddOpponentScore(80)
		c.Tick()
		if got := c.State().Winner; got != domain.WinnerOpponent {
			t.Errorf("expected opponent winner, got %s", got)
		}
	})

	t.Run("equal scores tie", func(t *testing.T) {
		c := New()
		c.Start(1, "a")
		c.AddSelfScore(50)
		c.AddOpponentScore(50)
		c.Tick()
		if got := c.State().Winner; got != domain.WinnerTie {
			t.Errorf("expected tie, got %s", got)
		}
	})

	t.Run("zero-zero is a tie", func(t *testing.T) {
		c := New()
		c.Start(1, "a")
		c.Tick()
		if got := c.State().Winner; got != domain.WinnerTie {
			t.Errorf("expected tie, got %s", got)
		}
	})

	t.Run("ignored outside active state", func(t *testing.T) {
		c := New()
		if c.Tick() {
			t.Error("tick on inactive controller reported an end")
		}
		c.Start(1, "a")
		c.Tick()
		if c.Tick() {
			t.Error("tick on ended controller reported an end")
		}
		if got := c.State().Mode; got != domain.BattleEnded {
			t.Errorf("state changed by stale tick: %s", got)
		}
	})
}

func TestScoring(t *testing.T) {
	t.Run("accumulates while active", func(t *testing.T) {
		c := New()
		c.Start(60, "a")
		if !c.AddSelfScore(10) || !c.AddSelfScore(15) {
			t.Error("score adds rejected while active")
		}
		if !c.AddOpponentScore(7) {
			t.Error("opponent add rejected while active")
		}
		st := c.State()
		if st.ScoreSelf != 25 || st.ScoreOpponent != 7 {
			t.Errorf("unexpected scores: %d vs %d", st.ScoreSelf, st.ScoreOpponent)
		}
	})

	t.Run("no-op when inactive or ended", func(t *testing.T) {
		c := New()
		if c.AddSelfScore(10) {
			t.Error("score accepted while inactive")
		}
		c.Start(1, "a")
		c.Tick()
		if c.AddOpponentScore(10) {
			t.Error("score accepted after end")
		}
		if got := c.State().ScoreOpponent; got != 0 {
			t.Errorf("late score recorded: %d", got)
		}
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		c := New()
		c.Start(60, "a")
		if c.AddSelfScore(0) || c.AddSelfScore(-5) {
			t.Error("non-positive score accepted")
		}
	})
}

func TestStop(t *testing.T) {
	c := New()
	c.Start(60, "a")
	c.AddSelfScore(40)

	c.Stop()
	st := c.State()
	if st.Mode != domain.BattleInactive {
		t.Errorf("expected inactive, got %s", st.Mode)
	}
	if st.ScoreSelf != 0 || st.RemainingSeconds != 0 || st.OpponentLabel != "" {
		t.Errorf("state not fully reset: %+v", st)
	}

	// Idempotent.
	c.Stop()
	if c.State().Mode != domain.BattleInactive {
		t.Error("second stop changed state")
	}
}

func TestSimulator(t *testing.T) {
	r := rng.New()

	t.Run("zero chance never scores", func(t *testing.T) {
		sim := NewSimulator(r, 0, 50, 500)
		for i := 0; i < 100; i++ {
			if got := sim.OnTick(); got != 0 {
				t.Fatalf("scored %d with zero chance", got)
			}
		}
	})

	t.Run("certain chance scores in bounds", func(t *testing.T) {
		sim := NewSimulator(r, 1, 50, 500)
		for i := 0; i < 100; i++ {
			got := sim.OnTick()
			if got < 50 || got > 500 {
				t.Fatalf("increment %d out of bounds [50, 500]", got)
			}
		}
	})

	t.Run("degenerate bounds clamp", func(t *testing.T) {
		sim := NewSimulator(r, 1, 0, -10)
		if got := sim.OnTick(); got != 1 {
			t.Errorf("expected clamped increment 1, got %d", got)
		}
	})
}
