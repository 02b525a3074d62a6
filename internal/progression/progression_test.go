package progression

import "testing"

func TestNewStartsAtLevelOne(t *testing.T) {
	tr := New()
	if tr.Level() != 1 {
		t.Errorf("expected level 1, got %d", tr.Level())
	}
	if tr.XP() != 0 {
		t.Errorf("expected 0 xp, got %d", tr.XP())
	}
}

func TestApplySpend(t *testing.T) {
	t.Run("no level up below threshold", func(t *testing.T) {
		tr := New()
		res := tr.ApplySpend(900)
		if res.LeveledUp {
			t.Error("should not level up at 900/1000")
		}
		if res.Level != 1 || res.XP != 900 {
			t.Errorf("expected level 1 xp 900, got level %d xp %d", res.Level, res.XP)
		}
	})

	t.Run("cascade across multiple thresholds", func(t *testing.T) {
		tr := New()
		tr.ApplySpend(900)

		// 900 + 2500 = 3400: level 1 needs 1000 (2400 left),
		// level 2 needs 2000 (400 left), level 3 needs 3000.
		res := tr.ApplySpend(2500)
		if !res.LeveledUp {
			t.Error("expected a level up")
		}
		if res.Level != 3 {
			t.Errorf("expected level 3, got %d", res.Level)
		}
		if res.XP != 400 {
			t.Errorf("expected xp 400, got %d", res.XP)
		}
		if res.LevelsGained != 2 {
			t.Errorf("expected 2 levels gained, got %d", res.LevelsGained)
		}
	})

	t.Run("exact threshold levels up with zero remainder", func(t *testing.T) {
		tr := New()
		res := tr.ApplySpend(1000)
		if res.Level != 2 || res.XP != 0 {
			t.Errorf("expected level 2 xp 0, got level %d xp %d", res.Level, res.XP)
		}
	})

	t.Run("non-positive amounts are inert", func(t *testing.T) {
		tr := New()
		tr.ApplySpend(500)
		res := tr.ApplySpend(0)
		if res.Level != 1 || res.XP != 500 {
			t.Errorf("zero spend changed state: level %d xp %d", res.Level, res.XP)
		}
		res = tr.ApplySpend(-100)
		if res.XP != 500 {
			t.Errorf("negative spend changed xp: %d", res.XP)
		}
	})
}

func TestXPAlwaysBelowThreshold(t *testing.T) {
	tr := New()
	amounts := []int64{1, 999, 1000, 1001, 5000, 12345, 100000}
	for _, a := range amounts {
		res := tr.ApplySpend(a)
		if res.XP >= DefaultThreshold(res.Level) {
			t.Errorf("after spend %d: xp %d >= threshold %d at level %d",
				a, res.XP, DefaultThreshold(res.Level), res.Level)
		}
	}
}

func TestCustomThreshold(t *testing.T) {
	tr := NewWithThreshold(func(level int) int64 { return 100 })
	res := tr.ApplySpend(250)
	if res.Level != 3 || res.XP != 50 {
		t.Errorf("expected level 3 xp 50, got level %d xp %d", res.Level, res.XP)
	}
	if res.LevelsGained != 2 {
		t.Errorf("expected 2 levels gained, got %d", res.LevelsGained)
	}
}

func TestNilThresholdFallsBack(t *testing.T) {
	tr := NewWithThreshold(nil)
	res := tr.ApplySpend(1000)
	if res.Level != 2 {
		t.Errorf("expected default policy, got level %d", res.Level)
	}
}
