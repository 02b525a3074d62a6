package battle

import (
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/rng"
)

// Simulator produces opponent score increments when no real opponent
// feed is connected. On each battle tick it scores with a fixed
// probability, for a bounded random amount.
type Simulator struct {
	rng    *rng.Service
	chance float64
	min    int64
	max    int64
}

// NewSimulator creates a simulator. chance is the per-tick scoring
// probability; min and max bound each increment.
func NewSimulator(r *rng.Service, chance float64, min, max int64) *Simulator {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &Simulator{rng: r, chance: chance, min: min, max: max}
}

// OnTick returns the opponent's score increment for this tick, zero when
// the opponent does not score. RNG failures score nothing.
func (s *Simulator) OnTick() int64 {
	hit, err := s.rng.Chance(s.chance)
	if err != nil || !hit {
		return 0
	}
	n, err := s.rng.IntRange(s.min, s.max)
	if err != nil {
		return 0
	}
	return n
}
