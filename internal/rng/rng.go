// Package rng provides a cryptographically strong random source for the
// opponent score simulator.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// Service generates random values backed by crypto/rand
type Service struct {
	entropy io.Reader
	mu      sync.Mutex
}

// New creates a new RNG service using crypto/rand
func New() *Service {
	return &Service{entropy: rand.Reader}
}

// Int returns a random integer in range [0, max).
// Uses rejection sampling to eliminate modulo bias.
func (s *Service) Int(max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := uint64(1<<63-1) - (uint64(1<<63-1) % uint64(max))

	for {
		buf := make([]byte, 8)
		if _, err := io.ReadFull(s.entropy, buf); err != nil {
			return 0, fmt.Errorf("failed to generate random int: %w", err)
		}

		n := binary.BigEndian.Uint64(buf) >> 1 // 63 bits for positive range

		if n < threshold {
			return int64(n % uint64(max)), nil
		}
		// Reject and retry to avoid modulo bias
	}
}

// IntRange returns a random integer in range [min, max]
func (s *Service) IntRange(min, max int64) (int64, error) {
	if min > max {
		return 0, fmt.Errorf("min cannot be greater than max")
	}

	n, err := s.Int(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + n, nil
}

// Float returns a random float in range [0.0, 1.0)
func (s *Service) Float() (float64, error) {
	n, err := s.Int(1 << 53) // 53 bits of precision
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(1<<53), nil
}

// Chance returns true with probability p
func (s *Service) Chance(p float64) (bool, error) {
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	f, err := s.Float()
	if err != nil {
		return false, err
	}
	return f < p, nil
}
