// Package playback schedules gift animations for sequential display.
// At most one animation plays at a time; the rest wait in a strict FIFO
// queue. The playback surface reports completion (or failure, treated
// the same) to release the slot.
package playback

import (
	"sync"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// PlayFunc is invoked whenever a token enters the playing slot
type PlayFunc func(token domain.PlayToken)

// Scheduler owns the playing slot and the pending queue
type Scheduler struct {
	mu      sync.Mutex
	queue   []domain.PlayToken
	playing *domain.PlayToken
	play    PlayFunc
}

// New creates a scheduler. play may be nil when no surface is attached.
func New(play PlayFunc) *Scheduler {
	return &Scheduler{play: play}
}

// Enqueue accepts a token unconditionally. If the playing slot is free
// the token starts immediately; otherwise it waits its turn.
func (s *Scheduler) Enqueue(token domain.PlayToken) {
	s.mu.Lock()
	if s.playing != nil {
		s.queue = append(s.queue, token)
		s.mu.Unlock()
		return
	}
	s.playing = &token
	play := s.play
	s.mu.Unlock()

	if play != nil {
		play(token)
	}
}

// OnCurrentCompleted releases the playing slot and promotes the queue
// head, if any. A completion report with nothing playing is ignored.
func (s *Scheduler) OnCurrentCompleted() {
	s.mu.Lock()
	if s.playing == nil {
		s.mu.Unlock()
		return
	}
	s.playing = nil
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.playing = &next
	play := s.play
	s.mu.Unlock()

	if play != nil {
		play(next)
	}
}

// NowPlaying returns the token currently playing, if any
func (s *Scheduler) NowPlaying() (domain.PlayToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing == nil {
		return domain.PlayToken{}, false
	}
	return *s.playing, true
}

// PendingCount returns the number of tokens waiting behind the slot
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
