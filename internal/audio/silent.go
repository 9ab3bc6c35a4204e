package audio

import (
	"sync"
	"time"

	"github.com/vovakirdan/termania/internal/timing"
)

// Silent is a song clock with no sound, running on the wall clock for a
// fixed length. Used when muted, over SSH and when no device is available.
type Silent struct {
	wall   timing.WallClock
	length time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	start   time.Time
}

// NewSilent creates a silent clock. A nil wall clock uses the system clock.
func NewSilent(length time.Duration, wall timing.WallClock) *Silent {
	if wall == nil {
		wall = timing.SystemClock{}
	}
	return &Silent{wall: wall, length: length}
}

func (s *Silent) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.started = true
		s.start = s.wall.Now()
	}
	return nil
}

func (s *Silent) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return 0
	}
	return min(s.wall.Now().Sub(s.start), s.length)
}

func (s *Silent) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped || (s.started && s.wall.Now().Sub(s.start) >= s.length)
}

func (s *Silent) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Length is the configured duration.
func (s *Silent) Length() time.Duration { return s.length }
