package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler runs keyed one-shot timers. Scheduling a key that is already
// armed replaces the old timer.
type Scheduler[K comparable] struct {
	mu     sync.Mutex
	timers map[K]*time.Timer
}

func NewScheduler[K comparable]() *Scheduler[K] {
	return &Scheduler[K]{timers: make(map[K]*time.Timer)}
}

func (s *Scheduler[K]) Schedule(key K, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		current := s.timers[key] == t
		if current {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		// Canceled or replaced while waiting for the lock.
		if !current {
			return
		}
		fn()
	})
	s.timers[key] = t
}

// Cancel stops the timer for key. It reports whether one was pending.
func (s *Scheduler[K]) Cancel(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	t.Stop()
	return true
}

func (s *Scheduler[K]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler[K]) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
	log.Debug().Str("module", "app.scheduler").Msg("stopped all timers")
}
