package countdown

import (
	"sync"
	"time"
)

// DefaultInterval is the countdown redraw cadence.
const DefaultInterval = time.Second

// Scheduler emits redraw ticks on a fixed cadence, independent of the
// data-refresh timer. At most one ticker is ever active: Start stops
// any previous one before arming a new one.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	ticks    chan time.Time
	stop     chan struct{}
}

// NewScheduler creates a stopped scheduler. A non-positive interval
// falls back to DefaultInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		ticks:    make(chan time.Time, 1),
	}
}

// Ticks returns the tick channel. Ticks are dropped, not queued, when
// the consumer lags.
func (s *Scheduler) Ticks() <-chan time.Time {
	return s.ticks
}

// Start arms the ticker, replacing any running one.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				select {
				case s.ticks <- t:
				default:
				}
			case <-stop:
				return
			}
		}
	}()
}

// Stop cancels the ticker if one is running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Running reports whether a ticker is currently armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}
