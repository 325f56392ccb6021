package refresh

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/metrics"
)

// Tick is delivered when a refresh timer fires. Gen identifies the arm that
// produced it; see Scheduler.Claim.
type Tick struct {
	Resource connection.Resource
	Gen      uint64
}

// FireFunc receives ticks. It runs on the timer goroutine and must not block.
type FireFunc func(Tick)

// Delays holds the refresh delay per resource.
type Delays struct {
	Book     time.Duration
	Ticker   time.Duration
	Blocknum time.Duration
	Candles  time.Duration
}

// DefaultDelays returns the standard polling cadence.
func DefaultDelays() Delays {
	return Delays{
		Book:     10 * time.Second,
		Ticker:   10 * time.Second,
		Blocknum: time.Second,
		Candles:  time.Hour,
	}
}

// For returns the delay for resource, or 0 for resources that are not refreshed.
func (d Delays) For(resource connection.Resource) time.Duration {
	switch resource {
	case connection.ResourceBook:
		return d.Book
	case connection.ResourceTicker:
		return d.Ticker
	case connection.ResourceBlocknum:
		return d.Blocknum
	case connection.ResourceCandles:
		return d.Candles
	}
	return 0
}

// stopper is the part of *time.Timer the scheduler needs.
type stopper interface {
	Stop() bool
}

type pending struct {
	timer    stopper
	deadline time.Time
	gen      uint64
}

// Scheduler keeps at most one armed timer per resource. Arming a resource
// again cancels the previous timer, so the delay always counts from the
// latest response.
type Scheduler struct {
	fire   FireFunc
	logger *slog.Logger

	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper

	mu      sync.Mutex
	timers  map[connection.Resource]*pending
	latest  map[connection.Resource]uint64
	gen     uint64
	stopped bool
}

// New creates a Scheduler that delivers ticks to fire.
func New(fire FireFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		fire:   fire,
		logger: logger,
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		timers: make(map[connection.Resource]*pending),
		latest: make(map[connection.Resource]uint64),
	}
}

// Arm schedules a refresh of resource after delay, replacing any armed timer
// for the same resource. It is a no-op after Stop.
func (s *Scheduler) Arm(resource connection.Resource, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if p, ok := s.timers[resource]; ok {
		// Stop reports false when the timer already fired; the stale tick
		// is rejected by Claim.
		p.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.latest[resource] = gen
	s.timers[resource] = &pending{
		timer:    s.afterFunc(delay, func() { s.expire(resource, gen) }),
		deadline: s.now().Add(delay),
		gen:      gen,
	}

	s.logger.Debug("refresh armed", "resource", resource, "delay", delay)
}

// expire runs on the timer goroutine.
func (s *Scheduler) expire(resource connection.Resource, gen uint64) {
	s.mu.Lock()
	p, ok := s.timers[resource]
	if !ok || p.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, resource)
	s.mu.Unlock()

	metrics.RefreshFired.WithLabelValues(string(resource)).Inc()
	s.fire(Tick{Resource: resource, Gen: gen})
}

// Claim reports whether t is still the latest arm for its resource. A tick
// becomes stale when the resource is re-armed or cancelled after the timer
// fired but before the tick was handled.
func (s *Scheduler) Claim(t Tick) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.latest[t.Resource] == t.Gen
}

// Cancel disarms the timer for resource. Cancelling a resource with no
// armed timer, or one that already fired, is a no-op.
func (s *Scheduler) Cancel(resource connection.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.timers[resource]; ok {
		p.timer.Stop()
		delete(s.timers, resource)
	}
	delete(s.latest, resource)
}

// Pending reports whether a timer is armed for resource.
func (s *Scheduler) Pending(resource connection.Resource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[resource]
	return ok
}

// Deadline returns when the armed timer for resource fires.
func (s *Scheduler) Deadline(resource connection.Resource) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[resource]
	if !ok {
		return time.Time{}, false
	}
	return p.deadline, true
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer. Later calls to Arm are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for resource, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, resource)
	}
	s.stopped = true
}
