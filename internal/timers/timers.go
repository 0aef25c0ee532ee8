// Package timers provides named one-shot timers whose expiries are delivered
// on a single channel, consumed by the daemon's event loop.
package timers

import (
	"sync"
	"time"

	"github.com/sweeney/travel-switch/internal/logic"
)

// Expiry identifies one delivered timer expiry. Seq ties it to the Schedule
// call that armed it, so the consumer can tell a live expiry from one that
// was cancelled or replaced after delivery.
type Expiry struct {
	ID  logic.TimerID
	Seq uint64
}

// Service schedules and cancels the machine's one-shot timers.
type Service interface {
	// Schedule arms the timer, replacing any pending instance of the same ID.
	Schedule(id logic.TimerID, d time.Duration)

	// Cancel disarms any pending instance of the timer.
	Cancel(id logic.TimerID)

	// Expired reports whether e is still the armed instance of its timer,
	// consuming it if so. A false return means the expiry went stale between
	// delivery and consumption and must be dropped.
	Expired(e Expiry) bool
}

// Scheduler is the real Service, backed by time.AfterFunc. At most one
// instance of each timer ID is pending at a time. Each schedule carries a
// generation number that travels with the delivered Expiry.
//
// An expiry that has already been handed to the channel cannot be retracted,
// so Cancel alone is not enough: the consumer must pass every delivery
// through Expired, which rejects anything cancelled or re-armed since. A
// re-armed timer gets a fresh generation, so a stale expiry can never stand
// in for the new instance's full duration.
type Scheduler struct {
	mu      sync.Mutex
	pending map[logic.TimerID]*pendingTimer
	next    uint64
	c       chan Expiry
}

type pendingTimer struct {
	timer *time.Timer
	seq   uint64
	fired bool
}

// NewScheduler creates a Scheduler. The expiry channel is buffered generously
// so deliveries do not block even when the consumer is briefly stalled.
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[logic.TimerID]*pendingTimer),
		c:       make(chan Expiry, 16),
	}
}

// C returns the expiry channel.
func (s *Scheduler) C() <-chan Expiry {
	return s.c
}

// Schedule arms the timer, replacing any pending instance of the same ID.
func (s *Scheduler) Schedule(id logic.TimerID, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}

	s.next++
	seq := s.next
	p := &pendingTimer{seq: seq}
	p.timer = time.AfterFunc(d, func() { s.fire(id, seq) })
	s.pending[id] = p
}

// Cancel disarms any pending instance of the timer. An expiry already
// delivered is invalidated: Expired will reject it.
func (s *Scheduler) Cancel(id logic.TimerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// Expired validates a delivered expiry against the timer's current
// generation and consumes it on a match.
func (s *Scheduler) Expired(e Expiry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[e.ID]
	if !ok || p.seq != e.Seq {
		return false
	}
	delete(s.pending, e.ID)
	return true
}

func (s *Scheduler) fire(id logic.TimerID, seq uint64) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok || p.seq != seq || p.fired {
		// Cancelled or replaced after the timer fired but before we got here.
		s.mu.Unlock()
		return
	}
	// Keep the entry so Expired can match the delivery against later
	// Cancel/Schedule calls; fired blocks a duplicate delivery.
	p.fired = true
	s.mu.Unlock()

	s.c <- Expiry{ID: id, Seq: seq}
}
