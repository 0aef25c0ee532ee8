package timers

import (
	"time"

	"github.com/sweeney/travel-switch/internal/logic"
)

// ScheduleCall records a single Schedule invocation.
type ScheduleCall struct {
	ID       logic.TimerID
	Duration time.Duration
}

// FakeService records schedule and cancel calls for test assertions. Tests
// fire timers by feeding IDs into whatever expiry channel they drive the
// loop with.
type FakeService struct {
	// Scheduled contains every Schedule call, in order.
	Scheduled []ScheduleCall

	// Cancelled contains every Cancel call, in order.
	Cancelled []logic.TimerID

	// Pending tracks which timers are currently armed.
	Pending map[logic.TimerID]time.Duration
}

// NewFakeService creates a FakeService.
func NewFakeService() *FakeService {
	return &FakeService{Pending: make(map[logic.TimerID]time.Duration)}
}

// Schedule records the call and marks the timer pending.
func (f *FakeService) Schedule(id logic.TimerID, d time.Duration) {
	f.Scheduled = append(f.Scheduled, ScheduleCall{ID: id, Duration: d})
	f.Pending[id] = d
}

// Cancel records the call and clears the pending mark.
func (f *FakeService) Cancel(id logic.TimerID) {
	f.Cancelled = append(f.Cancelled, id)
	delete(f.Pending, id)
}

// Expired consumes the pending mark for the expiry's ID. The fake does not
// track generations; tests only feed expiries for timers they know are
// armed, and assert staleness against the real Scheduler.
func (f *FakeService) Expired(e Expiry) bool {
	if _, ok := f.Pending[e.ID]; !ok {
		return false
	}
	delete(f.Pending, e.ID)
	return true
}

// IsPending reports whether the timer is currently armed.
func (f *FakeService) IsPending(id logic.TimerID) bool {
	_, ok := f.Pending[id]
	return ok
}

// Fire clears the pending mark, as a real expiry would.
func (f *FakeService) Fire(id logic.TimerID) {
	delete(f.Pending, id)
}
