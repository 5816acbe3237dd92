package schedule

import (
	"time"

	"github.com/luki/tempwatch/internal/temperature"
)

// State of the scheduler's timer.
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Fire identifies one armed timer. The event loop sleeps for Delay, then
// hands the token back to Accept.
type Fire struct {
	Gen   uint64
	At    time.Time
	Delay time.Duration
}

// Scheduler is a restartable, cancellable one-shot timer that the caller
// re-arms after every refresh. It does not sleep itself: Arm returns the
// delay and the caller's event loop (tea.Tick, time.AfterFunc, a fake
// clock in tests) delivers the Fire back.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	gen      uint64
	state    State
	next     time.Time
}

// New creates an idle scheduler.
func New(clock Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock, interval: interval}
}

// Interval returns the refresh interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// State reports whether a timer is pending.
func (s *Scheduler) State() State { return s.state }

// Next returns the time of the pending fire, or the zero time when idle.
func (s *Scheduler) Next() time.Time {
	if s.state != Armed {
		return time.Time{}
	}
	return s.next
}

// Arm computes the next fire time from the series and arms the timer.
// Any previously armed Fire is invalidated.
func (s *Scheduler) Arm(series temperature.Series) Fire {
	now := s.clock.Now()
	next := NextFireTime(series, now, s.interval)
	s.gen++
	s.state = Armed
	s.next = next
	return Fire{Gen: s.gen, At: next, Delay: Delay(next, now)}
}

// Accept consumes a delivered Fire. It returns false for fires that were
// cancelled by Stop or superseded by a later Arm; the caller must ignore
// those.
func (s *Scheduler) Accept(f Fire) bool {
	if s.state != Armed || f.Gen != s.gen {
		return false
	}
	s.state = Idle
	s.next = time.Time{}
	return true
}

// Stop cancels the pending fire, if any.
func (s *Scheduler) Stop() {
	s.gen++
	s.state = Idle
	s.next = time.Time{}
}
