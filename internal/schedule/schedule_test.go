package schedule

import (
	"testing"
	"time"

	"github.com/luki/tempwatch/internal/temperature"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestNextFireTimeFromSeries(t *testing.T) {
	newest := time.Date(2026, 2, 21, 14, 30, 47, 123456789, time.UTC)
	series := temperature.Series{
		{Celsius: 22, CollectedAt: newest},
		{Celsius: 21, CollectedAt: newest.Add(-time.Minute)},
	}

	for _, now := range []time.Time{
		newest,
		newest.Add(10 * time.Second),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		got := NextFireTime(series, now, 5*time.Minute)
		want := time.Date(2026, 2, 21, 14, 35, 2, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("now=%v: NextFireTime = %v, want %v", now, got, want)
		}
	}
}

func TestNextFireTimeEmptySeries(t *testing.T) {
	now := time.Date(2026, 2, 21, 14, 30, 47, 999, time.UTC)
	got := NextFireTime(nil, now, time.Minute)
	want := time.Date(2026, 2, 21, 14, 31, 2, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextFireTime = %v, want %v", got, want)
	}
}

func TestNextFireTimeCrossesHour(t *testing.T) {
	newest := time.Date(2026, 2, 21, 23, 59, 30, 0, time.UTC)
	got := NextFireTime(temperature.Series{{Celsius: 1, CollectedAt: newest}}, newest, 2*time.Minute)
	want := time.Date(2026, 2, 22, 0, 1, 2, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextFireTime = %v, want %v", got, want)
	}
}

func TestDelay(t *testing.T) {
	now := time.Date(2026, 2, 21, 14, 30, 0, 0, time.UTC)
	if d := Delay(now.Add(62*time.Second), now); d != 62*time.Second {
		t.Errorf("Delay: got %v", d)
	}
	if d := Delay(now.Add(-time.Minute), now); d != 0 {
		t.Errorf("stale reference should fire immediately, got %v", d)
	}
	if d := Delay(now, now); d != 0 {
		t.Errorf("Delay at now: got %v", d)
	}
}

func TestIntervalFromMillis(t *testing.T) {
	tests := []struct {
		ms   int64
		want time.Duration
	}{
		{62000, time.Minute},
		{60000, time.Minute},
		{302000, 5 * time.Minute},
		{59999, 0},
	}
	for _, tt := range tests {
		if got := IntervalFromMillis(tt.ms); got != tt.want {
			t.Errorf("IntervalFromMillis(%d) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestSchedulerArmAccept(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 21, 14, 30, 10, 0, time.UTC)}
	s := New(clock, time.Minute)

	if s.State() != Idle {
		t.Fatalf("new scheduler should be idle, got %v", s.State())
	}

	f := s.Arm(nil)
	if s.State() != Armed {
		t.Fatalf("after Arm: got %v, want armed", s.State())
	}
	if f.Delay != 52*time.Second {
		t.Errorf("delay: got %v, want 52s", f.Delay)
	}
	if !s.Next().Equal(f.At) {
		t.Errorf("Next: got %v, want %v", s.Next(), f.At)
	}

	clock.advance(f.Delay)
	if !s.Accept(f) {
		t.Fatal("Accept should take the current fire")
	}
	if s.State() != Idle {
		t.Errorf("after Accept: got %v, want idle", s.State())
	}
	if s.Accept(f) {
		t.Error("a fire must only be accepted once")
	}

	series := temperature.Series{{Celsius: 20, CollectedAt: time.Date(2026, 2, 21, 14, 31, 0, 0, time.UTC)}}
	f2 := s.Arm(series)
	want := time.Date(2026, 2, 21, 14, 32, 2, 0, time.UTC)
	if !f2.At.Equal(want) {
		t.Errorf("re-armed At: got %v, want %v", f2.At, want)
	}
	if f2.Delay != want.Sub(clock.now) {
		t.Errorf("re-armed delay: got %v", f2.Delay)
	}
}

func TestSchedulerStop(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 21, 14, 30, 10, 0, time.UTC)}
	s := New(clock, time.Minute)

	f := s.Arm(nil)
	s.Stop()
	if s.State() != Idle {
		t.Errorf("after Stop: got %v", s.State())
	}
	if !s.Next().IsZero() {
		t.Errorf("idle Next should be zero, got %v", s.Next())
	}
	if s.Accept(f) {
		t.Error("a fire armed before Stop must be rejected")
	}

	old := s.Arm(nil)
	current := s.Arm(nil)
	if s.Accept(old) {
		t.Error("a superseded fire must be rejected")
	}
	if !s.Accept(current) {
		t.Error("the latest fire should be accepted")
	}
}

func TestSchedulerStaleReferenceFiresImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 21, 15, 0, 0, 0, time.UTC)}
	s := New(clock, time.Minute)
	series := temperature.Series{{Celsius: 20, CollectedAt: time.Date(2026, 2, 21, 14, 10, 0, 0, time.UTC)}}

	f := s.Arm(series)
	if f.Delay != 0 {
		t.Errorf("delay: got %v, want 0", f.Delay)
	}
}
