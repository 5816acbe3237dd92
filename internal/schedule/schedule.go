// Package schedule computes when the dashboard polls next and tracks the
// armed timer so stale fires can be dropped after a stop or restart.
//
// The next poll is anchored on the newest sample's collection time, not on
// the time the previous poll finished, and is pinned to two seconds past
// the minute.
package schedule

import (
	"time"

	"github.com/luki/tempwatch/internal/temperature"
)

// FireSecond is the fixed second-of-minute every poll is aligned to.
const FireSecond = 2

// Clock supplies the wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// IntervalFromMillis converts the host's millisecond refresh interval into
// whole minutes. The fractional part is dropped.
func IntervalFromMillis(ms int64) time.Duration {
	return time.Duration(ms/60000) * time.Minute
}

// NextFireTime returns reference+interval with the seconds forced to
// FireSecond and the sub-second part zeroed. The reference is the newest
// reading of the series, or now when the series is empty.
func NextFireTime(series temperature.Series, now time.Time, interval time.Duration) time.Time {
	ref := now
	if newest, ok := series.Newest(); ok {
		ref = newest.CollectedAt
	}
	next := ref.Add(interval)
	return time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), next.Minute(), FireSecond, 0, next.Location())
}

// Delay is how long to wait until next. A non-positive result means the
// reference is already stale and the poll fires immediately.
func Delay(next, now time.Time) time.Duration {
	d := next.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
