package runtime

import (
	"sync/atomic"
	"time"
)

// DefaultSlowQueryThreshold is the threshold NewBackend gives its
// QueryStats when no WithSlowQueryThreshold option overrides it.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// QueryStats accumulates ambient counters over every statement a Backend
// executes, the same shape the teacher's dialect layer keeps for its own
// SQL driver wrapper.
type QueryStats struct {
	queries     int64
	inserts     int64
	errors      int64
	slowQueries int64
	threshold   time.Duration
}

// StatsSnapshot is a point-in-time, non-atomic copy of QueryStats.
type StatsSnapshot struct {
	Queries     int64
	Inserts     int64
	Errors      int64
	SlowQueries int64
}

func (s *QueryStats) recordQuery()  { atomic.AddInt64(&s.queries, 1) }
func (s *QueryStats) recordInsert() { atomic.AddInt64(&s.inserts, 1) }
func (s *QueryStats) recordError()  { atomic.AddInt64(&s.errors, 1) }

func (s *QueryStats) recordDuration(d time.Duration) {
	if d >= s.threshold {
		atomic.AddInt64(&s.slowQueries, 1)
	}
}

// Snapshot returns the current counter values.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:     atomic.LoadInt64(&s.queries),
		Inserts:     atomic.LoadInt64(&s.inserts),
		Errors:      atomic.LoadInt64(&s.errors),
		SlowQueries: atomic.LoadInt64(&s.slowQueries),
	}
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	atomic.StoreInt64(&s.queries, 0)
	atomic.StoreInt64(&s.inserts, 0)
	atomic.StoreInt64(&s.errors, 0)
	atomic.StoreInt64(&s.slowQueries, 0)
}
