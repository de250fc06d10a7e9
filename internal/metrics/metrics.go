package metrics

import "sync/atomic"

// Metrics captures operational counters for the processing loop.
type Metrics struct {
	cycles           int64
	detected         int64
	admitted         int64
	scheduled        int64
	scheduleFailures int64
	saveFailures     int64
}

// Snapshot provides a consistent read-only view of the counters.
type Snapshot struct {
	Cycles           int64
	Detected         int64
	Admitted         int64
	Scheduled        int64
	ScheduleFailures int64
	SaveFailures     int64
}

func New() *Metrics { return &Metrics{} }

func (m *Metrics) IncCycles()           { atomic.AddInt64(&m.cycles, 1) }
func (m *Metrics) AddDetected(n int)    { atomic.AddInt64(&m.detected, int64(n)) }
func (m *Metrics) IncAdmitted()         { atomic.AddInt64(&m.admitted, 1) }
func (m *Metrics) IncScheduled()        { atomic.AddInt64(&m.scheduled, 1) }
func (m *Metrics) IncScheduleFailures() { atomic.AddInt64(&m.scheduleFailures, 1) }
func (m *Metrics) IncSaveFailures()     { atomic.AddInt64(&m.saveFailures, 1) }

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Cycles:           atomic.LoadInt64(&m.cycles),
		Detected:         atomic.LoadInt64(&m.detected),
		Admitted:         atomic.LoadInt64(&m.admitted),
		Scheduled:        atomic.LoadInt64(&m.scheduled),
		ScheduleFailures: atomic.LoadInt64(&m.scheduleFailures),
		SaveFailures:     atomic.LoadInt64(&m.saveFailures),
	}
}
