// Package monitor runs the missed-call processing loop: detect, normalize,
// admit, allocate a slot, schedule the follow-up, persist the ledger.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"callwatch/internal/call"
	"callwatch/internal/config"
	"callwatch/internal/detect"
	"callwatch/internal/followup"
	"callwatch/internal/ledger"
	"callwatch/internal/metrics"
	"callwatch/internal/slot"
)

// Monitor owns the ledger and executes cycles synchronously end to end.
// Single instance, single goroutine for all ledger mutation.
type Monitor struct {
	cfg   config.Config
	chain *detect.Chain
	norm  call.Normalizer
	led   *ledger.Ledger
	alloc *slot.Allocator
	sched *followup.Scheduler
	met   *metrics.Metrics
	now   func() time.Time
	kick  chan struct{}
}

func New(cfg config.Config, chain *detect.Chain, norm call.Normalizer, led *ledger.Ledger, alloc *slot.Allocator, sched *followup.Scheduler, met *metrics.Metrics) *Monitor {
	return &Monitor{
		cfg:   cfg,
		chain: chain,
		norm:  norm,
		led:   led,
		alloc: alloc,
		sched: sched,
		met:   met,
		now:   norm.Now,
		kick:  make(chan struct{}, 1),
	}
}

// Ledger exposes the in-memory ledger for inspection.
func (m *Monitor) Ledger() *ledger.Ledger { return m.led }

// RunCycle executes one full processing pass and returns how many new
// follow-ups were scheduled. Per-record failures degrade or skip; the cycle
// itself never fails the loop.
func (m *Monitor) RunCycle(ctx context.Context) int {
	m.met.IncCycles()
	units := m.chain.Detect(ctx)
	m.met.AddDetected(len(units))

	scheduled := 0
	for _, unit := range units {
		rec, err := m.normalize(unit)
		if err != nil {
			log.Printf("cycle: %v (skipped)", err)
			continue
		}
		if rec == nil {
			continue
		}

		isNew, count := m.led.Admit(*rec)
		if !isNew {
			continue
		}
		m.met.IncAdmitted()
		log.Printf("cycle: new missed call caller=%q at=%s count=%d", rec.Caller, rec.OccurredAt.Format("2006-01-02 15:04"), count)

		ts := m.alloc.Find(ctx, m.now())
		if err := m.sched.Schedule(ctx, *rec, count, ts); err != nil {
			// Not marked processed: eligible for retry next cycle. The
			// escalation count stays incremented (known overcount hazard).
			m.met.IncScheduleFailures()
			log.Printf("cycle: %v (will retry next cycle)", err)
			continue
		}
		m.led.MarkProcessed(rec.ID)
		m.met.IncScheduled()
		scheduled++
	}

	if scheduled > 0 {
		log.Printf("cycle: scheduled %d new follow-ups", scheduled)
		m.save()
	}
	return scheduled
}

// normalize dispatches a raw unit to the right normalizer. A nil record
// with nil error means the unit was quietly irrelevant (not a missed call).
func (m *Monitor) normalize(unit detect.Unit) (*call.Record, error) {
	switch unit.Origin {
	case call.OriginManual:
		rec, err := m.norm.FromManualLine(unit.Payload)
		if err != nil {
			return nil, fmt.Errorf("manual entry line %d: %w", unit.Line, err)
		}
		return &rec, nil
	case call.OriginNotification:
		rec, ok := m.norm.FromNotification(unit.At, unit.Payload)
		if !ok {
			return nil, nil
		}
		return &rec, nil
	default:
		return nil, fmt.Errorf("unknown detection origin %q", unit.Origin)
	}
}

// CheckBacklog runs one extra cycle when the ledger has not been committed
// for longer than the configured gap, covering calls that accumulated while
// the process was not running.
func (m *Monitor) CheckBacklog(ctx context.Context) {
	last := m.led.LastCommitted()
	if last.IsZero() {
		log.Printf("backlog: first run, nothing to reconcile")
		return
	}
	gap := m.now().Sub(last)
	if gap <= m.cfg.BacklogGap {
		log.Printf("backlog: recently active (%s ago), no catch-up needed", gap.Truncate(time.Second))
		return
	}
	log.Printf("backlog: offline for %s, running catch-up cycle", gap.Truncate(time.Minute))
	if n := m.RunCycle(ctx); n > 0 {
		log.Printf("backlog: processed %d missed calls from offline period", n)
	} else {
		log.Printf("backlog: no missed calls found during offline period")
	}
}

// save persists the ledger; a write failure is logged and retried on the
// next successful batch rather than stopping the loop.
func (m *Monitor) save() {
	if err := m.led.Save(m.cfg.LedgerPath); err != nil {
		m.met.IncSaveFailures()
		log.Printf("ledger save failed: %v (will retry next batch)", err)
	}
}
