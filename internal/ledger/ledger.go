// Package ledger tracks which missed calls were already followed up and
// how many times each caller has been missed. It is the sole durable
// artifact of the processor.
package ledger

import (
	"time"

	"callwatch/internal/call"
)

// Ledger is owned exclusively by the monitor; single-threaded by
// construction, so no locking.
type Ledger struct {
	processed     map[string]struct{}
	counts        map[string]int
	lastCommitted time.Time
}

func New() *Ledger {
	return &Ledger{
		processed: make(map[string]struct{}),
		counts:    make(map[string]int),
	}
}

// Admit reports whether a record is new and the caller's escalation count.
// A duplicate id leaves all state untouched. A new id increments the
// caller's count immediately, but the id itself is only recorded once the
// follow-up has been confirmed (MarkProcessed), so a failed schedule stays
// eligible for retry next cycle.
func (l *Ledger) Admit(rec call.Record) (isNew bool, count int) {
	if _, ok := l.processed[rec.ID]; ok {
		return false, l.counts[rec.Caller]
	}
	l.counts[rec.Caller]++
	return true, l.counts[rec.Caller]
}

// MarkProcessed records a confirmed follow-up. Adding an id is idempotent.
func (l *Ledger) MarkProcessed(id string) {
	l.processed[id] = struct{}{}
}

// Processed reports whether an id has a confirmed follow-up.
func (l *Ledger) Processed(id string) bool {
	_, ok := l.processed[id]
	return ok
}

// Count returns the escalation count for one caller.
func (l *Ledger) Count(caller string) int { return l.counts[caller] }

// Counts returns a copy of all per-caller escalation counts.
func (l *Ledger) Counts() map[string]int {
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// TotalProcessed returns the number of confirmed follow-ups.
func (l *Ledger) TotalProcessed() int { return len(l.processed) }

// LastCommitted returns when the ledger was last persisted; zero for a
// fresh ledger.
func (l *Ledger) LastCommitted() time.Time { return l.lastCommitted }
