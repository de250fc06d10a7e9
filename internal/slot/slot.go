// Package slot allocates callback time slots in a bounded evening window
// against existing calendar commitments.
package slot

import (
	"context"
	"log"
	"time"

	"callwatch/internal/calendar"
	"callwatch/internal/call"
)

// Allocator finds the earliest free slot in the configured window.
type Allocator struct {
	cal        calendar.Client
	calendarID string
	loc        *time.Location
	startHour  int
	endHour    int
	slotLen    time.Duration
}

func NewAllocator(cal calendar.Client, calendarID string, loc *time.Location, startHour, endHour int, slotLen time.Duration) *Allocator {
	return &Allocator{
		cal:        cal,
		calendarID: calendarID,
		loc:        loc,
		startHour:  startHour,
		endHour:    endHour,
		slotLen:    slotLen,
	}
}

// Find returns the first free slot on the given day. A fully booked window
// overflows to the window end; a calendar query error falls back to the
// window start. Both fallbacks are deterministic so a follow-up is always
// scheduled.
func (a *Allocator) Find(ctx context.Context, day time.Time) call.TimeSlot {
	d := day.In(a.loc)
	windowStart := time.Date(d.Year(), d.Month(), d.Day(), a.startHour, 0, 0, 0, a.loc)
	windowEnd := time.Date(d.Year(), d.Month(), d.Day(), a.endHour, 0, 0, 0, a.loc)

	events, err := a.cal.ListEvents(ctx, a.calendarID, windowStart, windowEnd)
	if err != nil {
		log.Printf("slot: calendar query failed: %v (falling back to window start)", err)
		return call.TimeSlot{Start: windowStart, End: windowStart.Add(a.slotLen)}
	}

	for start := windowStart; !start.Add(a.slotLen).After(windowEnd); start = start.Add(a.slotLen) {
		candidate := call.TimeSlot{Start: start, End: start.Add(a.slotLen)}
		if a.free(candidate, events) {
			return candidate
		}
	}
	// Window fully booked: deterministic overflow at the window end.
	return call.TimeSlot{Start: windowEnd, End: windowEnd.Add(a.slotLen)}
}

// free applies the half-open overlap test against every timed commitment.
func (a *Allocator) free(candidate call.TimeSlot, events []calendar.Event) bool {
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		if candidate.Start.Before(ev.End) && candidate.End.After(ev.Start) {
			return false
		}
	}
	return true
}
