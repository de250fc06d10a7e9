// Package followup builds and submits calendar follow-up events for missed
// calls, with content escalating by per-caller miss count.
package followup

import (
	"context"
	"fmt"
	"log"
	"time"

	"callwatch/internal/calendar"
	"callwatch/internal/call"
	"callwatch/internal/notify"
)

// Build derives the calendar event for a missed call deterministically from
// the record, the caller's escalation count, and the allocated slot.
func Build(rec call.Record, count int, slot call.TimeSlot) calendar.Insert {
	missedAt := rec.OccurredAt.Format("15:04")
	var title, body string
	if count == 1 {
		title = fmt.Sprintf("Call back: %s", rec.Caller)
		body = fmt.Sprintf("Follow-up for missed call\n\nCaller: %s\nMissed call time: %s\nNumber of missed calls: %d",
			rec.Caller, missedAt, count)
	} else {
		title = fmt.Sprintf("URGENT - Call back: %s (%dx)", rec.Caller, count)
		body = fmt.Sprintf("MULTIPLE missed calls - follow-up required!\n\nCaller: %s\nLast missed call: %s\nNumber of missed calls: %d\nMultiple attempts - might be important!",
			rec.Caller, missedAt, count)
	}
	return calendar.Insert{
		Summary:       title,
		Description:   body,
		Start:         slot.Start,
		End:           slot.End,
		PopupReminder: true,
	}
}

// Scheduler submits follow-up events and raises the user-facing alert.
type Scheduler struct {
	cal        calendar.Client
	notifier   notify.Notifier
	calendarID string
}

func NewScheduler(cal calendar.Client, notifier notify.Notifier, calendarID string) *Scheduler {
	return &Scheduler{cal: cal, notifier: notifier, calendarID: calendarID}
}

// Schedule creates the calendar event in a single attempt. A failure leaves
// the call un-admitted so the next cycle retries it. The desktop alert is
// best effort: its failure is logged, never returned.
func (s *Scheduler) Schedule(ctx context.Context, rec call.Record, count int, slot call.TimeSlot) error {
	ins := Build(rec, count, slot)
	id, err := s.cal.InsertEvent(ctx, s.calendarID, ins)
	if err != nil {
		return fmt.Errorf("create follow-up for %s: %w", rec.Caller, err)
	}
	log.Printf("followup created id=%s caller=%q count=%d slot=%s", id, rec.Caller, count, slot.Start.Format(time.RFC3339))

	title, subtitle, body := alertContent(rec, count, slot)
	if err := s.notifier.Notify(ctx, title, subtitle, body); err != nil {
		log.Printf("followup alert failed: %v", err)
	}
	return nil
}

func alertContent(rec call.Record, count int, slot call.TimeSlot) (title, subtitle, body string) {
	missedAt := rec.OccurredAt.Format("15:04")
	slotAt := slot.Start.Format("15:04")
	if count == 1 {
		title = "Missed call"
		subtitle = rec.Caller
		body = fmt.Sprintf("Missed: %s\nCallback scheduled: %s", missedAt, slotAt)
		return
	}
	title = fmt.Sprintf("%dx missed calls!", count)
	subtitle = rec.Caller + " - URGENT"
	body = fmt.Sprintf("Last call: %s\n%d missed calls!\nCallback scheduled: %s", missedAt, count, slotAt)
	return
}
