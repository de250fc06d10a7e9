package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListEventsParsesTimedAndAllDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		if r.URL.Query().Get("singleEvents") != "true" {
			t.Errorf("singleEvents not requested")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"summary": "standup", "start": {"dateTime": "2025-09-11T18:00:00Z"}, "end": {"dateTime": "2025-09-11T18:30:00Z"}},
			{"summary": "holiday", "start": {"date": "2025-09-11"}, "end": {"date": "2025-09-12"}},
			{"summary": "broken", "start": {"dateTime": "not-a-time"}, "end": {"dateTime": "also-not"}}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	events, err := c.ListEvents(context.Background(), "primary",
		time.Date(2025, 9, 11, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 11, 22, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 parseable events, got %d", len(events))
	}
	if events[0].AllDay {
		t.Fatal("timed event flagged all-day")
	}
	if !events[1].AllDay {
		t.Fatal("date-only event must be all-day")
	}
}

func TestListEventsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	if _, err := c.ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestInsertEventPayload(t *testing.T) {
	var got apiEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "evt-42"}`))
	}))
	defer srv.Close()

	start := time.Date(2025, 9, 11, 18, 0, 0, 0, time.UTC)
	c := NewHTTPClient(srv.URL, "tok")
	id, err := c.InsertEvent(context.Background(), "primary", Insert{
		Summary:       "Call back: Anna",
		Description:   "Follow-up",
		Start:         start,
		End:           start.Add(15 * time.Minute),
		PopupReminder: true,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "evt-42" {
		t.Fatalf("id = %q", id)
	}
	if got.Summary != "Call back: Anna" {
		t.Fatalf("summary = %q", got.Summary)
	}
	if got.Start.DateTime != "2025-09-11T18:00:00Z" {
		t.Fatalf("start = %q", got.Start.DateTime)
	}
	if got.Reminders == nil || got.Reminders.UseDefault {
		t.Fatal("expected reminder overrides")
	}
	if len(got.Reminders.Overrides) != 1 || got.Reminders.Overrides[0].Method != "popup" || got.Reminders.Overrides[0].Minutes != 0 {
		t.Fatalf("overrides = %+v", got.Reminders.Overrides)
	}
}
