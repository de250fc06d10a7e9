package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the Google Calendar v3 REST API.
type HTTPClient struct {
	base   string
	token  string
	client *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		base:   baseURL,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type apiEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type apiReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type apiReminders struct {
	UseDefault bool                  `json:"useDefault"`
	Overrides  []apiReminderOverride `json:"overrides,omitempty"`
}

type apiEvent struct {
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Start       apiEventTime  `json:"start"`
	End         apiEventTime  `json:"end"`
	Reminders   *apiReminders `json:"reminders,omitempty"`
	ID          string        `json:"id,omitempty"`
}

type listResponse struct {
	Items []apiEvent `json:"items"`
}

// ListEvents fetches commitments overlapping [min, max), expanded to single
// instances and ordered by start time.
func (c *HTTPClient) ListEvents(ctx context.Context, calendarID string, min, max time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", min.Format(time.RFC3339))
	q.Set("timeMax", max.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.base, url.PathEscape(calendarID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list events: status %d: %s", resp.StatusCode, body)
	}
	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	events := make([]Event, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		ev, err := toEvent(item)
		if err != nil {
			// One unparseable event must not block conflict checking.
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// InsertEvent creates the event with a popup reminder firing at start.
func (c *HTTPClient) InsertEvent(ctx context.Context, calendarID string, ins Insert) (string, error) {
	tz := ins.Start.Location().String()
	payload := apiEvent{
		Summary:     ins.Summary,
		Description: ins.Description,
		Start:       apiEventTime{DateTime: ins.Start.Format(time.RFC3339), TimeZone: tz},
		End:         apiEventTime{DateTime: ins.End.Format(time.RFC3339), TimeZone: tz},
	}
	if ins.PopupReminder {
		payload.Reminders = &apiReminders{
			UseDefault: false,
			Overrides:  []apiReminderOverride{{Method: "popup", Minutes: 0}},
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.base, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("insert event: status %d: %s", resp.StatusCode, respBody)
	}
	var created apiEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode created event: %w", err)
	}
	return created.ID, nil
}

func toEvent(item apiEvent) (Event, error) {
	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, err
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return Event{}, err
		}
		return Event{Summary: item.Summary, Start: start, End: end}, nil
	}
	// Date without dateTime means an all-day event; it does not occupy a
	// time-of-day slot.
	start, err := time.Parse("2006-01-02", item.Start.Date)
	if err != nil {
		return Event{}, err
	}
	end, err := time.Parse("2006-01-02", item.End.Date)
	if err != nil {
		return Event{}, err
	}
	return Event{Summary: item.Summary, Start: start, End: end, AllDay: true}, nil
}
