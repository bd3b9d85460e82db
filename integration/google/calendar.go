package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

// CalendarOptions configures a CalendarClient.
type CalendarOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// CalendarClient talks to the Google Calendar REST API.
type CalendarClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCalendarClient constructs a CalendarClient with optional overrides.
func NewCalendarClient(optFns ...func(o *CalendarOptions)) *CalendarClient {
	opts := CalendarOptions{
		BaseURL:    defaultCalendarBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CalendarClient{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}
}

// EventTime is a calendar event boundary; either DateTime (timed events) or
// Date (all-day events) is set.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Attendee is one event participant.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// Event is a calendar event as returned by events.list / events.insert.
type Event struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
}

// EventInput is the payload for creating an event.
type EventInput struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// ListEvents returns single events in [from, to) ordered by start time.
func (c *CalendarClient) ListEvents(ctx context.Context, token, calendarID string, from, to time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", from.Format(time.RFC3339))
	q.Set("timeMax", to.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	var resp struct {
		Items []Event `json:"items"`
	}
	u := c.baseURL + "/calendars/" + url.PathEscape(calendarID) + "/events?" + q.Encode()
	if err := doJSON(ctx, c.httpClient, http.MethodGet, u, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return resp.Items, nil
}

// InsertEvent creates an event. When sendUpdates is true, attendees are
// notified (sendUpdates=all); otherwise no notifications are requested.
func (c *CalendarClient) InsertEvent(ctx context.Context, token, calendarID string, input EventInput, sendUpdates bool) (*Event, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	u := c.baseURL + "/calendars/" + url.PathEscape(calendarID) + "/events"
	if sendUpdates {
		u += "?sendUpdates=all"
	}

	var created Event
	if err := doJSON(ctx, c.httpClient, http.MethodPost, u, token, bytes.NewReader(payload), &created); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &created, nil
}
