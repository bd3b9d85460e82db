package builtin

import (
	"context"
	"time"

	"github.com/agendum/agendum/credential"
	"github.com/agendum/agendum/integration/google"
	"github.com/agendum/agendum/tool"
)

const (
	calendarIntegration = "Google Calendar"
	defaultCalendarID   = "primary"

	// defaultWindow is the lookahead used when the model omits a time range.
	defaultWindow = 7 * 24 * time.Hour
)

// GetCalendarEvents lists upcoming events ordered by start time.
type GetCalendarEvents struct {
	calendar CalendarProvider
	creds    *credential.Store
	now      func() time.Time
}

// NewGetCalendarEvents constructs the get_calendar_events tool.
func NewGetCalendarEvents(calendar CalendarProvider, creds *credential.Store) *GetCalendarEvents {
	return &GetCalendarEvents{calendar: calendar, creds: creds, now: time.Now}
}

// Name implements tool.Tool.
func (t *GetCalendarEvents) Name() string { return "get_calendar_events" }

// Description implements tool.Tool.
func (t *GetCalendarEvents) Description() string {
	return "List events from the user's Google Calendar. Defaults to the coming 7 days on the primary calendar."
}

// Parameters implements tool.Tool.
func (t *GetCalendarEvents) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"calendar_id": map[string]any{
				"type":        "string",
				"description": "Calendar identifier (default 'primary').",
			},
			"time_min": map[string]any{
				"type":        "string",
				"description": "RFC 3339 lower bound (default now).",
			},
			"time_max": map[string]any{
				"type":        "string",
				"description": "RFC 3339 upper bound (default now + 7 days).",
			},
		},
	}
}

// Call implements tool.Tool.
func (t *GetCalendarEvents) Call(ctx context.Context, principal string, args map[string]any) (any, error) {
	cred, ok := t.creds.Resolve(principal)
	if !ok {
		return tool.NotConnectedError(calendarIntegration), nil
	}

	calendarID, _ := args["calendar_id"].(string)
	if calendarID == "" {
		calendarID = defaultCalendarID
	}

	from := t.now()
	to := from.Add(defaultWindow)
	if v, ok := args["time_min"].(string); ok && v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return tool.DomainError("invalid time_min: %v", err), nil
		}
		from = parsed
	}
	if v, ok := args["time_max"].(string); ok && v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return tool.DomainError("invalid time_max: %v", err), nil
		}
		to = parsed
	}

	events, err := t.calendar.ListEvents(ctx, cred.AccessToken, calendarID, from, to)
	if err != nil {
		return nil, err
	}

	flattened := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		attendees := make([]map[string]any, 0, len(ev.Attendees))
		for _, a := range ev.Attendees {
			attendees = append(attendees, map[string]any{
				"email":  a.Email,
				"name":   a.DisplayName,
				"status": a.ResponseStatus,
			})
		}
		flattened = append(flattened, map[string]any{
			"id":        ev.ID,
			"summary":   ev.Summary,
			"location":  ev.Location,
			"start":     eventTimeString(ev.Start),
			"end":       eventTimeString(ev.End),
			"attendees": attendees,
			"link":      ev.HTMLLink,
		})
	}

	return map[string]any{"count": len(flattened), "events": flattened}, nil
}

func eventTimeString(et google.EventTime) string {
	if et.DateTime != "" {
		return et.DateTime
	}
	return et.Date
}

// CreateCalendarEvent inserts a new event, notifying attendees only when
// attendees were supplied.
type CreateCalendarEvent struct {
	calendar CalendarProvider
	creds    *credential.Store
	localTZ  func() *time.Location
}

// NewCreateCalendarEvent constructs the create_calendar_event tool.
func NewCreateCalendarEvent(calendar CalendarProvider, creds *credential.Store) *CreateCalendarEvent {
	return &CreateCalendarEvent{calendar: calendar, creds: creds, localTZ: func() *time.Location { return time.Local }}
}

// Name implements tool.Tool.
func (t *CreateCalendarEvent) Name() string { return "create_calendar_event" }

// Description implements tool.Tool.
func (t *CreateCalendarEvent) Description() string {
	return "Create an event on the user's Google Calendar, optionally inviting attendees."
}

// Parameters implements tool.Tool.
func (t *CreateCalendarEvent) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":     map[string]any{"type": "string", "description": "Event title."},
			"description": map[string]any{"type": "string", "description": "Event description. Optional."},
			"location":    map[string]any{"type": "string", "description": "Event location. Optional."},
			"start_time":  map[string]any{"type": "string", "description": "RFC 3339 start time."},
			"end_time":    map[string]any{"type": "string", "description": "RFC 3339 end time."},
			"timezone":    map[string]any{"type": "string", "description": "IANA timezone (default: server local zone)."},
			"attendees": map[string]any{
				"type":        "array",
				"description": "Attendee email addresses. Optional.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []string{"summary", "start_time", "end_time"},
	}
}

// Call implements tool.Tool.
func (t *CreateCalendarEvent) Call(ctx context.Context, principal string, args map[string]any) (any, error) {
	cred, ok := t.creds.Resolve(principal)
	if !ok {
		return tool.NotConnectedError(calendarIntegration), nil
	}

	summary, _ := args["summary"].(string)
	start, _ := args["start_time"].(string)
	end, _ := args["end_time"].(string)
	if summary == "" || start == "" || end == "" {
		return tool.DomainError("summary, start_time and end_time are required"), nil
	}
	for name, v := range map[string]string{"start_time": start, "end_time": end} {
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return tool.DomainError("invalid %s: %v", name, err), nil
		}
	}

	timezone, _ := args["timezone"].(string)
	if timezone == "" {
		timezone = t.localTZ().String()
	}

	input := google.EventInput{
		Summary: summary,
		Start:   google.EventTime{DateTime: start, TimeZone: timezone},
		End:     google.EventTime{DateTime: end, TimeZone: timezone},
	}
	if v, ok := args["description"].(string); ok {
		input.Description = v
	}
	if v, ok := args["location"].(string); ok {
		input.Location = v
	}

	attendees := attendeeList(args["attendees"])
	for _, email := range attendees {
		input.Attendees = append(input.Attendees, google.Attendee{Email: email})
	}

	// Notification delivery is requested only when someone is invited.
	created, err := t.calendar.InsertEvent(ctx, cred.AccessToken, defaultCalendarID, input, len(attendees) > 0)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"created": true,
		"id":      created.ID,
		"summary": created.Summary,
		"link":    created.HTMLLink,
	}, nil
}

func attendeeList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var emails []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			emails = append(emails, s)
		}
	}
	return emails
}
