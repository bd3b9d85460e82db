package builtin

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendum/agendum/credential"
	"github.com/agendum/agendum/integration/google"
	"github.com/agendum/agendum/integration/web"
)

const testPrincipal = "user-1"

func connectedStore(t *testing.T) *credential.Store {
	t.Helper()
	store := credential.NewStore()
	store.Put(credential.Credential{
		Principal:   testPrincipal,
		AccessToken: "tok",
		Expiry:      time.Now().Add(time.Hour),
	})
	return store
}

type fakeMail struct {
	refs     []google.MessageRef
	messages map[string]*google.Message
	listErr  error

	gotQuery string
	gotMax   int
	getCalls int

	sentTo      string
	sentSubject string
	sentBody    string
	sendErr     error
}

func (m *fakeMail) ListMessages(_ context.Context, _, query string, maxResults int) ([]google.MessageRef, error) {
	m.gotQuery = query
	m.gotMax = maxResults
	return m.refs, m.listErr
}

func (m *fakeMail) GetMessage(_ context.Context, _, id string) (*google.Message, error) {
	m.getCalls++
	msg, ok := m.messages[id]
	if !ok {
		return nil, errors.New("no such message")
	}
	return msg, nil
}

func (m *fakeMail) SendMessage(_ context.Context, _, to, subject, body string) (string, error) {
	m.sentTo, m.sentSubject, m.sentBody = to, subject, body
	if m.sendErr != nil {
		return "", m.sendErr
	}
	return "sent-1", nil
}

func textMessage(id, from, subject, body string) *google.Message {
	return &google.Message{
		ID: id,
		Payload: google.MessagePart{
			MimeType: "text/plain",
			Headers: []google.Header{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
				{Name: "Date", Value: "Mon, 01 Sep 2025 09:00:00 +0000"},
			},
			Body: google.PartBody{Data: encodeBody(body)},
		},
	}
}

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestReadEmailsNotConnected(t *testing.T) {
	readEmails := NewReadEmails(&fakeMail{}, credential.NewStore())

	result, err := readEmails.Call(context.Background(), testPrincipal, map[string]any{})
	require.NoError(t, err)

	payload, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Gmail not connected. Please connect your Gmail account first.", payload["error"])
}

func TestReadEmailsHydratesAtMostFive(t *testing.T) {
	mail := &fakeMail{messages: map[string]*google.Message{}}
	for _, id := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"} {
		mail.refs = append(mail.refs, google.MessageRef{ID: id})
		mail.messages[id] = textMessage(id, "alice@example.com", "Subject "+id, strings.Repeat("x", 800))
	}

	readEmails := NewReadEmails(mail, connectedStore(t))

	result, err := readEmails.Call(context.Background(), testPrincipal, map[string]any{"query": "is:unread"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, 8, payload["count"])
	assert.Equal(t, "is:unread", mail.gotQuery)
	assert.Equal(t, 10, mail.gotMax)
	assert.Equal(t, 5, mail.getCalls)

	emails := payload["emails"].([]map[string]any)
	require.Len(t, emails, 5)
	for _, email := range emails {
		body := email["body"].(string)
		assert.LessOrEqual(t, len([]rune(body)), 500)
	}
	assert.Equal(t, "alice@example.com", emails[0]["from"])
	assert.Equal(t, "Subject m1", emails[0]["subject"])
}

func TestReadEmailsListFailureFaults(t *testing.T) {
	mail := &fakeMail{listErr: errors.New("upstream 503")}
	readEmails := NewReadEmails(mail, connectedStore(t))

	_, err := readEmails.Call(context.Background(), testPrincipal, map[string]any{})
	assert.Error(t, err)
}

func TestSendEmail(t *testing.T) {
	mail := &fakeMail{}
	sendEmail := NewSendEmail(mail, connectedStore(t))

	result, err := sendEmail.Call(context.Background(), testPrincipal, map[string]any{
		"to":      "bob@example.com",
		"subject": "Hello",
		"body":    "Hi Bob",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, true, payload["sent"])
	assert.Equal(t, "sent-1", payload["id"])
	assert.Equal(t, "bob@example.com", mail.sentTo)
	assert.Equal(t, "Hello", mail.sentSubject)
}

func TestSendEmailMissingRecipient(t *testing.T) {
	sendEmail := NewSendEmail(&fakeMail{}, connectedStore(t))

	result, err := sendEmail.Call(context.Background(), testPrincipal, map[string]any{
		"subject": "Hello",
		"body":    "Hi",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "recipient address is required", payload["error"])
}

type fakeCalendar struct {
	events    []google.Event
	created   *google.Event
	listErr   error
	insertErr error

	gotCalendarID  string
	gotFrom, gotTo time.Time
	gotInput       google.EventInput
	gotSendUpdates bool
}

func (c *fakeCalendar) ListEvents(_ context.Context, _, calendarID string, from, to time.Time) ([]google.Event, error) {
	c.gotCalendarID = calendarID
	c.gotFrom, c.gotTo = from, to
	return c.events, c.listErr
}

func (c *fakeCalendar) InsertEvent(_ context.Context, _, calendarID string, input google.EventInput, sendUpdates bool) (*google.Event, error) {
	c.gotCalendarID = calendarID
	c.gotInput = input
	c.gotSendUpdates = sendUpdates
	if c.insertErr != nil {
		return nil, c.insertErr
	}
	if c.created != nil {
		return c.created, nil
	}
	return &google.Event{ID: "ev-1", Summary: input.Summary, HTMLLink: "https://cal/ev-1"}, nil
}

func TestGetCalendarEventsDefaultWindow(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	calendar := &fakeCalendar{events: []google.Event{
		{
			ID:      "ev-1",
			Summary: "Standup",
			Start:   google.EventTime{DateTime: "2025-09-02T09:00:00Z"},
			End:     google.EventTime{DateTime: "2025-09-02T09:15:00Z"},
			Attendees: []google.Attendee{
				{Email: "alice@example.com", DisplayName: "Alice", ResponseStatus: "accepted"},
			},
		},
	}}

	getEvents := NewGetCalendarEvents(calendar, connectedStore(t))
	getEvents.now = func() time.Time { return now }

	result, err := getEvents.Call(context.Background(), testPrincipal, map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, "primary", calendar.gotCalendarID)
	assert.Equal(t, now, calendar.gotFrom)
	assert.Equal(t, now.Add(7*24*time.Hour), calendar.gotTo)

	payload := result.(map[string]any)
	assert.Equal(t, 1, payload["count"])
	events := payload["events"].([]map[string]any)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0]["summary"])
	assert.Equal(t, "2025-09-02T09:00:00Z", events[0]["start"])

	attendees := events[0]["attendees"].([]map[string]any)
	require.Len(t, attendees, 1)
	assert.Equal(t, "alice@example.com", attendees[0]["email"])
	assert.Equal(t, "Alice", attendees[0]["name"])
	assert.Equal(t, "accepted", attendees[0]["status"])
}

func TestGetCalendarEventsInvalidBound(t *testing.T) {
	getEvents := NewGetCalendarEvents(&fakeCalendar{}, connectedStore(t))

	result, err := getEvents.Call(context.Background(), testPrincipal, map[string]any{
		"time_min": "yesterday",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Contains(t, payload["error"], "invalid time_min")
}

func TestCreateCalendarEventSendUpdates(t *testing.T) {
	tests := []struct {
		name        string
		attendees   any
		sendUpdates bool
	}{
		{name: "with attendees", attendees: []any{"bob@example.com"}, sendUpdates: true},
		{name: "without attendees", attendees: nil, sendUpdates: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calendar := &fakeCalendar{}
			createEvent := NewCreateCalendarEvent(calendar, connectedStore(t))
			createEvent.localTZ = func() *time.Location { return time.UTC }

			args := map[string]any{
				"summary":    "Planning",
				"start_time": "2025-09-03T10:00:00Z",
				"end_time":   "2025-09-03T11:00:00Z",
			}
			if tt.attendees != nil {
				args["attendees"] = tt.attendees
			}

			result, err := createEvent.Call(context.Background(), testPrincipal, args)
			require.NoError(t, err)

			payload := result.(map[string]any)
			assert.Equal(t, true, payload["created"])
			assert.Equal(t, "ev-1", payload["id"])
			assert.Equal(t, tt.sendUpdates, calendar.gotSendUpdates)
			assert.Equal(t, "UTC", calendar.gotInput.Start.TimeZone)
		})
	}
}

func TestCreateCalendarEventMissingFields(t *testing.T) {
	createEvent := NewCreateCalendarEvent(&fakeCalendar{}, connectedStore(t))

	result, err := createEvent.Call(context.Background(), testPrincipal, map[string]any{
		"summary": "Planning",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "summary, start_time and end_time are required", payload["error"])
}

type fakeSearch struct {
	results []web.SearchResult
	err     error

	gotQuery string
	gotCount int
}

func (s *fakeSearch) Search(_ context.Context, query string, count int) ([]web.SearchResult, error) {
	s.gotQuery = query
	s.gotCount = count
	return s.results, s.err
}

func TestWebSearch(t *testing.T) {
	search := &fakeSearch{results: []web.SearchResult{
		{Title: "Go", URL: "https://go.dev", Description: "The Go programming language"},
	}}
	webSearch := NewWebSearch(search)

	result, err := webSearch.Call(context.Background(), testPrincipal, map[string]any{
		"query": "golang",
		"count": float64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "golang", search.gotQuery)
	assert.Equal(t, 3, search.gotCount)

	payload := result.(map[string]any)
	assert.Equal(t, 1, payload["count"])
	results := payload["results"].([]map[string]any)
	assert.Equal(t, "https://go.dev", results[0]["url"])
}

func TestWebSearchNoResults(t *testing.T) {
	webSearch := NewWebSearch(&fakeSearch{})

	result, err := webSearch.Call(context.Background(), testPrincipal, map[string]any{"query": "obscura"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "No search results found for: obscura", payload["error"])
}

func TestWebSearchBackendFailureIsDomainError(t *testing.T) {
	webSearch := NewWebSearch(&fakeSearch{err: errors.New("connection refused")})

	result, err := webSearch.Call(context.Background(), testPrincipal, map[string]any{"query": "golang"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Contains(t, payload["error"], "search failed")
}

type fakePages struct {
	text string
	err  error
}

func (p *fakePages) Fetch(_ context.Context, _ string) (string, error) {
	return p.text, p.err
}

func TestFetchWebpage(t *testing.T) {
	fetch := NewFetchWebpage(&fakePages{text: "hello world"})

	result, err := fetch.Call(context.Background(), testPrincipal, map[string]any{"url": "https://example.com"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "https://example.com", payload["url"])
	assert.Equal(t, "hello world", payload["content"])
}

func TestFetchWebpageFailureIsDomainError(t *testing.T) {
	fetch := NewFetchWebpage(&fakePages{err: errors.New("context deadline exceeded")})

	result, err := fetch.Call(context.Background(), testPrincipal, map[string]any{"url": "https://slow.example.com"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Contains(t, payload["error"], "failed to fetch page")
}

func TestLogProgress(t *testing.T) {
	progress := NewLogProgress()

	schema := progress.Parameters()
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "message")
	assert.Contains(t, props, "severity")

	result, err := progress.Call(context.Background(), testPrincipal, map[string]any{
		"message":  "Analyzing inbox",
		"severity": "info",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, true, payload["logged"])

	result, err = progress.Call(context.Background(), testPrincipal, map[string]any{})
	require.NoError(t, err)
	payload = result.(map[string]any)
	assert.Equal(t, "message is required", payload["error"])
}

func TestAllOrder(t *testing.T) {
	tools := All(Dependencies{Credentials: credential.NewStore()})

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{
		"read_emails",
		"send_email",
		"get_calendar_events",
		"create_calendar_event",
		"web_search",
		"fetch_webpage",
		"log_progress",
	}, names)
}
