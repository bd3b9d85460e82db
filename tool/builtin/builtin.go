// Package builtin provides the standard Agendum tool set: email read/send,
// calendar read/create, web search, page fetch and the log_progress
// pseudo-tool. Handlers communicate expected failures (missing integration,
// unusable input, scraper misses) as in-band domain error payloads and let
// genuine faults (network failures, malformed upstream responses) surface
// as Go errors for the executor to tag out-of-band.
package builtin

import (
	"context"
	"time"

	"github.com/agendum/agendum/credential"
	"github.com/agendum/agendum/integration/google"
	"github.com/agendum/agendum/integration/web"
	"github.com/agendum/agendum/tool"
)

// MailProvider is the narrow Gmail surface the mail tools need.
type MailProvider interface {
	ListMessages(ctx context.Context, token, query string, maxResults int) ([]google.MessageRef, error)
	GetMessage(ctx context.Context, token, id string) (*google.Message, error)
	SendMessage(ctx context.Context, token, to, subject, body string) (string, error)
}

// CalendarProvider is the narrow Calendar surface the calendar tools need.
type CalendarProvider interface {
	ListEvents(ctx context.Context, token, calendarID string, from, to time.Time) ([]google.Event, error)
	InsertEvent(ctx context.Context, token, calendarID string, input google.EventInput, sendUpdates bool) (*google.Event, error)
}

// SearchProvider backs the web_search tool.
type SearchProvider interface {
	Search(ctx context.Context, query string, count int) ([]web.SearchResult, error)
}

// PageProvider backs the fetch_webpage tool.
type PageProvider interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Dependencies bundles the collaborators shared by the builtin tools.
type Dependencies struct {
	Credentials *credential.Store
	Mail        MailProvider
	Calendar    CalendarProvider
	Search      SearchProvider
	Pages       PageProvider
}

// All returns the full builtin tool set in its canonical registry order.
func All(deps Dependencies) []tool.Tool {
	return []tool.Tool{
		NewReadEmails(deps.Mail, deps.Credentials),
		NewSendEmail(deps.Mail, deps.Credentials),
		NewGetCalendarEvents(deps.Calendar, deps.Credentials),
		NewCreateCalendarEvent(deps.Calendar, deps.Credentials),
		NewWebSearch(deps.Search),
		NewFetchWebpage(deps.Pages),
		NewLogProgress(),
	}
}
