package builtin

import (
	"context"

	"github.com/agendum/agendum/credential"
	"github.com/agendum/agendum/tool"
)

const (
	// hydrateCap bounds how many messages are fully hydrated regardless of
	// how many the listing returned.
	hydrateCap = 5

	// bodyBudget caps decoded body text per message, in characters.
	bodyBudget = 500

	// defaultListMax is used when the model omits max_results.
	defaultListMax = 10

	gmailIntegration = "Gmail"
)

// ReadEmails lists recent messages and hydrates a small sample with decoded,
// truncated bodies.
type ReadEmails struct {
	mail  MailProvider
	creds *credential.Store
}

// NewReadEmails constructs the read_emails tool.
func NewReadEmails(mail MailProvider, creds *credential.Store) *ReadEmails {
	return &ReadEmails{mail: mail, creds: creds}
}

// Name implements tool.Tool.
func (t *ReadEmails) Name() string { return "read_emails" }

// Description implements tool.Tool.
func (t *ReadEmails) Description() string {
	return "Read recent emails from the user's Gmail inbox. Returns sender, subject, date and a body preview for the newest messages."
}

// Parameters implements tool.Tool.
func (t *ReadEmails) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Gmail search query (e.g. 'is:unread', 'from:alice@example.com'). Optional.",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "How many messages to list (default 10).",
			},
		},
	}
}

// Call implements tool.Tool.
func (t *ReadEmails) Call(ctx context.Context, principal string, args map[string]any) (any, error) {
	cred, ok := t.creds.Resolve(principal)
	if !ok {
		return tool.NotConnectedError(gmailIntegration), nil
	}

	query, _ := args["query"].(string)
	maxResults := defaultListMax
	if v, ok := args["max_results"].(float64); ok && int(v) > 0 {
		maxResults = int(v)
	}

	refs, err := t.mail.ListMessages(ctx, cred.AccessToken, query, maxResults)
	if err != nil {
		return nil, err
	}

	hydrate := len(refs)
	if hydrate > hydrateCap {
		hydrate = hydrateCap
	}

	emails := make([]map[string]any, 0, hydrate)
	for _, ref := range refs[:hydrate] {
		msg, err := t.mail.GetMessage(ctx, cred.AccessToken, ref.ID)
		if err != nil {
			return nil, err
		}
		emails = append(emails, map[string]any{
			"id":      msg.ID,
			"from":    msg.Header("From"),
			"subject": msg.Header("Subject"),
			"date":    msg.Header("Date"),
			"body":    truncateRunes(msg.BodyText(), bodyBudget),
		})
	}

	// count reflects the listing total, not the hydrated sample.
	return map[string]any{"count": len(refs), "emails": emails}, nil
}

// SendEmail submits a minimal plain-text message.
type SendEmail struct {
	mail  MailProvider
	creds *credential.Store
}

// NewSendEmail constructs the send_email tool.
func NewSendEmail(mail MailProvider, creds *credential.Store) *SendEmail {
	return &SendEmail{mail: mail, creds: creds}
}

// Name implements tool.Tool.
func (t *SendEmail) Name() string { return "send_email" }

// Description implements tool.Tool.
func (t *SendEmail) Description() string {
	return "Send a plain-text email from the user's Gmail account."
}

// Parameters implements tool.Tool.
func (t *SendEmail) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string", "description": "Recipient email address."},
			"subject": map[string]any{"type": "string", "description": "Subject line."},
			"body":    map[string]any{"type": "string", "description": "Plain-text message body."},
		},
		"required": []string{"to", "subject", "body"},
	}
}

// Call implements tool.Tool.
func (t *SendEmail) Call(ctx context.Context, principal string, args map[string]any) (any, error) {
	cred, ok := t.creds.Resolve(principal)
	if !ok {
		return tool.NotConnectedError(gmailIntegration), nil
	}

	to, _ := args["to"].(string)
	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)
	if to == "" {
		return tool.DomainError("recipient address is required"), nil
	}

	id, err := t.mail.SendMessage(ctx, cred.AccessToken, to, subject, body)
	if err != nil {
		return nil, err
	}
	return map[string]any{"sent": true, "id": id}, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
