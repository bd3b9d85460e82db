package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultGmailBaseURL = "https://gmail.googleapis.com/gmail/v1"

// GmailOptions configures a GmailClient.
type GmailOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// GmailClient talks to the Gmail REST API on behalf of a principal whose
// bearer token is passed per call.
type GmailClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGmailClient constructs a GmailClient with optional overrides (base URL
// override is used by tests against httptest servers).
func NewGmailClient(optFns ...func(o *GmailOptions)) *GmailClient {
	opts := GmailOptions{
		BaseURL:    defaultGmailBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &GmailClient{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}
}

// MessageRef identifies a message in a listing response.
type MessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// MessagePart is one node of the MIME tree returned by messages.get.
type MessagePart struct {
	MimeType string        `json:"mimeType"`
	Headers  []Header      `json:"headers"`
	Body     PartBody      `json:"body"`
	Parts    []MessagePart `json:"parts"`
}

// Header is a single RFC 822 header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PartBody carries base64url-encoded part content.
type PartBody struct {
	Data string `json:"data"`
	Size int    `json:"size"`
}

// Message is a fully hydrated message.
type Message struct {
	ID      string      `json:"id"`
	Snippet string      `json:"snippet"`
	Payload MessagePart `json:"payload"`
}

// Header returns the named header from the top-level payload, or "".
func (m *Message) Header(name string) string {
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// BodyText decodes the message body, preferring the text/plain part and
// falling back to the first text-capable part found in the MIME tree.
func (m *Message) BodyText() string {
	if part := findPart(m.Payload, "text/plain"); part != nil {
		if text := decodePartBody(part.Body.Data); text != "" {
			return text
		}
	}
	if part := findTextPart(m.Payload); part != nil {
		return decodePartBody(part.Body.Data)
	}
	return ""
}

func findPart(p MessagePart, mimeType string) *MessagePart {
	if p.MimeType == mimeType && p.Body.Data != "" {
		return &p
	}
	for _, child := range p.Parts {
		if found := findPart(child, mimeType); found != nil {
			return found
		}
	}
	return nil
}

func findTextPart(p MessagePart) *MessagePart {
	if strings.HasPrefix(p.MimeType, "text/") && p.Body.Data != "" {
		return &p
	}
	for _, child := range p.Parts {
		if found := findTextPart(child); found != nil {
			return found
		}
	}
	return nil
}

func decodePartBody(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		// Some providers pad; try the padded alphabet before giving up.
		if padded, perr := base64.URLEncoding.DecodeString(data); perr == nil {
			return string(padded)
		}
		return ""
	}
	return string(decoded)
}

// ListMessages returns message references matching the query, newest first,
// up to maxResults.
func (c *GmailClient) ListMessages(ctx context.Context, token, query string, maxResults int) ([]MessageRef, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}

	var resp struct {
		Messages []MessageRef `json:"messages"`
	}
	u := c.baseURL + "/users/me/messages"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	if err := doJSON(ctx, c.httpClient, http.MethodGet, u, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return resp.Messages, nil
}

// GetMessage hydrates a single message including its MIME payload.
func (c *GmailClient) GetMessage(ctx context.Context, token, id string) (*Message, error) {
	var msg Message
	u := c.baseURL + "/users/me/messages/" + url.PathEscape(id) + "?format=full"
	if err := doJSON(ctx, c.httpClient, http.MethodGet, u, token, nil, &msg); err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return &msg, nil
}

// SendMessage MIME-encodes a minimal text message (To, Subject,
// Content-Type, blank line, body) and submits it base64url-encoded.
func (c *GmailClient) SendMessage(ctx context.Context, token, to, subject, body string) (string, error) {
	var mime strings.Builder
	fmt.Fprintf(&mime, "To: %s\r\n", to)
	fmt.Fprintf(&mime, "Subject: %s\r\n", subject)
	mime.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	mime.WriteString("\r\n")
	mime.WriteString(body)

	payload, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(mime.String())),
	})
	if err != nil {
		return "", fmt.Errorf("encode send payload: %w", err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	u := c.baseURL + "/users/me/messages/send"
	if err := doJSON(ctx, c.httpClient, http.MethodPost, u, token, bytes.NewReader(payload), &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return resp.ID, nil
}
