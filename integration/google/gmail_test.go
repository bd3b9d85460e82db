package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGmailTestClient(t *testing.T, handler http.HandlerFunc) *GmailClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGmailClient(func(o *GmailOptions) {
		o.BaseURL = srv.URL
	})
}

func TestGmailListMessages(t *testing.T) {
	client := newGmailTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/users/me/messages", r.URL.Path)
		assert.Equal(t, "is:unread", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
		})
	})

	refs, err := client.ListMessages(context.Background(), "tok", "is:unread", 10)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "m1", refs[0].ID)
}

func TestGmailListMessagesAPIError(t *testing.T) {
	client := newGmailTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401}}`, http.StatusUnauthorized)
	})

	_, err := client.ListMessages(context.Background(), "bad", "", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGmailMessageBodyTextPrefersPlain(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	msg := &Message{Payload: MessagePart{
		MimeType: "multipart/alternative",
		Parts: []MessagePart{
			{MimeType: "text/html", Body: PartBody{Data: enc("<b>hi</b>")}},
			{MimeType: "text/plain", Body: PartBody{Data: enc("plain hello")}},
		},
	}}
	assert.Equal(t, "plain hello", msg.BodyText())
}

func TestGmailMessageBodyTextFallsBackToFirstTextPart(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	msg := &Message{Payload: MessagePart{
		MimeType: "multipart/mixed",
		Parts: []MessagePart{
			{MimeType: "application/pdf", Body: PartBody{Data: enc("binary")}},
			{MimeType: "text/html", Body: PartBody{Data: enc("<p>html body</p>")}},
		},
	}}
	assert.Equal(t, "<p>html body</p>", msg.BodyText())
}

func TestGmailSendMessageEncodesMIME(t *testing.T) {
	var raw string
	client := newGmailTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me/messages/send", r.URL.Path)
		var payload struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		raw = payload.Raw
		json.NewEncoder(w).Encode(map[string]string{"id": "sent-1"})
	})

	id, err := client.SendMessage(context.Background(), "tok", "bob@example.com", "Hello", "See you at 3pm.")
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	mime := string(decoded)
	assert.Contains(t, mime, "To: bob@example.com\r\n")
	assert.Contains(t, mime, "Subject: Hello\r\n")
	assert.Contains(t, mime, "Content-Type: text/plain")
	assert.Contains(t, mime, "\r\n\r\nSee you at 3pm.")
}

func TestGmailHeaderLookup(t *testing.T) {
	msg := &Message{Payload: MessagePart{Headers: []Header{
		{Name: "From", Value: "alice@example.com"},
		{Name: "subject", Value: "Weekly sync"},
	}}}
	assert.Equal(t, "alice@example.com", msg.Header("From"))
	assert.Equal(t, "Weekly sync", msg.Header("Subject"))
	assert.Empty(t, msg.Header("Cc"))
}
