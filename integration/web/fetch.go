package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// fetchTimeout bounds a whole page fetch; on expiry the tool reports a
	// domain error instead of hanging the round.
	fetchTimeout = 10 * time.Second

	// maxPageChars caps extracted text handed back to the model.
	maxPageChars = 5000

	// maxResponseBytes caps how much of the response body is read.
	maxResponseBytes = 2 << 20
)

// FetchOptions configures a FetchClient.
type FetchOptions struct {
	HTTPClient *http.Client
}

// FetchClient retrieves a page and reduces it to readable text.
type FetchClient struct {
	httpClient *http.Client
	cache      *expirable.LRU[string, string]
}

// NewFetchClient constructs a FetchClient. The default client enforces the
// 10 second fetch timeout.
func NewFetchClient(optFns ...func(o *FetchOptions)) *FetchClient {
	opts := FetchOptions{
		HTTPClient: &http.Client{Timeout: fetchTimeout},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FetchClient{
		httpClient: opts.HTTPClient,
		cache:      expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	whitespaceRe = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
	spacesRe     = regexp.MustCompile(`[ \t]{2,}`)
)

// Fetch GETs the URL and returns tag-stripped text truncated to the page
// character budget.
func (c *FetchClient) Fetch(ctx context.Context, pageURL string) (string, error) {
	if cached, ok := c.cache.Get(pageURL); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	text := extractText(string(body))
	if text == "" {
		return "", fmt.Errorf("no readable text found at %s", pageURL)
	}

	c.cache.Add(pageURL, text)
	return text, nil
}

// extractText strips scripts, styles and markup, collapses whitespace and
// applies the character budget.
func extractText(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'").Replace(text)
	text = whitespaceRe.ReplaceAllString(text, "\n")
	text = spacesRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text
}
