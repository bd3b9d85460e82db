// Package web contains best-effort scrapers backing the web_search and
// fetch_webpage tools. Failures are returned as errors for the tool layer
// to surface as domain error strings; nothing here panics on bad upstream
// content.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSearchCount = 5
	maxSearchCount     = 10
	searchTimeout      = 30 * time.Second
	cacheSize          = 128
	cacheTTL           = 15 * time.Minute

	searchUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// SearchResult is one organic web result.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SearchOptions configures a SearchClient.
type SearchOptions struct {
	HTTPClient *http.Client
	Endpoint   string // override for tests
}

// SearchClient scrapes the DuckDuckGo HTML endpoint. Responses are cached
// for a short TTL so repeated queries inside one execution (or across
// concurrent executions) do not hammer the backend.
type SearchClient struct {
	httpClient *http.Client
	endpoint   string
	cache      *expirable.LRU[string, []SearchResult]
}

// NewSearchClient constructs a SearchClient.
func NewSearchClient(optFns ...func(o *SearchOptions)) *SearchClient {
	opts := SearchOptions{
		HTTPClient: &http.Client{Timeout: searchTimeout},
		Endpoint:   "https://html.duckduckgo.com/html/",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SearchClient{
		httpClient: opts.HTTPClient,
		endpoint:   opts.Endpoint,
		cache:      expirable.NewLRU[string, []SearchResult](cacheSize, nil, cacheTTL),
	}
}

var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]*class="[^"]*result__a[^"]*"[^>]*href="([^"]+)"[^>]*>([\s\S]*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a class="result__snippet[^"]*".*?>([\s\S]*?)</a>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// Search returns up to count results for the query. count is clamped to
// [1, 10]; zero selects the default of 5.
func (c *SearchClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if count <= 0 {
		count = defaultSearchCount
	}
	if count > maxSearchCount {
		count = maxSearchCount
	}

	cacheKey := fmt.Sprintf("%s:%d", query, count)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned %d", resp.StatusCode)
	}

	results := extractResults(string(body), count)
	if len(results) > 0 {
		c.cache.Add(cacheKey, results)
	}
	return results, nil
}

func extractResults(html string, count int) []SearchResult {
	linkMatches := resultLinkRe.FindAllStringSubmatch(html, count+5)
	if len(linkMatches) == 0 {
		return nil
	}
	snippetMatches := resultSnippetRe.FindAllStringSubmatch(html, count+5)

	var results []SearchResult
	for i := 0; i < len(linkMatches) && i < count; i++ {
		rawURL := unwrapRedirect(linkMatches[i][1])
		title := strings.TrimSpace(htmlTagRe.ReplaceAllString(linkMatches[i][2], ""))

		desc := ""
		if i < len(snippetMatches) {
			desc = strings.TrimSpace(htmlTagRe.ReplaceAllString(snippetMatches[i][1], ""))
		}

		results = append(results, SearchResult{Title: title, URL: rawURL, Description: desc})
	}
	return results
}

// unwrapRedirect extracts the destination from DuckDuckGo's uddg= redirect
// wrapper when present.
func unwrapRedirect(rawURL string) string {
	if !strings.Contains(rawURL, "uddg=") {
		return rawURL
	}
	u, err := url.QueryUnescape(rawURL)
	if err != nil {
		return rawURL
	}
	idx := strings.Index(u, "uddg=")
	if idx == -1 {
		return rawURL
	}
	extracted := u[idx+5:]
	if ampIdx := strings.Index(extracted, "&"); ampIdx != -1 {
		extracted = extracted[:ampIdx]
	}
	return extracted
}
