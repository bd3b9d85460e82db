package builtin

import (
	"context"

	"github.com/agendum/agendum/tool"
)

// WebSearch is a best-effort search scraper. It never raises: misses and
// backend failures come back as domain error strings the model can react to.
type WebSearch struct {
	search SearchProvider
}

// NewWebSearch constructs the web_search tool.
func NewWebSearch(search SearchProvider) *WebSearch {
	return &WebSearch{search: search}
}

// Name implements tool.Tool.
func (t *WebSearch) Name() string { return "web_search" }

// Description implements tool.Tool.
func (t *WebSearch) Description() string {
	return "Search the web for current information. Returns titles, URLs and snippets."
}

// Parameters implements tool.Tool.
func (t *WebSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query."},
			"count": map[string]any{"type": "integer", "description": "Number of results (1-10, default 5)."},
		},
		"required": []string{"query"},
	}
}

// Call implements tool.Tool.
func (t *WebSearch) Call(ctx context.Context, _ string, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return tool.DomainError("query is required"), nil
	}

	count := 0
	if v, ok := args["count"].(float64); ok {
		count = int(v)
	}

	results, err := t.search.Search(ctx, query, count)
	if err != nil {
		return tool.DomainError("search failed: %v", err), nil
	}
	if len(results) == 0 {
		return tool.DomainError("No search results found for: %s", query), nil
	}

	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]any{
			"title":       r.Title,
			"url":         r.URL,
			"description": r.Description,
		})
	}
	return map[string]any{"count": len(out), "results": out}, nil
}

// FetchWebpage retrieves one page as readable text. Like web_search it
// reports failures as domain errors, including expiry of its fetch timeout.
type FetchWebpage struct {
	pages PageProvider
}

// NewFetchWebpage constructs the fetch_webpage tool.
func NewFetchWebpage(pages PageProvider) *FetchWebpage {
	return &FetchWebpage{pages: pages}
}

// Name implements tool.Tool.
func (t *FetchWebpage) Name() string { return "fetch_webpage" }

// Description implements tool.Tool.
func (t *FetchWebpage) Description() string {
	return "Fetch a web page and return its readable text content."
}

// Parameters implements tool.Tool.
func (t *FetchWebpage) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "Absolute URL of the page to fetch."},
		},
		"required": []string{"url"},
	}
}

// Call implements tool.Tool.
func (t *FetchWebpage) Call(ctx context.Context, _ string, args map[string]any) (any, error) {
	pageURL, _ := args["url"].(string)
	if pageURL == "" {
		return tool.DomainError("url is required"), nil
	}

	text, err := t.pages.Fetch(ctx, pageURL)
	if err != nil {
		return tool.DomainError("failed to fetch page: %v", err), nil
	}
	return map[string]any{"url": pageURL, "content": text}, nil
}
