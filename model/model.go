package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/agendum/agendum/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual tool exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the driver for
// one round: the system directive, the full tool catalog and the complete
// conversation history so far.
type Request struct {
	Instructions string           `json:"instructions"`
	Contents     []core.Content   `json:"contents"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one completed model turn: ordered text / tool-call segments
// plus the provider's stop indicator.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "end_turn", "stop", "tool_use", "tool_calls", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "stub", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the driver needs: one blocking completion
// per round. Implementations must be safe for concurrent use; independent
// executions share a single Model instance.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// StubModel is a lightweight in-memory Model useful for tests & examples.
// It replays a scripted sequence of responses; when the script is exhausted
// it answers with a plain text turn so loops always terminate.
type StubModel struct {
	mu       sync.Mutex
	info     Info
	script   []Response
	cursor   int
	err      error
	requests []Request
}

// NewStubModel constructs a StubModel with basic tool support enabled.
func NewStubModel(responses ...Response) *StubModel {
	return &StubModel{
		info:   Info{Name: "stub", Provider: "stub", SupportsTools: true},
		script: responses,
	}
}

// FailWith makes every subsequent Complete call return err.
func (m *StubModel) FailWith(err error) { m.mu.Lock(); m.err = err; m.mu.Unlock() }

// Requests returns a copy of every Request seen so far, in order.
func (m *StubModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Model.
func (m *StubModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.cursor < len(m.script) {
		resp := m.script[m.cursor]
		m.cursor++
		return &resp, nil
	}

	var prompt string
	if len(req.Contents) > 0 {
		last := req.Contents[len(req.Contents)-1]
		for _, p := range last.Parts {
			if tp, ok := p.(core.TextPart); ok {
				prompt += tp.Text
			}
		}
	}
	return &Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: fmt.Sprintf("Stub response to: %s", prompt)}}},
		FinishReason: "end_turn",
	}, nil
}

// Info implements Model.
func (m *StubModel) Info() Info { return m.info }
