package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool invocation request produced by the model.
// The ID is an opaque correlation token; exactly one FunctionResponse tagged
// with the same ID is recorded before the next completion request.
type FunctionCall struct {
	ID        string `json:"id"`                  // Correlation token assigned by the provider
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
//
// Domain-level failures (missing integration, upstream rejection, unknown
// tool) are carried in-band inside Response as a payload with an "error"
// field. The Error field is reserved for executor-level faults: a handler
// that returned a Go error or panicked. Both shapes flow back to the model
// as ordinary tool results.
type FunctionResponse struct {
	ID       string `json:"id"`                 // Matches originating FunctionCall.ID
	Name     string `json:"name"`               // Tool name
	Response any    `json:"response,omitempty"` // Result payload (success or in-band domain error)
	Error    string `json:"error,omitempty"`    // Out-of-band executor fault message
}

// Faulted reports whether the invocation failed at the executor boundary
// (as opposed to returning an in-band domain error payload).
func (fr FunctionResponse) Faulted() bool { return fr.Error != "" }

// DomainError returns the in-band error string carried in the response
// payload, if any.
func (fr FunctionResponse) DomainError() (string, bool) {
	payload, ok := fr.Response.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := payload["error"].(string)
	return msg, ok && msg != ""
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// Content holds role + ordered parts. The conversation history of one
// execution is an append-only []Content owned exclusively by its driver.
type Content struct {
	Role  string `json:"role"`  // "user" or "assistant"
	Parts []Part `json:"parts"` // Ordered heterogeneous parts
}

// NewUserText builds a user turn containing a single text part.
func NewUserText(text string) Content {
	return Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
}

// FunctionCalls returns any FunctionCall parts in the content preserving
// their original order.
func (c Content) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range c.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts in the content
// preserving their original order.
func (c Content) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range c.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}
