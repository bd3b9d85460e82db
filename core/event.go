package core

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a log event for client rendering.
type Severity string

const (
	// SeverityInfo marks routine progress output (model text, tool announcements).
	SeverityInfo Severity = "info"
	// SeveritySuccess marks a successfully completed step.
	SeveritySuccess Severity = "success"
	// SeverityError marks a failed step (domain error or fault).
	SeverityError Severity = "error"
)

// EventKind discriminates the ExecutionEvent union.
type EventKind string

const (
	// EventLog carries a progress line (message + severity).
	EventLog EventKind = "log"
	// EventCompletion terminates the stream. Exactly one is emitted per
	// execution and it is always the last event.
	EventCompletion EventKind = "completion"
)

// ExecutionEvent is a discrete, self-describing record delivered to the
// subscribing client as soon as it is produced. Events are ephemeral: never
// buffered beyond the current event, never stored, never replayed.
type ExecutionEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Severity  Severity  `json:"severity,omitempty"`
	Success   *bool     `json:"success,omitempty"` // Set only on completion events
	Error     string    `json:"error,omitempty"`   // Set on failed completion events
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a new unique identifier for events and executions.
func NewID() string { return uuid.NewString() }

// NewLogEvent creates a log event with the given severity and message.
func NewLogEvent(severity Severity, message string) ExecutionEvent {
	return ExecutionEvent{
		ID:        NewID(),
		Kind:      EventLog,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionEvent creates the terminal event of an execution. errMsg is
// empty on success.
func NewCompletionEvent(success bool, errMsg string) ExecutionEvent {
	return ExecutionEvent{
		ID:        NewID(),
		Kind:      EventCompletion,
		Success:   &success,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	}
}

// IsCompletion reports whether the event terminates the stream.
func (e ExecutionEvent) IsCompletion() bool { return e.Kind == EventCompletion }
