// Package tool implements the capability subsystem: the static registry of
// schema-described tools the model may call, and the executor that turns a
// model-issued tool call into exactly one correlated result.
//
// Error semantics follow a strict two-channel design:
//   - Domain errors (missing integration connection, upstream rejection,
//     unusable input) are data: a payload map carrying an "error" field,
//     returned with a nil Go error so the model can read and adapt to them.
//   - Executor faults (a handler returning a Go error or panicking) are
//     tagged out-of-band on the result; they never propagate and never
//     abort the conversation loop.
package tool

import (
	"context"
	"fmt"
)

// Tool is a named, schema-described external capability invocable by the
// model.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a JSON schema for arguments precise enough for the model to
//     produce valid input
//   - Return domain failures via DomainError, reserving Go errors for
//     genuine faults
//   - Be safe for concurrent use; one instance serves all executions
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the
	// model to help it decide when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool for the acting principal with decoded
	// arguments. principal may be empty when the caller supplied no
	// credential reference.
	Call(ctx context.Context, principal string, args map[string]any) (any, error)
}

// DomainError builds the in-band error payload handlers return for
// expected, model-recoverable failures.
func DomainError(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// NotConnectedError builds the canonical domain error for a missing or
// expired integration credential, e.g.
// "Gmail not connected. Please connect your Gmail account first."
func NotConnectedError(integration string) map[string]any {
	return DomainError("%s not connected. Please connect your %s account first.", integration, integration)
}

// Spec is the immutable registry entry for one tool.
type Spec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}
