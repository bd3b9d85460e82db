package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/agendum/agendum/core"
	"github.com/agendum/agendum/internal/util"
	"github.com/agendum/agendum/logging"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Logger logging.Logger
}

// Executor maps a model-issued tool call to exactly one correlated result.
// It never returns an error and never panics: unknown tools and undecodable
// arguments become in-band domain errors, handler errors and panics become
// out-of-band faults.
type Executor struct {
	registry *Registry
	logger   logging.Logger
}

// NewExecutor creates an Executor over the registry.
func NewExecutor(registry *Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{registry: registry, logger: opts.Logger}
}

// Invoke dispatches the call by exact name match and returns its result.
func (e *Executor) Invoke(ctx context.Context, call core.FunctionCall, principal string) core.FunctionResponse {
	resp := core.FunctionResponse{ID: call.ID, Name: call.Name}

	impl, ok := e.registry.Lookup(call.Name)
	if !ok {
		// Not fatal: the model is told and the loop continues.
		resp.Response = DomainError("Unknown tool: %s", call.Name)
		return resp
	}

	args, err := decodeArguments(call.Arguments)
	if err != nil {
		resp.Response = DomainError("invalid arguments for %s: %v", call.Name, err)
		return resp
	}

	// Advisory only: a mismatch is logged and the handler still runs, so
	// the provider's own rejection comes back as the domain error.
	if verr := util.ValidateParameters(args, impl.Parameters()); verr != nil {
		e.logger.Warn("tool argument validation failed", "tool", call.Name, "error", verr.Error())
	}

	start := time.Now()
	result, err := e.callSafely(ctx, impl, principal, args)
	e.logger.Info("tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"fault", err != nil,
	)

	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Response = result
	return resp
}

// callSafely runs the handler with panic recovery so a defective tool can
// never abort the conversation loop.
func (e *Executor) callSafely(ctx context.Context, impl Tool, principal string, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "tool", impl.Name(), "recover", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("tool %s panicked: %v", impl.Name(), r)
		}
	}()
	return impl.Call(ctx, principal, args)
}

func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
