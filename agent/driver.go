package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agendum/agendum/core"
	"github.com/agendum/agendum/logging"
	"github.com/agendum/agendum/model"
	"github.com/agendum/agendum/tool"
)

// defaultMaxRounds bounds the completion/tool-execution loop. Reaching the
// cap is a silent cutoff, not a failure.
const defaultMaxRounds = 10

// State is the driver lifecycle state.
type State string

const (
	// StateInitializing is the state before Run is called.
	StateInitializing State = "INITIALIZING"
	// StateIterating is the state while the loop is running.
	StateIterating State = "ITERATING"
	// StateCompleted is the terminal state of a normal exit.
	StateCompleted State = "COMPLETED"
	// StateFailed is the terminal state after an orchestration fault.
	StateFailed State = "FAILED"
)

// Task describes one execution request.
type Task struct {
	Text         string
	AgentName    string
	AgentRole    string
	Principal    string
	Integrations []IntegrationStatus
}

// DriverOptions configures a Driver.
type DriverOptions struct {
	MaxRounds int
	Logger    logging.Logger
}

// Driver runs one bounded agent conversation. It is one-shot: a Driver
// handles a single Run call and is discarded afterwards.
type Driver struct {
	model     model.Model
	registry  *tool.Registry
	executor  *tool.Executor
	emitter   core.Emitter
	logger    logging.Logger
	maxRounds int

	task    Task
	history []core.Content
	state   State
}

// NewDriver constructs a Driver for a single task execution.
func NewDriver(m model.Model, registry *tool.Registry, executor *tool.Executor, emitter core.Emitter, task Task, optFns ...func(o *DriverOptions)) *Driver {
	opts := DriverOptions{
		MaxRounds: defaultMaxRounds,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Driver{
		model:     m,
		registry:  registry,
		executor:  executor,
		emitter:   emitter,
		logger:    opts.Logger,
		maxRounds: opts.MaxRounds,
		task:      task,
		state:     StateInitializing,
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State { return d.state }

// Run executes the conversation loop until termination. It emits log events
// as it progresses and always finishes with exactly one completion event.
// The returned error mirrors the failed completion, nil on normal exit.
func (d *Driver) Run(ctx context.Context) error {
	if d.state != StateInitializing {
		return fmt.Errorf("driver already ran (state %s)", d.state)
	}

	directive := buildDirective(d.task.AgentName, d.task.AgentRole, d.task.Integrations)
	d.history = []core.Content{core.NewUserText(d.task.Text)}
	definitions := d.registry.Definitions()
	d.state = StateIterating

	for round := 0; round < d.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return d.fail(fmt.Errorf("execution cancelled: %w", err))
		}

		d.logger.Debug("requesting completion", "round", round, "history", len(d.history))
		resp, err := d.model.Complete(ctx, model.Request{
			Instructions: directive,
			Contents:     d.history,
			Tools:        definitions,
		})
		if err != nil {
			return d.fail(fmt.Errorf("model completion failed: %w", err))
		}

		results := d.processParts(ctx, resp.Content.Parts)
		if len(results) == 0 {
			break
		}

		assistant := resp.Content
		assistant.Role = "assistant"
		d.history = append(d.history, assistant, core.Content{Role: "user", Parts: results})
	}

	d.emitter.Emit(core.NewLogEvent(core.SeveritySuccess, "Task execution completed"))
	d.emitter.Emit(core.NewCompletionEvent(true, ""))
	d.state = StateCompleted
	return nil
}

// processParts walks one completion's segments in order: text becomes info
// logs, tool calls are announced, executed and summarized. It returns the
// tool result parts for the follow-up user turn, empty when the round made
// no tool calls.
func (d *Driver) processParts(ctx context.Context, parts []core.Part) []core.Part {
	var results []core.Part
	for _, part := range parts {
		switch p := part.(type) {
		case core.TextPart:
			if p.Text != "" {
				d.emitter.Emit(core.NewLogEvent(core.SeverityInfo, p.Text))
			}
		case core.FunctionCallPart:
			call := p.FunctionCall
			d.emitter.Emit(core.NewLogEvent(core.SeverityInfo, fmt.Sprintf("Executing tool: %s", call.Name)))

			resp := d.executor.Invoke(ctx, call, d.task.Principal)
			message, severity := summarize(call, resp)
			if message != "" {
				d.emitter.Emit(core.NewLogEvent(severity, message))
			}
			results = append(results, core.FunctionResponsePart{FunctionResponse: resp})
		}
	}
	return results
}

// fail records an orchestration fault: error log, failed completion, FAILED
// state. Tool-level errors never come through here.
func (d *Driver) fail(err error) error {
	d.logger.Error("execution failed", "error", err)
	d.emitter.Emit(core.NewLogEvent(core.SeverityError, err.Error()))
	d.emitter.Emit(core.NewCompletionEvent(false, err.Error()))
	d.state = StateFailed
	return err
}

// summarize produces the result-summary log line for one tool invocation.
// An empty message suppresses the event.
func summarize(call core.FunctionCall, resp core.FunctionResponse) (string, core.Severity) {
	if resp.Faulted() {
		return fmt.Sprintf("Tool error: %s", resp.Error), core.SeverityError
	}
	if msg, ok := resp.DomainError(); ok {
		return fmt.Sprintf("Tool error: %s", msg), core.SeverityError
	}

	payload, _ := resp.Response.(map[string]any)

	switch call.Name {
	case "log_progress":
		return progressMessage(call.Arguments)
	case "read_emails":
		return fmt.Sprintf("Retrieved %d emails", payloadCount(payload)), core.SeveritySuccess
	case "send_email":
		return "Email sent successfully", core.SeveritySuccess
	case "get_calendar_events":
		return fmt.Sprintf("Retrieved %d calendar events", payloadCount(payload)), core.SeveritySuccess
	case "create_calendar_event":
		return "Calendar event created", core.SeveritySuccess
	case "web_search":
		return fmt.Sprintf("Found %d search results", payloadCount(payload)), core.SeveritySuccess
	case "fetch_webpage":
		return "Webpage content retrieved", core.SeveritySuccess
	}
	return fmt.Sprintf("Tool %s completed", call.Name), core.SeveritySuccess
}

// progressMessage re-emits a log_progress call's own message and severity.
func progressMessage(rawArgs string) (string, core.Severity) {
	var args struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args.Message == "" {
		return "", core.SeverityInfo
	}

	severity := core.SeverityInfo
	switch core.Severity(args.Severity) {
	case core.SeveritySuccess, core.SeverityError:
		severity = core.Severity(args.Severity)
	}
	return args.Message, severity
}

// payloadCount extracts an integer "count" field from a tool payload.
// Handlers return native ints; payloads round-tripped through JSON decode
// to float64.
func payloadCount(payload map[string]any) int {
	switch v := payload["count"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
