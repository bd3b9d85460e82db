package builtin

import (
	"context"

	"github.com/agendum/agendum/internal/util"
	"github.com/agendum/agendum/tool"
)

type logProgressArgs struct {
	Message  string `json:"message" description:"Human readable progress update."`
	Severity string `json:"severity,omitempty" description:"One of info, success or error. Defaults to info."`
}

// LogProgress is a pseudo-tool: it performs no side effects of its own. The
// driver intercepts its calls and republishes the message on the event
// stream, so the model can narrate long-running work.
type LogProgress struct{}

// NewLogProgress constructs the log_progress tool.
func NewLogProgress() *LogProgress {
	return &LogProgress{}
}

// Name implements tool.Tool.
func (t *LogProgress) Name() string { return "log_progress" }

// Description implements tool.Tool.
func (t *LogProgress) Description() string {
	return "Report a progress update to the user while working on a task."
}

// Parameters implements tool.Tool.
func (t *LogProgress) Parameters() map[string]any {
	return util.SchemaFromStruct(logProgressArgs{})
}

// Call implements tool.Tool.
func (t *LogProgress) Call(_ context.Context, _ string, args map[string]any) (any, error) {
	message, _ := args["message"].(string)
	if message == "" {
		return tool.DomainError("message is required"), nil
	}
	return map[string]any{"logged": true}, nil
}
