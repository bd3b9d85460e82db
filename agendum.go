// Package agendum wires the agent runtime: model provider, credential
// store, integration clients, the builtin tool set and the per-execution
// conversation driver. It is the composition root both cmd/agendum and
// embedding callers use.
package agendum

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/agendum/agendum/agent"
	"github.com/agendum/agendum/config"
	"github.com/agendum/agendum/core"
	"github.com/agendum/agendum/credential"
	"github.com/agendum/agendum/integration/google"
	"github.com/agendum/agendum/integration/web"
	"github.com/agendum/agendum/logging"
	"github.com/agendum/agendum/model"
	"github.com/agendum/agendum/model/anthropic"
	"github.com/agendum/agendum/model/openai"
	"github.com/agendum/agendum/tool"
	"github.com/agendum/agendum/tool/builtin"
)

// eventBuffer sizes the per-execution event channel. The driver blocks
// when a slow consumer falls this far behind.
const eventBuffer = 16

// TaskRequest describes one execution submitted to the runtime.
type TaskRequest struct {
	Task      string `json:"task"`
	AgentName string `json:"agent_name"`
	AgentRole string `json:"agent_role"`
	Principal string `json:"principal"`
}

// RuntimeOptions configures a Runtime.
type RuntimeOptions struct {
	// Model overrides the provider selected from the config. Tests pass a
	// model.StubModel here.
	Model  model.Model
	Logger logging.Logger
}

// Runtime is the long-lived service state shared across executions: the
// model client, the tool registry, the executor and the credential store.
type Runtime struct {
	model       model.Model
	registry    *tool.Registry
	executor    *tool.Executor
	credentials *credential.Store
	logger      logging.Logger
}

// NewRuntime builds a Runtime from configuration.
func NewRuntime(cfg *config.Config, optFns ...func(o *RuntimeOptions)) (*Runtime, error) {
	opts := RuntimeOptions{
		Logger: logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := opts.Model
	if m == nil {
		var err error
		m, err = newProviderModel(cfg)
		if err != nil {
			return nil, err
		}
	}

	creds := credential.NewStore()
	if cfg.TokenStorePath != "" {
		if err := creds.LoadFile(cfg.TokenStorePath); err != nil {
			return nil, fmt.Errorf("load token store: %w", err)
		}
	}

	deps := builtin.Dependencies{
		Credentials: creds,
		Mail:        google.NewGmailClient(),
		Calendar:    google.NewCalendarClient(),
		Search:      web.NewSearchClient(),
		Pages:       web.NewFetchClient(),
	}
	registry := tool.NewRegistry(builtin.All(deps)...)
	executor := tool.NewExecutor(registry, func(o *tool.ExecutorOptions) {
		o.Logger = opts.Logger
	})

	return &Runtime{
		model:       m,
		registry:    registry,
		executor:    executor,
		credentials: creds,
		logger:      opts.Logger,
	}, nil
}

func newProviderModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// Credentials exposes the credential store for connect/disconnect flows.
func (rt *Runtime) Credentials() *credential.Store { return rt.credentials }

// Registry exposes the shared read-only tool registry.
func (rt *Runtime) Registry() *tool.Registry { return rt.registry }

// ExecuteTask runs one task asynchronously and returns its event stream.
// The channel is closed after the completion event; the caller owns
// draining it. Cancelling ctx aborts the execution at the next round
// boundary.
func (rt *Runtime) ExecuteTask(ctx context.Context, req TaskRequest) <-chan core.ExecutionEvent {
	emitter := core.NewChannelEmitter(eventBuffer)

	driver := agent.NewDriver(rt.model, rt.registry, rt.executor, emitter, agent.Task{
		Text:         req.Task,
		AgentName:    req.AgentName,
		AgentRole:    req.AgentRole,
		Principal:    req.Principal,
		Integrations: rt.integrationStatus(req.Principal),
	}, func(o *agent.DriverOptions) {
		o.Logger = rt.logger
	})

	go func() {
		defer emitter.Close()
		if err := driver.Run(ctx); err != nil {
			rt.logger.Warn("task execution failed", "principal", req.Principal, "error", err)
		}
	}()

	return emitter.Events()
}

// integrationStatus reports, per integration, whether the principal has a
// live credential. Both Google integrations share one OAuth credential.
func (rt *Runtime) integrationStatus(principal string) []agent.IntegrationStatus {
	_, connected := rt.credentials.Resolve(principal)
	return []agent.IntegrationStatus{
		{Name: "Gmail", Connected: connected},
		{Name: "Google Calendar", Connected: connected},
	}
}
