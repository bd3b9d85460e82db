// Package server exposes the agent runtime over HTTP: task execution as a
// server-sent event stream and CRUD for the scheduler's task book.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/agendum/agendum"
	"github.com/agendum/agendum/core"
	"github.com/agendum/agendum/logging"
	"github.com/agendum/agendum/schedule"
)

// TaskRunner starts one task execution and returns its event stream. The
// stream is closed after its completion event. *agendum.Runtime is the
// production implementation.
type TaskRunner interface {
	ExecuteTask(ctx context.Context, req agendum.TaskRequest) <-chan core.ExecutionEvent
}

// Options configures a Server.
type Options struct {
	Addr     string
	Logger   logging.Logger
	Schedule *schedule.Service
}

// Server is the HTTP front of the runtime.
type Server struct {
	runner   TaskRunner
	schedule *schedule.Service
	logger   logging.Logger
	http     *http.Server
}

// New constructs a Server. The schedule endpoints are registered only when
// a schedule service is provided.
func New(runner TaskRunner, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:   ":8080",
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		runner:   runner,
		schedule: opts.Schedule,
		logger:   opts.Logger,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/agent/execute", s.handleExecute)
	if s.schedule != nil {
		mux.HandleFunc("GET /api/schedule", s.handleScheduleList)
		mux.HandleFunc("POST /api/schedule", s.handleScheduleCreate)
		mux.HandleFunc("DELETE /api/schedule/{id}", s.handleScheduleDelete)
		mux.HandleFunc("POST /api/schedule/{id}/enable", s.handleScheduleEnable)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
