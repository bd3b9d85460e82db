// Command agendum runs the agent service: HTTP task execution with SSE
// progress streaming and the task scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendum/agendum"
	"github.com/agendum/agendum/config"
	"github.com/agendum/agendum/logging"
	"github.com/agendum/agendum/schedule"
	"github.com/agendum/agendum/server"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "agendum:", err)
		os.Exit(1)
	}
}

func run(configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Addr = addrOverride
	}

	logger := logging.New(func(o *logging.Options) {
		o.Level = logging.ParseLevel(cfg.LogLevel)
		o.Format = cfg.LogFormat
	})

	runtime, err := agendum.NewRuntime(cfg, func(o *agendum.RuntimeOptions) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewService(func(ctx context.Context, task schedule.Task) error {
		events := runtime.ExecuteTask(ctx, agendum.TaskRequest{
			Task:      task.Text,
			AgentName: task.AgentName,
			AgentRole: task.AgentRole,
			Principal: task.Principal,
		})
		for event := range events {
			if event.IsCompletion() && event.Success != nil && !*event.Success {
				return errors.New(event.Error)
			}
		}
		return nil
	}, func(o *schedule.ServiceOptions) {
		o.Logger = logger
		o.SnapshotPath = cfg.SchedulePath
	})
	if err := scheduler.LoadSnapshot(); err != nil {
		return fmt.Errorf("load schedule snapshot: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := server.New(runtime, func(o *server.Options) {
		o.Addr = cfg.Addr
		o.Logger = logger
		o.Schedule = scheduler
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
