package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agendum/agendum/core"
	"github.com/agendum/agendum/logging"
)

// defaultTick is the scheduling loop resolution.
const defaultTick = time.Second

// Task is one scheduled agent execution.
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	AgentName string `json:"agent_name"`
	AgentRole string `json:"agent_role"`
	Principal string `json:"principal"`
	Enabled   bool   `json:"enabled"`
	Spec      Spec   `json:"spec"`

	NextRun    *time.Time `json:"next_run,omitempty"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastStatus string     `json:"last_status,omitempty"` // "ok" or "error"
	LastError  string     `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunFunc executes one fired task. A non-nil error is recorded as the
// task's last status but never stops the scheduler.
type RunFunc func(ctx context.Context, task Task) error

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// SnapshotPath, when set, persists the task book as JSON on every
	// mutation. Best effort: snapshot failures are logged, not returned.
	SnapshotPath string
	Tick         time.Duration
	Logger       logging.Logger
	Now          func() time.Time
}

// Service owns the task book and the ticking runner goroutine.
type Service struct {
	mu       sync.Mutex
	tasks    map[string]*Task
	order    []string
	run      RunFunc
	logger   logging.Logger
	now      func() time.Time
	tick     time.Duration
	snapshot string
	running  bool
	stop     chan struct{}
}

// NewService constructs a Service firing tasks through run.
func NewService(run RunFunc, optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{
		Tick:   defaultTick,
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{
		tasks:    make(map[string]*Task),
		run:      run,
		logger:   opts.Logger,
		now:      opts.Now,
		tick:     opts.Tick,
		snapshot: opts.SnapshotPath,
	}
}

// Add validates and registers a new task, returning a copy with its
// assigned id and computed next run.
func (s *Service) Add(task Task) (Task, error) {
	if err := task.Spec.Validate(); err != nil {
		return Task{}, fmt.Errorf("invalid schedule: %w", err)
	}
	if task.Text == "" {
		return Task{}, fmt.Errorf("task text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task.ID = core.NewID()
	task.Enabled = true
	task.CreatedAt = now
	task.UpdatedAt = now
	if next, ok := task.Spec.NextAfter(now); ok {
		task.NextRun = &next
	} else {
		task.Enabled = false
	}

	stored := task
	s.tasks[task.ID] = &stored
	s.order = append(s.order, task.ID)
	s.snapshotLocked()

	s.logger.Info("task scheduled", "id", task.ID, "name", task.Name, "kind", task.Spec.Kind)
	return task, nil
}

// Remove deletes a task by id.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %s not found", id)
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.snapshotLocked()
	return nil
}

// Get returns a copy of the task by id.
func (s *Service) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// List returns copies of all tasks in registration order.
func (s *Service) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tasks[id])
	}
	return out
}

// Enable toggles a task. Re-enabling recomputes the next run.
func (s *Service) Enable(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}

	task.Enabled = enabled
	task.UpdatedAt = s.now()
	task.NextRun = nil
	if enabled {
		if next, ok := task.Spec.NextAfter(s.now()); ok {
			task.NextRun = &next
		} else {
			task.Enabled = false
		}
	}
	s.snapshotLocked()
	return nil
}

// Start launches the runner goroutine. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.loop(ctx, s.stop)
	s.logger.Info("scheduler started", "tasks", len(s.tasks))
}

// Stop halts the runner goroutine. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
	s.logger.Info("scheduler stopped")
}

func (s *Service) loop(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

// fireDue collects tasks whose next run has arrived, clears their next run
// so a slow callback cannot double-fire them, then executes outside the
// lock.
func (s *Service) fireDue(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	var due []Task
	for _, id := range s.order {
		task := s.tasks[id]
		if task.Enabled && task.NextRun != nil && !task.NextRun.After(now) {
			task.NextRun = nil
			due = append(due, *task)
		}
	}
	s.mu.Unlock()

	for _, task := range due {
		s.execute(ctx, task)
	}
}

func (s *Service) execute(ctx context.Context, task Task) {
	s.logger.Info("firing scheduled task", "id", task.ID, "name", task.Name)
	err := s.run(ctx, task)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok {
		return
	}

	now := s.now()
	stored.LastRun = &now
	stored.UpdatedAt = now
	if err != nil {
		stored.LastStatus = "error"
		stored.LastError = err.Error()
		s.logger.Error("scheduled task failed", "id", task.ID, "error", err)
	} else {
		stored.LastStatus = "ok"
		stored.LastError = ""
	}

	if next, ok := stored.Spec.NextAfter(now); ok {
		stored.NextRun = &next
	} else {
		// One-shots and dead schedules stay in the book, disabled.
		stored.Enabled = false
	}
	s.snapshotLocked()
}

type snapshotFile struct {
	Version int    `json:"version"`
	Tasks   []Task `json:"tasks"`
}

// LoadSnapshot restores the task book from the snapshot path, recomputing
// next runs for enabled tasks. Missing file is not an error.
func (s *Service) LoadSnapshot() error {
	if s.snapshot == "" {
		return nil
	}

	data, err := os.ReadFile(s.snapshot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse schedule snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range file.Tasks {
		task := file.Tasks[i]
		task.NextRun = nil
		if task.Enabled {
			if next, ok := task.Spec.NextAfter(now); ok {
				task.NextRun = &next
			} else {
				task.Enabled = false
			}
		}
		s.tasks[task.ID] = &task
		s.order = append(s.order, task.ID)
	}
	return nil
}

func (s *Service) snapshotLocked() {
	if s.snapshot == "" {
		return
	}

	file := snapshotFile{Version: 1}
	for _, id := range s.order {
		file.Tasks = append(file.Tasks, *s.tasks[id])
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		s.logger.Warn("schedule snapshot marshal failed", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshot), 0o755); err != nil {
		s.logger.Warn("schedule snapshot mkdir failed", "error", err)
		return
	}
	if err := os.WriteFile(s.snapshot, data, 0o644); err != nil {
		s.logger.Warn("schedule snapshot write failed", "error", err)
	}
}
