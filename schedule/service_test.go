package schedule

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, run RunFunc) (*Service, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewService(run, func(o *ServiceOptions) {
		o.Now = clk.Now
	})
	return svc, clk
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "at", spec: Spec{Kind: KindAt, At: time.Now().Add(time.Hour)}},
		{name: "at missing timestamp", spec: Spec{Kind: KindAt}, wantErr: true},
		{name: "every", spec: Spec{Kind: KindEvery, Every: time.Minute}},
		{name: "every non-positive", spec: Spec{Kind: KindEvery}, wantErr: true},
		{name: "cron", spec: Spec{Kind: KindCron, Expr: "*/5 * * * *"}},
		{name: "cron invalid", spec: Spec{Kind: KindCron, Expr: "not cron"}, wantErr: true},
		{name: "unknown kind", spec: Spec{Kind: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpecNextAfter(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

	next, ok := Spec{Kind: KindAt, At: now.Add(time.Hour)}.NextAfter(now)
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour), next)

	_, ok = Spec{Kind: KindAt, At: now.Add(-time.Hour)}.NextAfter(now)
	assert.False(t, ok)

	next, ok = Spec{Kind: KindEvery, Every: 30 * time.Second}.NextAfter(now)
	require.True(t, ok)
	assert.Equal(t, now.Add(30*time.Second), next)

	next, ok = Spec{Kind: KindCron, Expr: "0 9 * * *"}.NextAfter(now)
	require.True(t, ok)
	assert.Equal(t, 9, next.Hour())
	assert.True(t, next.After(now))
}

func TestAddComputesNextRun(t *testing.T) {
	svc, clk := newTestService(t, func(context.Context, Task) error { return nil })

	task, err := svc.Add(Task{
		Name:      "daily digest",
		Text:      "Summarize today's inbox",
		AgentName: "Ada",
		Principal: "user-1",
		Spec:      Spec{Kind: KindEvery, Every: time.Hour},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	require.NotNil(t, task.NextRun)
	assert.Equal(t, clk.Now().Add(time.Hour), *task.NextRun)

	listed := svc.List()
	require.Len(t, listed, 1)
	assert.Equal(t, task.ID, listed[0].ID)
}

func TestAddRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t, func(context.Context, Task) error { return nil })

	_, err := svc.Add(Task{Text: "x", Spec: Spec{Kind: KindEvery}})
	assert.Error(t, err)

	_, err = svc.Add(Task{Spec: Spec{Kind: KindEvery, Every: time.Minute}})
	assert.Error(t, err)
}

func TestFireDueRecordsStatusAndReschedules(t *testing.T) {
	var fired []Task
	svc, clk := newTestService(t, func(_ context.Context, task Task) error {
		fired = append(fired, task)
		return nil
	})

	task, err := svc.Add(Task{
		Name: "poll", Text: "check mail", Principal: "user-1",
		Spec: Spec{Kind: KindEvery, Every: time.Minute},
	})
	require.NoError(t, err)

	// Not yet due.
	svc.fireDue(context.Background())
	assert.Empty(t, fired)

	clk.Advance(2 * time.Minute)
	svc.fireDue(context.Background())
	require.Len(t, fired, 1)
	assert.Equal(t, task.ID, fired[0].ID)

	stored, ok := svc.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "ok", stored.LastStatus)
	require.NotNil(t, stored.NextRun)
	assert.Equal(t, clk.Now().Add(time.Minute), *stored.NextRun)

	// Cleared next-run prevents double firing within the same minute.
	svc.fireDue(context.Background())
	assert.Len(t, fired, 1)
}

func TestOneShotDisabledAfterFiring(t *testing.T) {
	svc, clk := newTestService(t, func(context.Context, Task) error { return nil })

	task, err := svc.Add(Task{
		Name: "reminder", Text: "send the report", Principal: "user-1",
		Spec: Spec{Kind: KindAt, At: clk.Now().Add(time.Minute)},
	})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	svc.fireDue(context.Background())

	stored, ok := svc.Get(task.ID)
	require.True(t, ok)
	assert.False(t, stored.Enabled)
	assert.Nil(t, stored.NextRun)
	assert.Equal(t, "ok", stored.LastStatus)
}

func TestRunErrorRecordedTaskSurvives(t *testing.T) {
	svc, clk := newTestService(t, func(context.Context, Task) error {
		return errors.New("model unavailable")
	})

	task, err := svc.Add(Task{
		Name: "poll", Text: "check mail", Principal: "user-1",
		Spec: Spec{Kind: KindEvery, Every: time.Minute},
	})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	svc.fireDue(context.Background())

	stored, ok := svc.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "error", stored.LastStatus)
	assert.Equal(t, "model unavailable", stored.LastError)
	assert.True(t, stored.Enabled)
	assert.NotNil(t, stored.NextRun)
}

func TestEnableRecomputesNextRun(t *testing.T) {
	svc, clk := newTestService(t, func(context.Context, Task) error { return nil })

	task, err := svc.Add(Task{
		Name: "poll", Text: "check mail", Principal: "user-1",
		Spec: Spec{Kind: KindEvery, Every: time.Minute},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Enable(task.ID, false))
	stored, _ := svc.Get(task.ID)
	assert.False(t, stored.Enabled)
	assert.Nil(t, stored.NextRun)

	require.NoError(t, svc.Enable(task.ID, true))
	stored, _ = svc.Get(task.ID)
	assert.True(t, stored.Enabled)
	require.NotNil(t, stored.NextRun)
	assert.Equal(t, clk.Now().Add(time.Minute), *stored.NextRun)
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t, func(context.Context, Task) error { return nil })

	task, err := svc.Add(Task{
		Name: "poll", Text: "check mail", Principal: "user-1",
		Spec: Spec{Kind: KindEvery, Every: time.Minute},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(task.ID))
	_, ok := svc.Get(task.ID)
	assert.False(t, ok)
	assert.Error(t, svc.Remove(task.ID))
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	clk := &clock{now: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}

	svc := NewService(func(context.Context, Task) error { return nil }, func(o *ServiceOptions) {
		o.Now = clk.Now
		o.SnapshotPath = path
	})

	task, err := svc.Add(Task{
		Name: "poll", Text: "check mail", Principal: "user-1",
		Spec: Spec{Kind: KindEvery, Every: time.Hour},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), task.ID)

	restored := NewService(func(context.Context, Task) error { return nil }, func(o *ServiceOptions) {
		o.Now = clk.Now
		o.SnapshotPath = path
	})
	require.NoError(t, restored.LoadSnapshot())

	loaded, ok := restored.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "check mail", loaded.Text)
	assert.True(t, loaded.Enabled)
	require.NotNil(t, loaded.NextRun)
}

func TestStartStopIdempotent(t *testing.T) {
	svc, _ := newTestService(t, func(context.Context, Task) error { return nil })

	ctx := context.Background()
	svc.Start(ctx)
	svc.Start(ctx)
	svc.Stop()
	svc.Stop()
}
