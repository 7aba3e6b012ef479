package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"

	dbembed "github.com/sholas-io/onboard/db"
	"github.com/sholas-io/onboard/internal/db"
	"github.com/sholas-io/onboard/internal/tasks"
)

func setupTaskRepo(t *testing.T) (*tasks.Repository, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}
	return tasks.NewRepository(d), func() { d.Close() }
}

func TestBackoffDuration(t *testing.T) {
	if got := tasks.BackoffDuration(0); got != time.Second {
		t.Fatalf("attempt 0: got %v", got)
	}
	if got := tasks.BackoffDuration(1); got != 2*time.Second {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := tasks.BackoffDuration(3); got != 8*time.Second {
		t.Fatalf("attempt 3: got %v", got)
	}
	// capped
	if got := tasks.BackoffDuration(20); got != 5*time.Minute {
		t.Fatalf("attempt 20: got %v", got)
	}
}

func TestEnqueueFetchRoundTrip(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	// empty queue
	got, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil on empty queue, got %#v", got)
	}

	payload, _ := json.Marshal(tasks.PromotePayload{UserID: "u1"})
	id, err := repo.Enqueue(ctx, &tasks.Task{Type: tasks.TypePromoteEmployee, Payload: payload})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero task id")
	}

	got, err = repo.FetchNext(ctx)
	if err != nil || got == nil {
		t.Fatalf("fetch: %#v err %v", got, err)
	}
	if got.Type != tasks.TypePromoteEmployee || got.MaxAttempts != 5 {
		t.Fatalf("unexpected task %#v", got)
	}
	var p tasks.PromotePayload
	if err := json.Unmarshal(got.Payload, &p); err != nil || p.UserID != "u1" {
		t.Fatalf("payload round trip: %#v err %v", p, err)
	}
}

func TestFetchNextRespectsSchedule(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	// scheduled two hours out, must not be fetched now
	future := &tasks.Task{Type: tasks.TypeNotifyEmail, ScheduledAt: time.Now().Add(2 * time.Hour)}
	if _, err := repo.Enqueue(ctx, future); err != nil {
		t.Fatalf("enqueue future: %v", err)
	}

	got, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != nil {
		t.Fatalf("future task fetched early: %#v", got)
	}

	// a due task with better priority wins
	due := &tasks.Task{Type: tasks.TypePromoteEmployee, Priority: 10, ScheduledAt: time.Now().Add(-time.Minute)}
	if _, err := repo.Enqueue(ctx, due); err != nil {
		t.Fatalf("enqueue due: %v", err)
	}
	got, err = repo.FetchNext(ctx)
	if err != nil || got == nil {
		t.Fatalf("fetch due: %#v err %v", got, err)
	}
	if got.Type != tasks.TypePromoteEmployee {
		t.Fatalf("expected due task, got %#v", got)
	}
}

func TestClaimIsExclusive(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, &tasks.Task{Type: tasks.TypeNotifyEmail})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ok, err := repo.Claim(ctx, id)
	if err != nil || !ok {
		t.Fatalf("first claim: %v, %v", ok, err)
	}
	ok, err = repo.Claim(ctx, id)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatalf("task claimed twice")
	}

	// a claimed task is no longer fetchable
	got, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != nil {
		t.Fatalf("running task still fetchable: %#v", got)
	}
}

func TestMoveToDeadLetter(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, &tasks.Task{Type: tasks.TypeNotifyEmail})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, err := repo.FetchNext(ctx)
	if err != nil || task == nil {
		t.Fatalf("fetch: %v", err)
	}
	task.Attempts = 5
	task.LastError = "smtp unreachable"
	task.Status = "failed"

	if err := repo.MoveToDeadLetter(ctx, task); err != nil {
		t.Fatalf("move to dead letter: %v", err)
	}

	// the original task is gone
	got, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch after dead letter: %v", err)
	}
	if got != nil && got.ID == id {
		t.Fatalf("dead-lettered task still fetchable: %#v", got)
	}
}

func TestWorkerPoolProcessesTask(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	var handled atomic.Int32
	done := make(chan struct{}, 1)
	handlers := map[string]tasks.Handler{
		tasks.TypeNotifyEmail: func(ctx context.Context, task *tasks.Task) error {
			handled.Add(1)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	}

	pool := tasks.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, tasks.TypeNotifyEmail, tasks.NotifyPayload{UserID: "u1", Email: "a@example.com", Template: "congratulations"}, 0, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task never handled")
	}
	if handled.Load() == 0 {
		t.Fatal("handler not invoked")
	}
}

func TestWorkerPoolDeadLettersUnknownType(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	pool := tasks.NewWorkerPool(repo, map[string]tasks.Handler{}, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "no.such.type", nil, 0, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// the task should disappear from the queue once dead-lettered
	deadline := time.After(5 * time.Second)
	for {
		got, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got == nil {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("task still queued: %#v", got)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func TestWorkerPoolRetriesThenDeadLetters(t *testing.T) {
	repo, cleanup := setupTaskRepo(t)
	defer cleanup()
	ctx := context.Background()

	var calls atomic.Int32
	handlers := map[string]tasks.Handler{
		tasks.TypePromoteEmployee: func(ctx context.Context, task *tasks.Task) error {
			calls.Add(1)
			return errors.New("profile store down")
		},
	}

	pool := tasks.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	// maxAttempts 1 dead-letters on the first failure, no backoff wait
	if _, err := pool.Enqueue(ctx, tasks.TypePromoteEmployee, tasks.PromotePayload{UserID: "u1"}, 0, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		got, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got == nil && calls.Load() >= 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("task not dead-lettered, calls=%d", calls.Load())
		case <-time.After(100 * time.Millisecond):
		}
	}
}
