package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler() interfaces.Scheduler {
	counter := 0
	return NewInMemory(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("job-%d", counter)
		}),
	)
}

func TestEnqueueReplacesByKey(t *testing.T) {
	ctx := context.Background()
	sched := newTestScheduler()
	key := PlacementWindowCloseJobKey(uuid.New())

	first, err := sched.Enqueue(ctx, interfaces.JobSpec{
		Key:   key,
		Type:  JobTypeZoneRefresh,
		RunAt: testNow.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}

	second, err := sched.Enqueue(ctx, interfaces.JobSpec{
		Key:   key,
		Type:  JobTypeZoneRefresh,
		RunAt: testNow.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("enqueue replacement: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected replacement to mint a new job id")
	}

	if _, err := sched.Get(ctx, first.ID); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected original job to be dropped, got %v", err)
	}

	stored, err := sched.GetByKey(ctx, key)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if !stored.RunAt.Equal(testNow.Add(2 * time.Hour)) {
		t.Fatalf("expected replacement run_at, got %s", stored.RunAt)
	}
}

func TestListDueOrdersByRunAt(t *testing.T) {
	ctx := context.Background()
	sched := newTestScheduler()

	late, _ := sched.Enqueue(ctx, interfaces.JobSpec{Type: JobTypeZoneRefresh, RunAt: testNow.Add(30 * time.Minute)})
	early, _ := sched.Enqueue(ctx, interfaces.JobSpec{Type: JobTypeZoneRefresh, RunAt: testNow.Add(10 * time.Minute)})
	if _, err := sched.Enqueue(ctx, interfaces.JobSpec{Type: JobTypeZoneRefresh, RunAt: testNow.Add(2 * time.Hour)}); err != nil {
		t.Fatalf("enqueue future job: %v", err)
	}

	due, err := sched.ListDue(ctx, testNow.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due jobs, got %d", len(due))
	}
	if due[0].ID != early.ID || due[1].ID != late.ID {
		t.Fatalf("expected run_at ordering, got %s then %s", due[0].ID, due[1].ID)
	}
}

func TestMarkFailedRetriesUntilLimit(t *testing.T) {
	ctx := context.Background()
	sched := NewInMemory(
		WithClock(func() time.Time { return testNow }),
		WithDefaultMaxAttempts(2),
	)

	job, err := sched.Enqueue(ctx, interfaces.JobSpec{Type: JobTypeZoneRefresh, RunAt: testNow.Add(time.Minute)})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := sched.MarkFailed(ctx, job.ID, errors.New("boom")); err != nil {
		t.Fatalf("first failure: %v", err)
	}
	stored, _ := sched.Get(ctx, job.ID)
	if stored.Status != interfaces.JobStatusPending {
		t.Fatalf("expected pending after first failure, got %s", stored.Status)
	}

	if err := sched.MarkFailed(ctx, job.ID, errors.New("boom")); err != nil {
		t.Fatalf("second failure: %v", err)
	}
	stored, _ = sched.Get(ctx, job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected failed after exhausting attempts, got %s", stored.Status)
	}
	if stored.LastError != "boom" {
		t.Fatalf("expected last error to be recorded, got %q", stored.LastError)
	}
}

func TestCancelByKeyRemovesPendingJob(t *testing.T) {
	ctx := context.Background()
	sched := newTestScheduler()
	key := PlacementWindowOpenJobKey(uuid.New())

	if _, err := sched.Enqueue(ctx, interfaces.JobSpec{Key: key, Type: JobTypeZoneRefresh, RunAt: testNow.Add(time.Hour)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := sched.CancelByKey(ctx, key); err != nil {
		t.Fatalf("cancel by key: %v", err)
	}
	if _, err := sched.GetByKey(ctx, key); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected job to be gone, got %v", err)
	}
}
