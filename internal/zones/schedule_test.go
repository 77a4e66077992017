package zones

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/scheduler"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

func newScheduledService(t *testing.T) (Service, interfaces.Scheduler) {
	t.Helper()

	sched := scheduler.NewInMemory(scheduler.WithClock(func() time.Time { return testNow }))
	svc, _ := newTestService(t, WithScheduler(sched))
	return svc, sched
}

func TestAddPlacementSchedulesWindowRefreshes(t *testing.T) {
	ctx := context.Background()
	svc, sched := newScheduledService(t)
	zone := mustCreateZone(t, svc, 3, nil)

	startsAt := testNow.Add(time.Hour)
	endsAt := testNow.Add(3 * time.Hour)
	input := articlePlacement(zone.ID, uuid.New())
	input.StartsAt = &startsAt
	input.EndsAt = &endsAt

	placement, err := svc.AddPlacement(ctx, input)
	if err != nil {
		t.Fatalf("add placement: %v", err)
	}

	open, err := sched.GetByKey(ctx, scheduler.PlacementWindowOpenJobKey(placement.ID))
	if err != nil {
		t.Fatalf("expected window open job: %v", err)
	}
	if open.Type != scheduler.JobTypeZoneRefresh {
		t.Fatalf("unexpected job type %q", open.Type)
	}
	if !open.RunAt.Equal(startsAt) {
		t.Fatalf("expected open run_at %s, got %s", startsAt, open.RunAt)
	}
	if open.Payload["zone_id"] != zone.ID.String() {
		t.Fatalf("expected zone id payload, got %v", open.Payload["zone_id"])
	}

	closeJob, err := sched.GetByKey(ctx, scheduler.PlacementWindowCloseJobKey(placement.ID))
	if err != nil {
		t.Fatalf("expected window close job: %v", err)
	}
	if !closeJob.RunAt.Equal(endsAt) {
		t.Fatalf("expected close run_at %s, got %s", endsAt, closeJob.RunAt)
	}
}

func TestUpdatePlacementReschedulesWindow(t *testing.T) {
	ctx := context.Background()
	svc, sched := newScheduledService(t)
	zone := mustCreateZone(t, svc, 3, nil)

	endsAt := testNow.Add(time.Hour)
	input := articlePlacement(zone.ID, uuid.New())
	input.EndsAt = &endsAt
	placement, err := svc.AddPlacement(ctx, input)
	if err != nil {
		t.Fatalf("add placement: %v", err)
	}

	laterEnd := testNow.Add(6 * time.Hour)
	if _, err := svc.UpdatePlacement(ctx, UpdatePlacementInput{
		PlacementID: placement.ID,
		EndsAt:      &laterEnd,
	}); err != nil {
		t.Fatalf("update placement: %v", err)
	}

	closeJob, err := sched.GetByKey(ctx, scheduler.PlacementWindowCloseJobKey(placement.ID))
	if err != nil {
		t.Fatalf("expected rescheduled close job: %v", err)
	}
	if !closeJob.RunAt.Equal(laterEnd) {
		t.Fatalf("expected close run_at %s, got %s", laterEnd, closeJob.RunAt)
	}

	if _, err := svc.UpdatePlacement(ctx, UpdatePlacementInput{
		PlacementID: placement.ID,
		ClearWindow: true,
	}); err != nil {
		t.Fatalf("clear window: %v", err)
	}
	if _, err := sched.GetByKey(ctx, scheduler.PlacementWindowCloseJobKey(placement.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected close job cancelled after clearing window, got %v", err)
	}
}

func TestRemovePlacementCancelsWindowJobs(t *testing.T) {
	ctx := context.Background()
	svc, sched := newScheduledService(t)
	zone := mustCreateZone(t, svc, 3, nil)

	startsAt := testNow.Add(time.Hour)
	input := articlePlacement(zone.ID, uuid.New())
	input.StartsAt = &startsAt
	placement, err := svc.AddPlacement(ctx, input)
	if err != nil {
		t.Fatalf("add placement: %v", err)
	}

	if err := svc.RemovePlacement(ctx, RemovePlacementInput{ZoneID: zone.ID, PlacementID: placement.ID}); err != nil {
		t.Fatalf("remove placement: %v", err)
	}
	if _, err := sched.GetByKey(ctx, scheduler.PlacementWindowOpenJobKey(placement.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected open job cancelled, got %v", err)
	}
}

func TestDeleteZoneCancelsWindowJobs(t *testing.T) {
	ctx := context.Background()
	svc, sched := newScheduledService(t)
	zone := mustCreateZone(t, svc, 3, nil)

	endsAt := testNow.Add(2 * time.Hour)
	input := articlePlacement(zone.ID, uuid.New())
	input.EndsAt = &endsAt
	placement, err := svc.AddPlacement(ctx, input)
	if err != nil {
		t.Fatalf("add placement: %v", err)
	}

	if err := svc.DeleteZone(ctx, zone.ID); err != nil {
		t.Fatalf("delete zone: %v", err)
	}
	if _, err := sched.GetByKey(ctx, scheduler.PlacementWindowCloseJobKey(placement.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected close job cancelled, got %v", err)
	}
}
