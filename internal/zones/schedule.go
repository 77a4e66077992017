package zones

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/scheduler"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// scheduleWindowRefresh reconciles the refresh jobs for a placement's
// visibility window. Each edge in the future gets a keyed job; edges in the
// past or removed edges get their job cancelled. Scheduling failures are
// logged and never fail the mutation that triggered them.
func (s *service) scheduleWindowRefresh(ctx context.Context, placement *ContentPlacement) {
	if s.scheduler == nil {
		return
	}

	now := s.now()
	payload := map[string]any{
		"zone_id":      placement.ZoneID.String(),
		"placement_id": placement.ID.String(),
	}

	openKey := scheduler.PlacementWindowOpenJobKey(placement.ID)
	if placement.StartsAt != nil && placement.StartsAt.After(now) {
		_, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     openKey,
			Type:    scheduler.JobTypeZoneRefresh,
			RunAt:   *placement.StartsAt,
			Payload: payload,
		})
		if err != nil {
			s.log.Warn("window open refresh not scheduled",
				"placement_id", placement.ID.String(),
				"error", err.Error(),
			)
		}
	} else {
		s.cancelJob(ctx, openKey)
	}

	closeKey := scheduler.PlacementWindowCloseJobKey(placement.ID)
	if placement.EndsAt != nil && placement.EndsAt.After(now) {
		_, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     closeKey,
			Type:    scheduler.JobTypeZoneRefresh,
			RunAt:   *placement.EndsAt,
			Payload: payload,
		})
		if err != nil {
			s.log.Warn("window close refresh not scheduled",
				"placement_id", placement.ID.String(),
				"error", err.Error(),
			)
		}
	} else {
		s.cancelJob(ctx, closeKey)
	}
}

// cancelWindowRefresh drops both window jobs for a removed placement.
func (s *service) cancelWindowRefresh(ctx context.Context, placementID uuid.UUID) {
	if s.scheduler == nil {
		return
	}
	s.cancelJob(ctx, scheduler.PlacementWindowOpenJobKey(placementID))
	s.cancelJob(ctx, scheduler.PlacementWindowCloseJobKey(placementID))
}

// cancelZoneWindowRefreshes drops the window jobs of every placement in a
// zone, ahead of a bulk delete.
func (s *service) cancelZoneWindowRefreshes(ctx context.Context, zoneID uuid.UUID) {
	if s.scheduler == nil {
		return
	}
	placements, err := s.placements.ListByZone(ctx, zoneID)
	if err != nil {
		s.log.Warn("window refresh cleanup skipped", "zone_id", zoneID.String(), "error", err.Error())
		return
	}
	for _, placement := range placements {
		s.cancelWindowRefresh(ctx, placement.ID)
	}
}

func (s *service) cancelJob(ctx context.Context, key string) {
	err := s.scheduler.CancelByKey(ctx, key)
	if err != nil && !errors.Is(err, interfaces.ErrJobNotFound) {
		s.log.Warn("window refresh not cancelled", "job_key", key, "error", err.Error())
	}
}
