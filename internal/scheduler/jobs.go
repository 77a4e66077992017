package scheduler

import "github.com/google/uuid"

// JobTypeZoneRefresh asks the host to re-resolve a zone, typically to
// invalidate a rendered cache when a placement enters or leaves its
// visibility window.
const JobTypeZoneRefresh = "zones.zone.refresh"

// PlacementWindowOpenJobKey identifies the refresh scheduled for the instant
// a placement becomes visible.
func PlacementWindowOpenJobKey(placementID uuid.UUID) string {
	return "placement:" + placementID.String() + ":window-open"
}

// PlacementWindowCloseJobKey identifies the refresh scheduled for the instant
// a placement expires.
func PlacementWindowCloseJobKey(placementID uuid.UUID) string {
	return "placement:" + placementID.String() + ":window-close"
}
