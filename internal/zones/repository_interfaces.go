package zones

import (
	"context"

	"github.com/google/uuid"
)

// DefinitionRepository exposes persistence operations for zone definitions.
type DefinitionRepository interface {
	Create(ctx context.Context, definition *ZoneDefinition) (*ZoneDefinition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ZoneDefinition, error)
	GetBySlug(ctx context.Context, slug string) (*ZoneDefinition, error)
	List(ctx context.Context) ([]*ZoneDefinition, error)
}

// ZoneRepository exposes persistence operations for zones.
type ZoneRepository interface {
	Create(ctx context.Context, zone *Zone) (*Zone, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Zone, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Zone, error)
	Update(ctx context.Context, zone *Zone) (*Zone, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPage(ctx context.Context, pageID uuid.UUID) error
}

// PlacementRepository exposes persistence operations for content placements.
// Positions are unique per zone; every multi-row mutation below must execute
// as a single atomic unit so a concurrent reader never observes a violated
// or half-applied ordering.
type PlacementRepository interface {
	// Insert stores the placement at placement.Position, first shifting any
	// placement at or after that position up by one (highest first).
	Insert(ctx context.Context, placement *ContentPlacement) (*ContentPlacement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ContentPlacement, error)
	// ListByZone returns the zone's placements ordered by position ascending.
	ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*ContentPlacement, error)
	// Update rewrites non-positional fields only. Position changes go through
	// Reorder.
	Update(ctx context.Context, placement *ContentPlacement) (*ContentPlacement, error)
	// DeleteAndCompact removes the placement and closes the position gap it
	// leaves behind, keeping positions a dense 0..n-1 sequence.
	DeleteAndCompact(ctx context.Context, zoneID uuid.UUID, id uuid.UUID) error
	// Reorder rewrites positions to match the supplied order: ids[i] takes
	// position i. Every id must belong to the zone.
	Reorder(ctx context.Context, zoneID uuid.UUID, ids []uuid.UUID) error
	DeleteByZone(ctx context.Context, zoneID uuid.UUID) error
}
