package zones

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDefinitionModelRepository creates the bun repository for zone definitions.
func NewDefinitionModelRepository(db *bun.DB) repository.Repository[*ZoneDefinition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ZoneDefinition]{
		NewRecord:          func() *ZoneDefinition { return &ZoneDefinition{} },
		GetID:              func(def *ZoneDefinition) uuid.UUID { return def.ID },
		SetID:              func(def *ZoneDefinition, id uuid.UUID) { def.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(def *ZoneDefinition) string { return def.Slug },
	})
}

// NewZoneModelRepository creates the bun repository for zones.
func NewZoneModelRepository(db *bun.DB) repository.Repository[*Zone] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Zone]{
		NewRecord:          func() *Zone { return &Zone{} },
		GetID:              func(zone *Zone) uuid.UUID { return zone.ID },
		SetID:              func(zone *Zone, id uuid.UUID) { zone.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(zone *Zone) string { return zone.ID.String() },
	})
}

// NewPlacementModelRepository creates the bun repository for placements.
func NewPlacementModelRepository(db *bun.DB) repository.Repository[*ContentPlacement] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentPlacement]{
		NewRecord:          func() *ContentPlacement { return &ContentPlacement{} },
		GetID:              func(p *ContentPlacement) uuid.UUID { return p.ID },
		SetID:              func(p *ContentPlacement, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(p *ContentPlacement) string { return p.ID.String() },
	})
}
