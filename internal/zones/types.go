package zones

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/newsroomhq/zonecontent/internal/autofill"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// AutoFillRule is the declarative filler query a zone may carry. It is a
// value embedded in the zone record, not a standalone entity.
type AutoFillRule = autofill.Rule

// ZoneDefinition captures a reusable zone type (hero, grid, sidebar) with its
// rendering tag and capacity. Definitions are shared across many pages and
// treated as immutable once zones reference them.
type ZoneDefinition struct {
	bun.BaseModel `bun:"table:zone_definitions,alias:zd"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug       string    `bun:"slug,notnull,unique" json:"slug"`
	Name       string    `bun:"name,notnull" json:"name"`
	RenderType string    `bun:"render_type,notnull" json:"render_type"`
	MaxItems   int       `bun:"max_items,notnull" json:"max_items"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Zone is a page's instance of a definition: a named slot with an ordering
// among the page's zones and an optional auto-fill rule.
type Zone struct {
	bun.BaseModel `bun:"table:zones,alias:z"`

	ID           uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	PageID       uuid.UUID     `bun:"page_id,notnull,type:uuid" json:"page_id"`
	DefinitionID uuid.UUID     `bun:"definition_id,notnull,type:uuid" json:"definition_id"`
	SortOrder    int           `bun:"sort_order,notnull,default:0" json:"sort_order"`
	Enabled      bool          `bun:"enabled,notnull,default:true" json:"enabled"`
	Name         *string       `bun:"name" json:"name,omitempty"`
	AutoFill     *AutoFillRule `bun:"auto_fill,type:jsonb" json:"auto_fill,omitempty"`
	CreatedAt    time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Definition *ZoneDefinition     `bun:"rel:belongs-to,join:definition_id=id" json:"definition,omitempty"`
	Placements []*ContentPlacement `bun:"rel:has-many,join:id=zone_id" json:"placements,omitempty"`
}

// PlacementContentType tags what a placement points at.
type PlacementContentType string

const (
	PlacementArticle PlacementContentType = "article"
	PlacementVideo   PlacementContentType = "video"
	PlacementCustom  PlacementContentType = "custom"
)

// ContentPlacement is a single manually curated assignment within a zone.
// Exactly one of ArticleID, VideoID, or Custom is populated, consistent with
// ContentType. Position is zero-based and unique within the zone; the store
// enforces the uniqueness, not convention.
type ContentPlacement struct {
	bun.BaseModel `bun:"table:content_placements,alias:cp"`

	ID          uuid.UUID            `bun:",pk,type:uuid" json:"id"`
	ZoneID      uuid.UUID            `bun:"zone_id,notnull,type:uuid" json:"zone_id"`
	ContentType PlacementContentType `bun:"content_type,notnull" json:"content_type"`
	ArticleID   *uuid.UUID           `bun:"article_id,type:uuid" json:"article_id,omitempty"`
	VideoID     *uuid.UUID           `bun:"video_id,type:uuid" json:"video_id,omitempty"`
	Custom      map[string]any       `bun:"custom_payload,type:jsonb" json:"custom,omitempty"`
	Position    int                  `bun:"position,notnull" json:"position"`
	Pinned      bool                 `bun:"pinned,notnull,default:false" json:"pinned"`
	StartsAt    *time.Time           `bun:"starts_at" json:"starts_at,omitempty"`
	EndsAt      *time.Time           `bun:"ends_at" json:"ends_at,omitempty"`
	CreatedBy   uuid.UUID            `bun:"created_by,notnull,type:uuid" json:"created_by"`
	CreatedAt   time.Time            `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time            `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// VisibleAt reports whether the placement's visibility window contains the
// supplied instant. A placement with no window is always visible.
func (p *ContentPlacement) VisibleAt(now time.Time) bool {
	if p == nil {
		return false
	}
	if p.StartsAt != nil && p.StartsAt.After(now) {
		return false
	}
	if p.EndsAt != nil && p.EndsAt.Before(now) {
		return false
	}
	return true
}

// PlacementOrigin distinguishes how a resolved item entered the sequence.
// Editors need this; end-viewer rendering does not.
type PlacementOrigin string

const (
	OriginPinned PlacementOrigin = "pinned"
	OriginManual PlacementOrigin = "manual"
	OriginAuto   PlacementOrigin = "auto"
)

// ResolvedItem pairs one emitted content entry with its origin. Exactly one
// of Content or Custom is set.
type ResolvedItem struct {
	Origin      PlacementOrigin             `json:"origin"`
	PlacementID *uuid.UUID                  `json:"placement_id,omitempty"`
	Content     *interfaces.ContentSummary  `json:"content,omitempty"`
	Custom      map[string]any              `json:"custom,omitempty"`
}

// ResolvedZone is the transient result of merging a zone's placements with
// its auto-fill output: one ordered, de-duplicated, capacity-bounded
// sequence plus enough metadata to render or edit it.
type ResolvedZone struct {
	ZoneID   uuid.UUID      `json:"zone_id"`
	Slug     string         `json:"slug"`
	ZoneType string         `json:"zone_type"`
	Items    []ResolvedItem `json:"items"`
	// Degraded is set when the auto-fill step was skipped because the
	// content repository was unavailable.
	Degraded bool `json:"degraded,omitempty"`
}
