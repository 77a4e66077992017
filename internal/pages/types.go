package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/newsroomhq/zonecontent/internal/zones"
)

// Page is a routable surface (homepage, section front, landing page) that
// owns an ordered collection of zones.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug        string     `bun:"slug,notnull,unique" json:"slug"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description *string    `bun:"description" json:"description,omitempty"`
	PageType    string     `bun:"page_type,notnull,default:''" json:"page_type,omitempty"`
	CategoryID  *uuid.UUID `bun:"category_id,type:uuid" json:"category_id,omitempty"`
	Active      bool       `bun:"active,notnull,default:true" json:"active"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Zones []*zones.Zone `bun:"rel:has-many,join:id=page_id" json:"zones,omitempty"`
}

// ComposedPage is the read-side rendering model: every enabled zone of the
// page resolved, in the page's zone order. BySlug indexes the same results by
// the zone definition's slug; when a page carries two zones of the same
// definition the first one in sort order wins the index entry. A missing or
// inactive page composes to a nil Page and empty collections, not an error.
type ComposedPage struct {
	Page   *Page                          `json:"page,omitempty"`
	Zones  []*zones.ResolvedZone          `json:"zones"`
	BySlug map[string]*zones.ResolvedZone `json:"-"`
}
