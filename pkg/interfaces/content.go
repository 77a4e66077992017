package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentKind discriminates the two content identifier spaces served by the
// content repository. Article and video identifiers never collide because
// they live in separate stores.
type ContentKind string

const (
	ContentKindArticle ContentKind = "article"
	ContentKindVideo   ContentKind = "video"
)

// Content sort fields accepted by ContentQuery. Repositories may support
// more; these are the portable ones.
const (
	ContentSortPublishedAt = "published_at"
	ContentSortTitle       = "title"
)

// ContentSummary is the read-only projection the content repository returns.
// Kind-specific fields are zero-valued when they do not apply.
type ContentSummary struct {
	ID          uuid.UUID   `json:"id"`
	Kind        ContentKind `json:"kind"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	URL         string      `json:"url,omitempty"`
	PublishedAt time.Time   `json:"published_at"`

	// Article fields.
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategorySlug string     `json:"category_slug,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Featured     bool       `json:"featured,omitempty"`
	Breaking     bool       `json:"breaking,omitempty"`

	// Video fields.
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
}

// ContentQuery describes a filtered, sorted, paginated read against the
// content repository. All filter predicates are conjunctive.
type ContentQuery struct {
	Kind ContentKind

	IDs            []uuid.UUID
	CategoryID     *uuid.UUID
	CategorySlug   string
	Tags           []string
	Featured       *bool
	Breaking       *bool
	PublishedAfter *time.Time

	SortField string
	SortDesc  bool
	Skip      int
	Limit     int
}

// ContentRepository abstracts the article/video stores. The zone content
// module only ever reads from it; no mutation capability is required.
type ContentRepository interface {
	Query(ctx context.Context, q ContentQuery) ([]ContentSummary, error)
}
