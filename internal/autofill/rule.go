package autofill

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

var (
	ErrRuleSourceInvalid = errors.New("autofill: rule source must be article or video")
	ErrRuleLimitInvalid  = errors.New("autofill: rule limit cannot be negative")
	ErrRuleSkipInvalid   = errors.New("autofill: rule skip cannot be negative")
	ErrRuleMaxAgeInvalid = errors.New("autofill: rule max age must be one of 24h, 7d, 30d")
	ErrRuleSortInvalid   = errors.New("autofill: rule sort field is not supported")
)

// MaxAge buckets accepted by Rule. Each converts to an absolute lower bound
// on publish time at the moment of resolution.
const (
	MaxAgeDay   = "24h"
	MaxAgeWeek  = "7d"
	MaxAgeMonth = "30d"
)

// Rule is a declarative content selection embedded in a zone. It describes
// which content to pull, how to order it, and how much of it to take.
type Rule struct {
	Source interfaces.ContentKind `json:"source"`

	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategorySlug string     `json:"category_slug,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Featured     *bool      `json:"featured,omitempty"`
	Breaking     *bool      `json:"breaking,omitempty"`
	MaxAge       string     `json:"max_age,omitempty"`

	SortField string `json:"sort_field,omitempty"`
	SortDesc  bool   `json:"sort_desc,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Skip      int    `json:"skip,omitempty"`
}

// Validate checks the rule for shape errors before it is stored or executed.
func (r Rule) Validate() error {
	switch r.Source {
	case interfaces.ContentKindArticle, interfaces.ContentKindVideo:
	default:
		return ErrRuleSourceInvalid
	}
	if r.Limit < 0 {
		return ErrRuleLimitInvalid
	}
	if r.Skip < 0 {
		return ErrRuleSkipInvalid
	}
	if r.MaxAge != "" {
		if _, ok := maxAgeDuration(r.MaxAge); !ok {
			return ErrRuleMaxAgeInvalid
		}
	}
	switch strings.TrimSpace(r.SortField) {
	case "", interfaces.ContentSortPublishedAt, interfaces.ContentSortTitle:
	default:
		return ErrRuleSortInvalid
	}
	return nil
}

// Query translates the rule into a concrete repository query evaluated at
// the supplied instant. The caller decides limit and skip; the rule's own
// values are defaults it can override.
func (r Rule) Query(now time.Time, skip, limit int) interfaces.ContentQuery {
	q := interfaces.ContentQuery{
		Kind:         r.Source,
		CategoryID:   r.CategoryID,
		CategorySlug: strings.TrimSpace(r.CategorySlug),
		Tags:         r.Tags,
		Featured:     r.Featured,
		Breaking:     r.Breaking,
		SortField:    strings.TrimSpace(r.SortField),
		SortDesc:     r.SortDesc,
		Skip:         skip,
		Limit:        limit,
	}
	if q.SortField == "" {
		q.SortField = interfaces.ContentSortPublishedAt
		q.SortDesc = true
	}
	if d, ok := maxAgeDuration(r.MaxAge); ok {
		bound := now.Add(-d)
		q.PublishedAfter = &bound
	}
	return q
}

// Value implements driver.Valuer so the rule persists as a JSON column.
func (r Rule) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSON column reads.
func (r *Rule) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*r = Rule{}
		return nil
	case []byte:
		return json.Unmarshal(value, r)
	case string:
		return json.Unmarshal([]byte(value), r)
	default:
		return fmt.Errorf("autofill: cannot scan rule from %T", src)
	}
}

func maxAgeDuration(bucket string) (time.Duration, bool) {
	switch strings.TrimSpace(bucket) {
	case MaxAgeDay:
		return 24 * time.Hour, true
	case MaxAgeWeek:
		return 7 * 24 * time.Hour, true
	case MaxAgeMonth:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
