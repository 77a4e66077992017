package contentstub

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// Repository is an in-memory interfaces.ContentRepository. It backs tests and
// the runnable example where the real article/video stores are out of reach.
type Repository struct {
	mu        sync.RWMutex
	summaries []interfaces.ContentSummary
	failWith  error
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Seed appends summaries to the repository.
func (r *Repository) Seed(summaries ...interfaces.ContentSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summaries...)
}

// FailWith makes every subsequent query return err. Pass nil to recover.
func (r *Repository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// Query filters, sorts, and paginates the seeded summaries. All filter
// predicates are conjunctive.
func (r *Repository) Query(ctx context.Context, q interfaces.ContentQuery) ([]interfaces.ContentSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	var idSet map[uuid.UUID]struct{}
	if len(q.IDs) > 0 {
		idSet = make(map[uuid.UUID]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			idSet[id] = struct{}{}
		}
	}

	matched := make([]interfaces.ContentSummary, 0, len(r.summaries))
	for _, summary := range r.summaries {
		if summary.Kind != q.Kind {
			continue
		}
		if idSet != nil {
			if _, ok := idSet[summary.ID]; !ok {
				continue
			}
		}
		if q.CategoryID != nil {
			if summary.CategoryID == nil || *summary.CategoryID != *q.CategoryID {
				continue
			}
		}
		if q.CategorySlug != "" && !strings.EqualFold(summary.CategorySlug, q.CategorySlug) {
			continue
		}
		if len(q.Tags) > 0 && !hasAllTags(summary.Tags, q.Tags) {
			continue
		}
		if q.Featured != nil && summary.Featured != *q.Featured {
			continue
		}
		if q.Breaking != nil && summary.Breaking != *q.Breaking {
			continue
		}
		if q.PublishedAfter != nil && summary.PublishedAt.Before(*q.PublishedAfter) {
			continue
		}
		matched = append(matched, summary)
	}

	sortSummaries(matched, q.SortField, q.SortDesc)

	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]interfaces.ContentSummary, len(matched))
	copy(out, matched)
	return out, nil
}

func hasAllTags(have []string, want []string) bool {
	for _, tag := range want {
		found := false
		for _, candidate := range have {
			if strings.EqualFold(candidate, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortSummaries(items []interfaces.ContentSummary, field string, desc bool) {
	less := func(a, b interfaces.ContentSummary) bool {
		switch field {
		case interfaces.ContentSortTitle:
			return a.Title < b.Title
		default:
			if a.PublishedAt.Equal(b.PublishedAt) {
				return a.ID.String() < b.ID.String()
			}
			return a.PublishedAt.Before(b.PublishedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
