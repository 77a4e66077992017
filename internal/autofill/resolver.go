package autofill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/logging"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// ErrUpstreamUnavailable wraps content repository failures so callers can
// distinguish degraded reads from caller errors.
var ErrUpstreamUnavailable = errors.New("autofill: content repository unavailable")

const defaultQueryTimeout = 5 * time.Second

// ResolverOption configures resolver behaviour.
type ResolverOption func(*Resolver)

// WithClock overrides the time source used when converting max-age buckets.
func WithClock(clock func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithQueryTimeout bounds each content repository query.
func WithQueryTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithOverfetchMargin pads the over-fetch window beyond the exclusion-set
// size. Larger margins reduce the chance of under-filled zones when the
// exclusion set overlaps heavily with the rule's result window.
func WithOverfetchMargin(margin int) ResolverOption {
	return func(r *Resolver) {
		if margin > 0 {
			r.margin = margin
		}
	}
}

// WithLogger wires the resolver's logger.
func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.log = logger
		}
	}
}

// Resolver turns a declarative rule into a concrete ordered list of content
// summaries. It is purely a read; it never mutates repository state.
type Resolver struct {
	repo    interfaces.ContentRepository
	now     func() time.Time
	timeout time.Duration
	margin  int
	log     interfaces.Logger
}

// NewResolver constructs a resolver over the supplied content repository.
func NewResolver(repo interfaces.ContentRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:    repo,
		now:     time.Now,
		timeout: defaultQueryTimeout,
		log:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve executes the rule and returns at most limit summaries after the
// exclusion set has been removed. A rule with its own Limit caps the result
// further, and stands in for the limit when the caller passes zero; with
// neither set the result is empty.
//
// Exclusions are applied after fetching, so the resolver over-fetches by the
// exclusion-set size (plus the configured margin) to cover the worst case of
// every excluded identifier landing inside the result window. This is an
// approximation: a pathologically large exclusion overlap beyond the margin
// can still under-fill the result.
func (r *Resolver) Resolve(ctx context.Context, rule Rule, limit int, exclude map[uuid.UUID]struct{}) ([]interfaces.ContentSummary, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if rule.Limit > 0 && (limit <= 0 || rule.Limit < limit) {
		limit = rule.Limit
	}
	if limit <= 0 {
		return nil, nil
	}
	if r.repo == nil {
		return nil, fmt.Errorf("%w: repository not configured", ErrUpstreamUnavailable)
	}

	fetch := limit + len(exclude) + r.margin
	query := rule.Query(r.now(), rule.Skip, fetch)

	queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	summaries, err := r.repo.Query(queryCtx, query)
	if err != nil {
		r.log.Warn("autofill query failed", "source", string(rule.Source), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result := make([]interfaces.ContentSummary, 0, limit)
	for _, summary := range summaries {
		if _, excluded := exclude[summary.ID]; excluded {
			continue
		}
		result = append(result, summary)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}
