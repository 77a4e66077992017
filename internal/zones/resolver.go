package zones

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// ResolveZone merges the zone's manual placements with its auto-fill output
// into one ordered sequence:
//
//  1. placements outside their visibility window are dropped
//  2. the survivors keep their position order, pinned or not
//  3. auto-fill receives the remaining capacity and the survivors' content
//     identifiers as exclusions
//  4. manual entries come first, auto-filled entries after
//
// Manual placements are never truncated to the definition's capacity; an
// over-full zone simply leaves no room for auto-fill. When the content
// repository is unavailable the zone degrades to whatever could be resolved
// and the result is flagged, never failed.
func (s *service) ResolveZone(ctx context.Context, input ResolveZoneInput) (*ResolvedZone, error) {
	zone, err := s.zones.GetByID(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}

	definition, err := s.definitions.GetByID(ctx, zone.DefinitionID)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedZone{
		ZoneID:   zone.ID,
		Slug:     definition.Slug,
		ZoneType: definition.RenderType,
		Items:    []ResolvedItem{},
	}

	if !zone.Enabled && !input.IncludeDisabled {
		return resolved, nil
	}

	now := input.Now
	if now.IsZero() {
		now = s.now()
	}

	placements, err := s.placements.ListByZone(ctx, zone.ID)
	if err != nil {
		return nil, err
	}

	valid := placements[:0]
	for _, placement := range placements {
		if placement.VisibleAt(now) {
			valid = append(valid, placement)
		}
	}

	summaries, degraded := s.hydratePlacements(ctx, valid)

	articleRefs := make(map[uuid.UUID]struct{})
	videoRefs := make(map[uuid.UUID]struct{})
	for _, placement := range valid {
		switch {
		case placement.ArticleID != nil:
			articleRefs[*placement.ArticleID] = struct{}{}
		case placement.VideoID != nil:
			videoRefs[*placement.VideoID] = struct{}{}
		}
	}

	for _, placement := range valid {
		item := ResolvedItem{
			Origin:      OriginManual,
			PlacementID: &placement.ID,
		}
		if placement.Pinned {
			item.Origin = OriginPinned
		}

		switch placement.ContentType {
		case PlacementCustom:
			item.Custom = placement.Custom
		case PlacementArticle:
			summary, ok := summaries[*placement.ArticleID]
			if !ok {
				s.log.Warn("placement references unavailable content",
					"placement_id", placement.ID.String(),
					"article_id", placement.ArticleID.String(),
				)
				continue
			}
			item.Content = &summary
		case PlacementVideo:
			summary, ok := summaries[*placement.VideoID]
			if !ok {
				s.log.Warn("placement references unavailable content",
					"placement_id", placement.ID.String(),
					"video_id", placement.VideoID.String(),
				)
				continue
			}
			item.Content = &summary
		}
		resolved.Items = append(resolved.Items, item)
	}

	// Capacity counts every valid placement, including ones that failed to
	// hydrate; an editor fixing a broken reference should not find the slot
	// silently handed to auto-fill.
	remaining := definition.MaxItems - len(valid)
	if remaining <= 0 || zone.AutoFill == nil || s.autofillOff {
		resolved.Degraded = degraded
		return resolved, nil
	}

	exclude := make(map[uuid.UUID]struct{}, len(input.Exclude)+len(articleRefs)+len(videoRefs))
	for id := range input.Exclude {
		exclude[id] = struct{}{}
	}
	switch zone.AutoFill.Source {
	case interfaces.ContentKindArticle:
		for id := range articleRefs {
			exclude[id] = struct{}{}
		}
	case interfaces.ContentKindVideo:
		for id := range videoRefs {
			exclude[id] = struct{}{}
		}
	}

	filled, err := s.resolver.Resolve(ctx, *zone.AutoFill, remaining, exclude)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			s.log.Warn("auto-fill skipped, content repository unavailable",
				"zone_id", zone.ID.String(),
				"error", err,
			)
			resolved.Degraded = true
			return resolved, nil
		}
		return nil, err
	}

	for i := range filled {
		resolved.Items = append(resolved.Items, ResolvedItem{
			Origin:  OriginAuto,
			Content: &filled[i],
		})
	}

	resolved.Degraded = degraded
	return resolved, nil
}

// PreviewAutoFill executes a rule standalone, with no zone and no
// exclusions. The supplied limit caps the result; zero falls back to the
// rule's own limit. Editors use it to sanity check a rule before saving it
// onto a zone.
func (s *service) PreviewAutoFill(ctx context.Context, rule AutoFillRule, limit int) ([]interfaces.ContentSummary, error) {
	return s.resolver.Resolve(ctx, rule, limit, nil)
}

// hydratePlacements batch-loads the content summaries behind the supplied
// placements' article and video references, one query per kind. A failed
// query degrades that kind's placements rather than failing resolution.
func (s *service) hydratePlacements(ctx context.Context, placements []*ContentPlacement) (map[uuid.UUID]interfaces.ContentSummary, bool) {
	var articleIDs, videoIDs []uuid.UUID
	for _, placement := range placements {
		switch {
		case placement.ArticleID != nil:
			articleIDs = append(articleIDs, *placement.ArticleID)
		case placement.VideoID != nil:
			videoIDs = append(videoIDs, *placement.VideoID)
		}
	}

	summaries := make(map[uuid.UUID]interfaces.ContentSummary, len(articleIDs)+len(videoIDs))
	if s.content == nil {
		return summaries, len(articleIDs)+len(videoIDs) > 0
	}

	degraded := false
	degraded = s.hydrateKind(ctx, interfaces.ContentKindArticle, articleIDs, summaries) || degraded
	degraded = s.hydrateKind(ctx, interfaces.ContentKindVideo, videoIDs, summaries) || degraded
	return summaries, degraded
}

func (s *service) hydrateKind(ctx context.Context, kind interfaces.ContentKind, ids []uuid.UUID, into map[uuid.UUID]interfaces.ContentSummary) bool {
	if len(ids) == 0 {
		return false
	}

	results, err := s.content.Query(ctx, interfaces.ContentQuery{
		Kind:  kind,
		IDs:   ids,
		Limit: len(ids),
	})
	if err != nil {
		s.log.Warn("content lookup failed", "kind", string(kind), "error", err)
		return true
	}
	for _, summary := range results {
		into[summary.ID] = summary
	}
	return false
}
