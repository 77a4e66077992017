package zones

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

func seedArticles(stub interface {
	Seed(...interfaces.ContentSummary)
}, count int) []uuid.UUID {
	ids := make([]uuid.UUID, count)
	for i := 0; i < count; i++ {
		ids[i] = uuid.New()
		stub.Seed(interfaces.ContentSummary{
			ID:          ids[i],
			Kind:        interfaces.ContentKindArticle,
			Title:       "Article",
			PublishedAt: testNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	return ids
}

func TestResolveZoneMergesManualAndAutoFill(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)

	// Four articles, most recent first. The manual placement pins the most
	// recent one, so auto-fill must skip it and supply the next two.
	articles := seedArticles(stub, 4)

	zone := mustCreateZone(t, svc, 3, &AutoFillRule{Source: interfaces.ContentKindArticle})
	if _, err := svc.AddPlacement(ctx, articlePlacement(zone.ID, articles[0])); err != nil {
		t.Fatalf("add placement: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}

	if resolved.Degraded {
		t.Fatal("unexpected degraded result")
	}
	if resolved.Slug != "homepage-hero" || resolved.ZoneType != "hero" {
		t.Fatalf("unexpected zone metadata: %q / %q", resolved.Slug, resolved.ZoneType)
	}

	wantContent := []uuid.UUID{articles[0], articles[1], articles[2]}
	wantOrigin := []PlacementOrigin{OriginManual, OriginAuto, OriginAuto}
	if len(resolved.Items) != len(wantContent) {
		t.Fatalf("expected %d items, got %d", len(wantContent), len(resolved.Items))
	}
	for i, item := range resolved.Items {
		if item.Content == nil || item.Content.ID != wantContent[i] {
			t.Fatalf("item %d: expected content %s, got %+v", i, wantContent[i], item.Content)
		}
		if item.Origin != wantOrigin[i] {
			t.Fatalf("item %d: expected origin %s, got %s", i, wantOrigin[i], item.Origin)
		}
	}

	// The manual entry appears exactly once despite the rule selecting it.
	seen := make(map[uuid.UUID]int)
	for _, item := range resolved.Items {
		seen[item.Content.ID]++
	}
	if seen[articles[0]] != 1 {
		t.Fatalf("expected article to appear once, got %d", seen[articles[0]])
	}
}

func TestResolveZoneFiltersVisibilityWindows(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 3)

	zone := mustCreateZone(t, svc, 5, nil)

	past := testNow.Add(-2 * time.Hour)
	expired := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	visible, err := svc.AddPlacement(ctx, articlePlacement(zone.ID, articles[0]))
	if err != nil {
		t.Fatalf("add visible: %v", err)
	}

	expiredInput := articlePlacement(zone.ID, articles[1])
	expiredInput.StartsAt = &past
	expiredInput.EndsAt = &expired
	if _, err := svc.AddPlacement(ctx, expiredInput); err != nil {
		t.Fatalf("add expired: %v", err)
	}

	futureInput := articlePlacement(zone.ID, articles[2])
	futureInput.StartsAt = &future
	if _, err := svc.AddPlacement(ctx, futureInput); err != nil {
		t.Fatalf("add future: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}
	if len(resolved.Items) != 1 {
		t.Fatalf("expected 1 visible item, got %d", len(resolved.Items))
	}
	if resolved.Items[0].PlacementID == nil || *resolved.Items[0].PlacementID != visible.ID {
		t.Fatal("expected the unwindowed placement to survive")
	}

	// At a later instant the future placement becomes visible.
	later, err := svc.ResolveZone(ctx, ResolveZoneInput{
		ZoneID: zone.ID,
		Now:    testNow.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("resolve later: %v", err)
	}
	if len(later.Items) != 2 {
		t.Fatalf("expected 2 visible items later, got %d", len(later.Items))
	}
}

func TestResolveZoneCapacityLeavesNoRoomForAutoFill(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 6)

	zone := mustCreateZone(t, svc, 2, &AutoFillRule{Source: interfaces.ContentKindArticle})
	for i := 0; i < 3; i++ {
		if _, err := svc.AddPlacement(ctx, articlePlacement(zone.ID, articles[i])); err != nil {
			t.Fatalf("add placement %d: %v", i, err)
		}
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}

	// Manual placements are never truncated; they simply exhaust capacity.
	if len(resolved.Items) != 3 {
		t.Fatalf("expected all 3 manual items, got %d", len(resolved.Items))
	}
	for _, item := range resolved.Items {
		if item.Origin == OriginAuto {
			t.Fatal("expected no auto-filled items in an over-full zone")
		}
	}
}

func TestResolveZonePinnedOriginKeepsPositionOrder(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 2)

	zone := mustCreateZone(t, svc, 5, nil)
	if _, err := svc.AddPlacement(ctx, articlePlacement(zone.ID, articles[0])); err != nil {
		t.Fatalf("add first: %v", err)
	}

	pinnedInput := articlePlacement(zone.ID, articles[1])
	pinnedInput.Pinned = true
	if _, err := svc.AddPlacement(ctx, pinnedInput); err != nil {
		t.Fatalf("add pinned: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}

	// Pinning marks the origin; it does not jump the queue.
	if resolved.Items[0].Origin != OriginManual {
		t.Fatalf("expected first item manual, got %s", resolved.Items[0].Origin)
	}
	if resolved.Items[1].Origin != OriginPinned {
		t.Fatalf("expected second item pinned, got %s", resolved.Items[1].Origin)
	}
	if resolved.Items[1].Content.ID != articles[1] {
		t.Fatal("expected pinned placement to keep its position")
	}
}

func TestResolveZoneDisabled(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 1)

	zone := mustCreateZone(t, svc, 5, nil)
	if _, err := svc.AddPlacement(ctx, articlePlacement(zone.ID, articles[0])); err != nil {
		t.Fatalf("add placement: %v", err)
	}

	disabled := false
	if _, err := svc.UpdateZone(ctx, UpdateZoneInput{ZoneID: zone.ID, Enabled: &disabled}); err != nil {
		t.Fatalf("disable zone: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve disabled zone: %v", err)
	}
	if len(resolved.Items) != 0 {
		t.Fatalf("expected empty result for disabled zone, got %d items", len(resolved.Items))
	}

	preview, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID, IncludeDisabled: true})
	if err != nil {
		t.Fatalf("resolve disabled zone with preview: %v", err)
	}
	if len(preview.Items) != 1 {
		t.Fatalf("expected preview to include items, got %d", len(preview.Items))
	}
}

func TestResolveZoneCustomPayloadItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	zone := mustCreateZone(t, svc, 5, nil)

	if _, err := svc.AddPlacement(ctx, AddPlacementInput{
		ZoneID:      zone.ID,
		ContentType: PlacementCustom,
		Custom:      map[string]any{"headline": "Breaking", "url": "/live"},
		CreatedBy:   uuid.New(),
	}); err != nil {
		t.Fatalf("add custom placement: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}
	if len(resolved.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resolved.Items))
	}
	item := resolved.Items[0]
	if item.Content != nil {
		t.Fatal("custom items carry no content summary")
	}
	if item.Custom["headline"] != "Breaking" {
		t.Fatalf("unexpected custom payload: %v", item.Custom)
	}
}

func TestResolveZoneDegradesWhenUpstreamUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)

	zone := mustCreateZone(t, svc, 3, &AutoFillRule{Source: interfaces.ContentKindArticle})
	if _, err := svc.AddPlacement(ctx, AddPlacementInput{
		ZoneID:      zone.ID,
		ContentType: PlacementCustom,
		Custom:      map[string]any{"headline": "Fallback"},
		CreatedBy:   uuid.New(),
	}); err != nil {
		t.Fatalf("add placement: %v", err)
	}

	stub.FailWith(errors.New("content store down"))

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolution must not fail on upstream outage: %v", err)
	}
	if !resolved.Degraded {
		t.Fatal("expected degraded flag")
	}
	if len(resolved.Items) != 1 {
		t.Fatalf("expected the custom placement to survive, got %d items", len(resolved.Items))
	}
	for _, item := range resolved.Items {
		if item.Origin == OriginAuto {
			t.Fatal("expected no auto-filled items during an outage")
		}
	}
}

func TestResolveZoneExclusionSeed(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 4)

	zone := mustCreateZone(t, svc, 2, &AutoFillRule{Source: interfaces.ContentKindArticle})

	// Simulate an earlier zone on the page having already shown the two most
	// recent articles.
	exclude := map[uuid.UUID]struct{}{
		articles[0]: {},
		articles[1]: {},
	}

	resolved, err := svc.ResolveZone(ctx, ResolveZoneInput{ZoneID: zone.ID, Exclude: exclude})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}
	if len(resolved.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resolved.Items))
	}
	if resolved.Items[0].Content.ID != articles[2] || resolved.Items[1].Content.ID != articles[3] {
		t.Fatal("expected excluded articles to be skipped")
	}
}

func TestPreviewAutoFill(t *testing.T) {
	ctx := context.Background()
	svc, stub := newTestService(t)
	articles := seedArticles(stub, 5)

	results, err := svc.PreviewAutoFill(ctx, AutoFillRule{Source: interfaces.ContentKindArticle}, 3)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != articles[0] {
		t.Fatal("expected newest article first")
	}

	if _, err := svc.PreviewAutoFill(ctx, AutoFillRule{Source: "podcast"}, 3); err == nil {
		t.Fatal("expected rule validation error")
	}
}
