package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	zonecontent "github.com/newsroomhq/zonecontent"
	"github.com/newsroomhq/zonecontent/internal/contentstub"
	"github.com/newsroomhq/zonecontent/internal/di"
	"github.com/newsroomhq/zonecontent/internal/permissions"
	"github.com/newsroomhq/zonecontent/pages"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
	"github.com/newsroomhq/zonecontent/zones"
)

func main() {
	ctx := context.Background()

	cfg := zonecontent.DefaultConfig()
	cfg.Features.AutoFill = true
	cfg.Features.Logger = true

	content := contentstub.NewRepository()
	lead := seedNewsroom(content)

	module, err := zonecontent.New(cfg,
		di.WithContentRepository(content),
		di.WithAuthProvider(permissions.NewStatic(
			zones.PermissionManageZones,
			pages.PermissionManagePages,
		)),
	)
	if err != nil {
		log.Fatalf("assemble module: %v", err)
	}

	page, err := module.Pages().CreatePage(ctx, pages.CreatePageInput{
		Title:    "Front Page",
		Slug:     "frontpage",
		PageType: "homepage",
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}

	heroDef, err := module.Zones().CreateDefinition(ctx, zones.CreateDefinitionInput{
		Name:       "Homepage Hero",
		RenderType: "hero",
		MaxItems:   3,
	})
	if err != nil {
		log.Fatalf("create hero definition: %v", err)
	}

	riverDef, err := module.Zones().CreateDefinition(ctx, zones.CreateDefinitionInput{
		Name:       "News River",
		RenderType: "list",
		MaxItems:   6,
	})
	if err != nil {
		log.Fatalf("create river definition: %v", err)
	}

	hero, err := module.Zones().CreateZone(ctx, zones.CreateZoneInput{
		PageID:       page.ID,
		DefinitionID: heroDef.ID,
		SortOrder:    0,
		AutoFill: &zonecontent.AutoFillRule{
			Source:    interfaces.ContentKindArticle,
			Featured:  boolPtr(true),
			SortField: interfaces.ContentSortPublishedAt,
			SortDesc:  true,
		},
	})
	if err != nil {
		log.Fatalf("create hero zone: %v", err)
	}

	if _, err := module.Zones().CreateZone(ctx, zones.CreateZoneInput{
		PageID:       page.ID,
		DefinitionID: riverDef.ID,
		SortOrder:    1,
		AutoFill: &zonecontent.AutoFillRule{
			Source:    interfaces.ContentKindArticle,
			SortField: interfaces.ContentSortPublishedAt,
			SortDesc:  true,
		},
	}); err != nil {
		log.Fatalf("create river zone: %v", err)
	}

	// Pin the lead story on the hero; auto-fill covers the remaining slots
	// and the river dedupes whatever the hero already emitted.
	if _, err := module.Zones().AddPlacement(ctx, zones.AddPlacementInput{
		ZoneID:      hero.ID,
		ContentType: zones.PlacementArticle,
		ArticleID:   &lead,
		Pinned:      true,
		CreatedBy:   uuid.New(),
	}); err != nil {
		log.Fatalf("add placement: %v", err)
	}

	composed, err := module.Pages().ComposePage(ctx, pages.ComposePageInput{
		Slug:                   "frontpage",
		DeduplicateAcrossZones: true,
	})
	if err != nil {
		log.Fatalf("compose page: %v", err)
	}

	for _, zone := range composed.Zones {
		fmt.Printf("zone %s (%s): %d items\n", zone.Slug, zone.ZoneType, len(zone.Items))
		for i, item := range zone.Items {
			title := "(custom)"
			if item.Content != nil {
				title = item.Content.Title
			}
			fmt.Printf("  %d. [%s] %s\n", i, item.Origin, title)
		}
	}

	payload, err := json.MarshalIndent(composed, "", "  ")
	if err != nil {
		log.Fatalf("encode composition: %v", err)
	}
	fmt.Println(string(payload))
}

// seedNewsroom loads a handful of stories and returns the id of the most
// recent featured article, which the demo pins on the hero.
func seedNewsroom(repo *contentstub.Repository) uuid.UUID {
	now := time.Now().UTC()
	stories := []struct {
		title    string
		slug     string
		featured bool
	}{
		{"Council approves transit expansion", "council-approves-transit-expansion", true},
		{"Storm system moves up the coast", "storm-system-moves-up-the-coast", true},
		{"Local teams advance to finals", "local-teams-advance-to-finals", false},
		{"Markets close mixed after rate call", "markets-close-mixed", false},
		{"New gallery opens downtown", "new-gallery-opens-downtown", false},
		{"School board debates budget", "school-board-debates-budget", false},
	}

	var lead uuid.UUID
	for i, story := range stories {
		id := uuid.New()
		if lead == uuid.Nil && story.featured {
			lead = id
		}
		repo.Seed(interfaces.ContentSummary{
			ID:          id,
			Kind:        interfaces.ContentKindArticle,
			Title:       story.title,
			Slug:        story.slug,
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
			Featured:    story.featured,
		})
	}

	repo.Seed(interfaces.ContentSummary{
		ID:              uuid.New(),
		Kind:            interfaces.ContentKindVideo,
		Title:           "Morning briefing",
		Slug:            "morning-briefing",
		PublishedAt:     now.Add(-30 * time.Minute),
		DurationSeconds: 180,
	})

	return lead
}

func boolPtr(v bool) *bool {
	return &v
}
