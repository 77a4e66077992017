package di

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/contentstub"
	"github.com/newsroomhq/zonecontent/internal/logging/gologger"
	"github.com/newsroomhq/zonecontent/internal/runtimeconfig"
	"github.com/newsroomhq/zonecontent/internal/zones"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

func TestNewContainerDefaultsToMemoryRepositories(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(runtimeconfig.DefaultConfig(),
		WithContentRepository(contentstub.NewRepository()),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	svc := container.ZoneService()
	definition, err := svc.CreateDefinition(ctx, zones.CreateDefinitionInput{
		Name:     "Hero",
		MaxItems: 3,
	})
	if err != nil {
		t.Fatalf("create definition through container wiring: %v", err)
	}
	if definition.Slug != "hero" {
		t.Fatalf("unexpected slug %q", definition.Slug)
	}

	if container.PageService() == nil {
		t.Fatal("expected page service to be assembled")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Features.AdvancedCache = true

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrAdvancedCacheRequiresEnabledCache) {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}
	if provider.GetLogger("zonecontent.test") == nil {
		t.Fatal("expected logger from go-logger provider")
	}
}

func TestConfigureLoggerProviderDefaultsToConsole(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "console"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.LoggerProvider() == nil {
		t.Fatal("expected console logger provider")
	}
}

func TestAutoFillFeatureDisabled(t *testing.T) {
	ctx := context.Background()

	content := contentstub.NewRepository()
	articleID := uuid.New()
	content.Seed(interfaces.ContentSummary{
		ID:   articleID,
		Kind: interfaces.ContentKindArticle,
	})

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.AutoFill = false

	container, err := NewContainer(cfg, WithContentRepository(content))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	svc := container.ZoneService()
	definition, err := svc.CreateDefinition(ctx, zones.CreateDefinitionInput{Name: "Rail", MaxItems: 3})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}
	zone, err := svc.CreateZone(ctx, zones.CreateZoneInput{
		PageID:       uuid.New(),
		DefinitionID: definition.ID,
		AutoFill:     &zones.AutoFillRule{Source: interfaces.ContentKindArticle},
	})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}

	resolved, err := svc.ResolveZone(ctx, zones.ResolveZoneInput{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("resolve zone: %v", err)
	}
	if len(resolved.Items) != 0 {
		t.Fatalf("expected rule to stay inert with the feature off, got %d items", len(resolved.Items))
	}
	if resolved.Degraded {
		t.Fatal("a disabled feature is not a degraded result")
	}
}
