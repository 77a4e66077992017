package di

import (
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/newsroomhq/zonecontent/internal/autofill"
	"github.com/newsroomhq/zonecontent/internal/logging"
	"github.com/newsroomhq/zonecontent/internal/logging/console"
	"github.com/newsroomhq/zonecontent/internal/logging/gologger"
	"github.com/newsroomhq/zonecontent/internal/pages"
	"github.com/newsroomhq/zonecontent/internal/runtimeconfig"
	"github.com/newsroomhq/zonecontent/internal/scheduler"
	"github.com/newsroomhq/zonecontent/internal/zones"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// Container wires module dependencies. With no overrides everything runs on
// in-memory repositories; supplying a bun.DB switches persistence to SQL.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	contentRepo    interfaces.ContentRepository
	auth           interfaces.AuthProvider
	scheduler      interfaces.Scheduler

	definitionRepo zones.DefinitionRepository
	zoneRepo       zones.ZoneRepository
	placementRepo  zones.PlacementRepository
	pageRepo       pages.Repository

	zoneSvc zones.Service
	pageSvc pages.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches repositories from in-memory to bun-backed storage.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentRepository wires the host's article/video read store.
func WithContentRepository(repo interfaces.ContentRepository) Option {
	return func(c *Container) {
		c.contentRepo = repo
	}
}

// WithAuthProvider wires the host's permission checks into every mutation.
func WithAuthProvider(auth interfaces.AuthProvider) Option {
	return func(c *Container) {
		c.auth = auth
	}
}

// WithScheduler wires the host's job store for visibility window refreshes.
// Without one, window boundary jobs are dropped.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(c *Container) {
		if sched != nil {
			c.scheduler = sched
		}
	}
}

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithZoneService overrides the assembled zone service.
func WithZoneService(svc zones.Service) Option {
	return func(c *Container) {
		c.zoneSvc = svc
	}
}

// WithPageService overrides the assembled page service.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// NewContainer validates the configuration and assembles the module graph.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:         cfg,
		scheduler:      scheduler.NewNoOp(),
		definitionRepo: zones.NewMemoryDefinitionRepository(),
		zoneRepo:       zones.NewMemoryZoneRepository(),
		placementRepo:  zones.NewMemoryPlacementRepository(),
		pageRepo:       pages.NewMemoryRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()

	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch logCfg.Provider {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := consoleLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}

	c.definitionRepo = zones.NewBunDefinitionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.zoneRepo = zones.NewBunZoneRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.placementRepo = zones.NewBunPlacementRepository(c.bunDB)
	c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureServices() {
	if c.zoneSvc == nil {
		resolverOpts := []autofill.ResolverOption{
			autofill.WithLogger(logging.AutofillLogger(c.loggerProvider)),
		}
		if timeout := c.Config.AutoFill.QueryTimeout; timeout > 0 {
			resolverOpts = append(resolverOpts, autofill.WithQueryTimeout(timeout))
		}
		if margin := c.Config.AutoFill.OverfetchMargin; margin > 0 {
			resolverOpts = append(resolverOpts, autofill.WithOverfetchMargin(margin))
		}

		zoneOpts := []zones.ServiceOption{
			zones.WithLogger(logging.ZonesLogger(c.loggerProvider)),
			zones.WithAutoFillResolver(autofill.NewResolver(c.contentRepo, resolverOpts...)),
			zones.WithScheduler(c.scheduler),
		}
		if !c.Config.Features.AutoFill {
			zoneOpts = append(zoneOpts, zones.WithAutoFillDisabled())
		}
		if c.auth != nil {
			zoneOpts = append(zoneOpts, zones.WithAuthProvider(c.auth))
		}

		c.zoneSvc = zones.NewService(
			c.definitionRepo,
			c.zoneRepo,
			c.placementRepo,
			c.contentRepo,
			zoneOpts...,
		)
	}

	if c.pageSvc == nil {
		pageOpts := []pages.ServiceOption{
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		}
		if c.auth != nil {
			pageOpts = append(pageOpts, pages.WithAuthProvider(c.auth))
		}

		c.pageSvc = pages.NewService(c.pageRepo, c.zoneSvc, pageOpts...)
	}
}

// LoggerProvider exposes the configured provider, possibly nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Scheduler exposes the configured job store.
func (c *Container) Scheduler() interfaces.Scheduler {
	return c.scheduler
}

// ContentRepository exposes the configured content read store, possibly nil.
func (c *Container) ContentRepository() interfaces.ContentRepository {
	return c.contentRepo
}

// DefinitionRepository exposes the zone definition store.
func (c *Container) DefinitionRepository() zones.DefinitionRepository {
	return c.definitionRepo
}

// ZoneRepository exposes the zone store.
func (c *Container) ZoneRepository() zones.ZoneRepository {
	return c.zoneRepo
}

// PlacementRepository exposes the placement store.
func (c *Container) PlacementRepository() zones.PlacementRepository {
	return c.placementRepo
}

// PageRepository exposes the page store.
func (c *Container) PageRepository() pages.Repository {
	return c.pageRepo
}

// ZoneService returns the assembled zone service.
func (c *Container) ZoneService() zones.Service {
	return c.zoneSvc
}

// PageService returns the assembled page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}
