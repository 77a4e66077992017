package zonecontent

import (
	"github.com/newsroomhq/zonecontent/internal/di"
	"github.com/newsroomhq/zonecontent/pages"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
	"github.com/newsroomhq/zonecontent/zones"
)

// ZoneService exports the zone service contract for consumers of the
// zonecontent package.
type ZoneService = zones.Service

// PageService exports the page service contract.
type PageService = pages.Service

// ContentRepository exports the read-side content store contract the host
// application implements.
type ContentRepository = interfaces.ContentRepository

// ContentSummary exports the content projection returned by resolution.
type ContentSummary = interfaces.ContentSummary

// ContentQuery exports the content read query.
type ContentQuery = interfaces.ContentQuery

// AuthProvider exports the permission gate contract.
type AuthProvider = interfaces.AuthProvider

// Zone model exports.
type (
	ZoneDefinition   = zones.ZoneDefinition
	Zone             = zones.Zone
	ContentPlacement = zones.ContentPlacement
	AutoFillRule     = zones.AutoFillRule
	ResolvedZone     = zones.ResolvedZone
	ResolvedItem     = zones.ResolvedItem
	Page             = pages.Page
	ComposedPage     = pages.ComposedPage
)

// Module represents the top level zone content runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a zone content module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Zones returns the configured zone service.
func (m *Module) Zones() ZoneService {
	return m.container.ZoneService()
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}
