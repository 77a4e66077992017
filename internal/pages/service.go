package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/logging"
	"github.com/newsroomhq/zonecontent/internal/zones"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

var (
	ErrSlugRequired  = errors.New("pages: slug required")
	ErrTitleRequired = errors.New("pages: title required")
	ErrPageExists    = errors.New("pages: slug already exists")

	ErrNotAuthorized = errors.New("pages: caller is not permitted to modify pages")
)

// NotFoundError is returned when a page cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// PermissionManagePages is the permission checked before any mutation when an
// auth provider is configured.
const PermissionManagePages = "pages.manage"

// Service exposes page management and the page-level composition read.
type Service interface {
	CreatePage(ctx context.Context, input CreatePageInput) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*Page, error)
	ListPages(ctx context.Context) ([]*Page, error)
	UpdatePage(ctx context.Context, input UpdatePageInput) (*Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error

	ComposePage(ctx context.Context, input ComposePageInput) (*ComposedPage, error)
}

// CreatePageInput captures the information required to register a page.
// Slug is derived from Title when omitted.
type CreatePageInput struct {
	Slug        string
	Title       string
	Description *string
	PageType    string
	CategoryID  *uuid.UUID
	Active      *bool
}

// UpdatePageInput defines mutable page fields; nil pointers keep the current
// value.
type UpdatePageInput struct {
	PageID      uuid.UUID
	Slug        *string
	Title       *string
	Description *string
	PageType    *string
	CategoryID  *uuid.UUID
	Active      *bool
	// ClearCategory detaches the page from its category; it wins over
	// CategoryID when both are set.
	ClearCategory bool
}

// ComposePageInput controls a full-page resolution.
type ComposePageInput struct {
	Slug string
	// Now overrides the evaluation instant; zero means the service clock.
	Now time.Time
	// IncludeDisabled resolves disabled zones and inactive pages as well,
	// for editorial preview surfaces.
	IncludeDisabled bool
	// DeduplicateAcrossZones suppresses auto-filled content already emitted
	// by an earlier zone on the same page.
	DeduplicateAcrossZones bool
}

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures page service behaviour.
type ServiceOption func(*service)

// WithClock overrides the time source used by the service.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger wires the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithAuthProvider gates every mutation behind the supplied provider.
func WithAuthProvider(auth interfaces.AuthProvider) ServiceOption {
	return func(s *service) {
		if auth != nil {
			s.auth = auth
		}
	}
}

type service struct {
	pages Repository
	zones zones.Service
	auth  interfaces.AuthProvider
	now   func() time.Time
	id    IDGenerator
	log   interfaces.Logger
}

// NewService constructs a page service instance. The zone service drives
// both the cascade on delete and per-zone resolution during composition.
func NewService(pageRepo Repository, zoneService zones.Service, opts ...ServiceOption) Service {
	s := &service{
		pages: pageRepo,
		zones: zoneService,
		now:   time.Now,
		id:    uuid.New,
		log:   logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) authorize(ctx context.Context) error {
	if s.auth == nil {
		return nil
	}
	allowed, err := s.auth.HasPermission(ctx, PermissionManagePages)
	if err != nil {
		return fmt.Errorf("pages: permission check failed: %w", err)
	}
	if !allowed {
		return ErrNotAuthorized
	}
	return nil
}

func (s *service) CreatePage(ctx context.Context, input CreatePageInput) (*Page, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	raw := strings.TrimSpace(input.Slug)
	if raw == "" {
		raw = title
	}
	normalized, err := slug.Normalize(raw)
	if err != nil || normalized == "" {
		return nil, ErrSlugRequired
	}

	if existing, err := s.pages.GetBySlug(ctx, normalized); err == nil && existing != nil {
		return nil, ErrPageExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	now := s.now()
	page := &Page{
		ID:          s.id(),
		Slug:        normalized,
		Title:       title,
		Description: input.Description,
		PageType:    strings.TrimSpace(input.PageType),
		CategoryID:  input.CategoryID,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.pages.Create(ctx, page)
	if err != nil {
		return nil, err
	}
	s.log.Debug("page created", "slug", created.Slug)
	return created, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.pages.GetByID(ctx, id)
}

func (s *service) GetPageBySlug(ctx context.Context, slugValue string) (*Page, error) {
	return s.pages.GetBySlug(ctx, strings.TrimSpace(slugValue))
}

func (s *service) ListPages(ctx context.Context) ([]*Page, error) {
	return s.pages.List(ctx)
}

func (s *service) UpdatePage(ctx context.Context, input UpdatePageInput) (*Page, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	page, err := s.pages.GetByID(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	if input.Slug != nil {
		normalized, err := slug.Normalize(*input.Slug)
		if err != nil || normalized == "" {
			return nil, ErrSlugRequired
		}
		if normalized != page.Slug {
			if existing, err := s.pages.GetBySlug(ctx, normalized); err == nil && existing != nil {
				return nil, ErrPageExists
			} else if err != nil {
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					return nil, err
				}
			}
			page.Slug = normalized
		}
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		page.Title = title
	}
	if input.Description != nil {
		page.Description = input.Description
	}
	if input.PageType != nil {
		page.PageType = strings.TrimSpace(*input.PageType)
	}
	if input.ClearCategory {
		page.CategoryID = nil
	} else if input.CategoryID != nil {
		page.CategoryID = input.CategoryID
	}
	if input.Active != nil {
		page.Active = *input.Active
	}
	page.UpdatedAt = s.now()

	return s.pages.Update(ctx, page)
}

// DeletePage removes the page together with its zones and their placements.
func (s *service) DeletePage(ctx context.Context, id uuid.UUID) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.zones.DeleteZonesByPage(ctx, page.ID); err != nil {
		return err
	}
	if err := s.pages.Delete(ctx, page.ID); err != nil {
		return err
	}
	s.log.Info("page deleted", "slug", page.Slug)
	return nil
}

// ComposePage resolves every zone of the page in sort order. Missing and
// inactive pages compose to an empty result so public rendering paths never
// branch on a not-found error.
func (s *service) ComposePage(ctx context.Context, input ComposePageInput) (*ComposedPage, error) {
	composed := &ComposedPage{
		Zones:  []*zones.ResolvedZone{},
		BySlug: make(map[string]*zones.ResolvedZone),
	}

	page, err := s.pages.GetBySlug(ctx, strings.TrimSpace(input.Slug))
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return composed, nil
		}
		return nil, err
	}
	if !page.Active && !input.IncludeDisabled {
		return composed, nil
	}
	composed.Page = page

	pageZones, err := s.zones.ListZonesByPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = s.now()
	}

	var emitted map[uuid.UUID]struct{}
	if input.DeduplicateAcrossZones {
		emitted = make(map[uuid.UUID]struct{})
	}

	for _, zone := range pageZones {
		if !zone.Enabled && !input.IncludeDisabled {
			continue
		}

		resolved, err := s.zones.ResolveZone(ctx, zones.ResolveZoneInput{
			ZoneID:          zone.ID,
			Now:             now,
			Exclude:         emitted,
			IncludeDisabled: input.IncludeDisabled,
		})
		if err != nil {
			return nil, err
		}

		if emitted != nil {
			for _, item := range resolved.Items {
				if item.Content != nil {
					emitted[item.Content.ID] = struct{}{}
				}
			}
		}

		composed.Zones = append(composed.Zones, resolved)
		if _, taken := composed.BySlug[resolved.Slug]; !taken {
			composed.BySlug[resolved.Slug] = resolved
		}
	}

	return composed, nil
}
