package zones

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/newsroomhq/zonecontent/internal/autofill"
	"github.com/newsroomhq/zonecontent/internal/logging"
	"github.com/newsroomhq/zonecontent/pkg/interfaces"
)

// PermissionManageZones is the permission checked before any mutation when an
// auth provider is configured.
const PermissionManageZones = "zones.manage"

// Service exposes zone definition, zone, and placement management plus the
// read-side resolution entry points.
type Service interface {
	CreateDefinition(ctx context.Context, input CreateDefinitionInput) (*ZoneDefinition, error)
	GetDefinition(ctx context.Context, id uuid.UUID) (*ZoneDefinition, error)
	GetDefinitionBySlug(ctx context.Context, slug string) (*ZoneDefinition, error)
	ListDefinitions(ctx context.Context) ([]*ZoneDefinition, error)

	CreateZone(ctx context.Context, input CreateZoneInput) (*Zone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
	ListZonesByPage(ctx context.Context, pageID uuid.UUID) ([]*Zone, error)
	UpdateZone(ctx context.Context, input UpdateZoneInput) (*Zone, error)
	DeleteZone(ctx context.Context, id uuid.UUID) error
	DeleteZonesByPage(ctx context.Context, pageID uuid.UUID) error

	AddPlacement(ctx context.Context, input AddPlacementInput) (*ContentPlacement, error)
	UpdatePlacement(ctx context.Context, input UpdatePlacementInput) (*ContentPlacement, error)
	RemovePlacement(ctx context.Context, input RemovePlacementInput) error
	ReorderPlacements(ctx context.Context, input ReorderPlacementsInput) ([]*ContentPlacement, error)
	ListPlacements(ctx context.Context, zoneID uuid.UUID) ([]*ContentPlacement, error)
	PopulateZone(ctx context.Context, input PopulateZoneInput) ([]*ContentPlacement, error)

	ResolveZone(ctx context.Context, input ResolveZoneInput) (*ResolvedZone, error)
	PreviewAutoFill(ctx context.Context, rule AutoFillRule, limit int) ([]interfaces.ContentSummary, error)
}

// CreateDefinitionInput captures the information required to register a zone
// definition. Slug is derived from Name when omitted.
type CreateDefinitionInput struct {
	Slug       string
	Name       string
	RenderType string
	MaxItems   int
}

// CreateZoneInput attaches a definition to a page as an ordered zone.
type CreateZoneInput struct {
	PageID       uuid.UUID
	DefinitionID uuid.UUID
	SortOrder    int
	Enabled      *bool
	Name         *string
	AutoFill     *AutoFillRule
}

// UpdateZoneInput defines mutable zone fields. Nil pointers leave the current
// value untouched; ClearAutoFill removes the rule entirely.
type UpdateZoneInput struct {
	ZoneID        uuid.UUID
	SortOrder     *int
	Enabled       *bool
	Name          *string
	AutoFill      *AutoFillRule
	ClearAutoFill bool
}

// AddPlacementInput describes a manual content assignment. A nil Position
// appends; positions beyond the current tail are clamped to it.
type AddPlacementInput struct {
	ZoneID      uuid.UUID
	ContentType PlacementContentType
	ArticleID   *uuid.UUID
	VideoID     *uuid.UUID
	Custom      map[string]any
	Position    *int
	Pinned      bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedBy   uuid.UUID
}

// UpdatePlacementInput rewrites a placement's non-positional fields. Position
// and zone membership only change through ReorderPlacements.
type UpdatePlacementInput struct {
	PlacementID uuid.UUID
	Pinned      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	ClearWindow bool
	Custom      map[string]any
}

// RemovePlacementInput removes a placement from a zone and compacts the
// remaining positions.
type RemovePlacementInput struct {
	ZoneID      uuid.UUID
	PlacementID uuid.UUID
}

// ReorderPlacementsInput supplies the complete desired ordering for a zone:
// PlacementIDs[i] takes position i. PageID, when set, must match the zone's
// owning page.
type ReorderPlacementsInput struct {
	ZoneID       uuid.UUID
	PageID       uuid.UUID
	PlacementIDs []uuid.UUID
}

// Validate checks the reorder payload shape before any store access.
func (i ReorderPlacementsInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ZoneID, validation.By(func(any) error {
			if i.ZoneID == uuid.Nil {
				return validation.NewError("zones.reorder.zone_required", "zone id required")
			}
			return nil
		})),
		validation.Field(&i.PlacementIDs, validation.By(func(any) error {
			if len(i.PlacementIDs) == 0 {
				return validation.NewError("zones.reorder.ids_required", "placement ids required")
			}
			for _, id := range i.PlacementIDs {
				if id == uuid.Nil {
					return validation.NewError("zones.reorder.id_invalid", "placement ids must be non-zero")
				}
			}
			return nil
		})),
	)
}

// PlacementSeed is one entry of a bulk zone population.
type PlacementSeed struct {
	ContentType PlacementContentType
	ArticleID   *uuid.UUID
	VideoID     *uuid.UUID
	Custom      map[string]any
	Pinned      bool
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// PopulateZoneInput seeds a zone with an ordered set of placements in one
// call. Replace clears the zone's existing placements first.
type PopulateZoneInput struct {
	ZoneID    uuid.UUID
	Items     []PlacementSeed
	Replace   bool
	CreatedBy uuid.UUID
}

// ResolveZoneInput controls a single zone resolution.
type ResolveZoneInput struct {
	ZoneID uuid.UUID
	// Now overrides the evaluation instant; zero means the service clock.
	Now time.Time
	// Exclude seeds the duplicate-suppression set, typically with content
	// already emitted by earlier zones on the same page.
	Exclude map[uuid.UUID]struct{}
	// IncludeDisabled resolves the zone even when it is switched off, for
	// editorial preview surfaces.
	IncludeDisabled bool
}

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures zone service behaviour.
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

// WithAutoFillResolver overrides the resolver built from the content
// repository, mainly so callers can tune timeout and over-fetch margin.
func WithAutoFillResolver(resolver *autofill.Resolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithAutoFillDisabled switches off rule evaluation during resolution. Zones
// resolve to their manual placements only; stored rules are kept but inert.
func WithAutoFillDisabled() ServiceOption {
	return func(s *service) {
		s.autofillOff = true
	}
}

// WithScheduler enqueues zone refresh jobs at placement visibility window
// boundaries so hosts can invalidate rendered caches when the window flips.
func WithScheduler(sched interfaces.Scheduler) ServiceOption {
	return func(s *service) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

type service struct {
	definitions DefinitionRepository
	zones       ZoneRepository
	placements  PlacementRepository
	content     interfaces.ContentRepository
	resolver    *autofill.Resolver
	autofillOff bool
	scheduler   interfaces.Scheduler
	auth        interfaces.AuthProvider
	now         func() time.Time
	id          IDGenerator
	log         interfaces.Logger
}

// NewService constructs a zone service instance. The content repository may
// be nil, in which case resolution degrades to manual placements only.
func NewService(defRepo DefinitionRepository, zoneRepo ZoneRepository, placementRepo PlacementRepository, content interfaces.ContentRepository, opts ...ServiceOption) Service {
	s := &service{
		definitions: defRepo,
		zones:       zoneRepo,
		placements:  placementRepo,
		content:     content,
		now:         time.Now,
		id:          uuid.New,
		log:         logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = autofill.NewResolver(content, autofill.WithClock(s.now), autofill.WithLogger(s.log))
	}

	return s
}

func (s *service) authorize(ctx context.Context) error {
	if s.auth == nil {
		return nil
	}
	allowed, err := s.auth.HasPermission(ctx, PermissionManageZones)
	if err != nil {
		return fmt.Errorf("zones: permission check failed: %w", err)
	}
	if !allowed {
		return ErrNotAuthorized
	}
	return nil
}

func (s *service) CreateDefinition(ctx context.Context, input CreateDefinitionInput) (*ZoneDefinition, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrDefinitionNameRequired
	}
	if input.MaxItems <= 0 {
		return nil, ErrDefinitionMaxItemsInvalid
	}

	raw := strings.TrimSpace(input.Slug)
	if raw == "" {
		raw = name
	}
	normalized, err := slug.Normalize(raw)
	if err != nil || normalized == "" {
		return nil, ErrDefinitionSlugRequired
	}

	if existing, err := s.definitions.GetBySlug(ctx, normalized); err == nil && existing != nil {
		return nil, ErrDefinitionExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	renderType := strings.TrimSpace(input.RenderType)
	if renderType == "" {
		renderType = normalized
	}

	now := s.now()
	definition := &ZoneDefinition{
		ID:         s.id(),
		Slug:       normalized,
		Name:       name,
		RenderType: renderType,
		MaxItems:   input.MaxItems,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.definitions.Create(ctx, definition)
	if err != nil {
		return nil, err
	}
	s.log.Debug("zone definition created", "slug", created.Slug, "max_items", created.MaxItems)
	return created, nil
}

func (s *service) GetDefinition(ctx context.Context, id uuid.UUID) (*ZoneDefinition, error) {
	return s.definitions.GetByID(ctx, id)
}

func (s *service) GetDefinitionBySlug(ctx context.Context, slugValue string) (*ZoneDefinition, error) {
	return s.definitions.GetBySlug(ctx, strings.TrimSpace(slugValue))
}

func (s *service) ListDefinitions(ctx context.Context) ([]*ZoneDefinition, error) {
	return s.definitions.List(ctx)
}

func (s *service) CreateZone(ctx context.Context, input CreateZoneInput) (*Zone, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	if input.PageID == uuid.Nil {
		return nil, ErrZonePageRequired
	}
	if input.DefinitionID == uuid.Nil {
		return nil, ErrZoneDefinitionRequired
	}
	if input.SortOrder < 0 {
		return nil, ErrZoneSortOrderInvalid
	}
	if input.AutoFill != nil {
		if err := input.AutoFill.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := s.definitions.GetByID(ctx, input.DefinitionID); err != nil {
		return nil, err
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	now := s.now()
	zone := &Zone{
		ID:           s.id(),
		PageID:       input.PageID,
		DefinitionID: input.DefinitionID,
		SortOrder:    input.SortOrder,
		Enabled:      enabled,
		Name:         input.Name,
		AutoFill:     input.AutoFill,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.zones.Create(ctx, zone)
	if err != nil {
		return nil, err
	}
	s.log.Debug("zone created", "zone_id", created.ID.String(), "page_id", created.PageID.String())
	return created, nil
}

func (s *service) GetZone(ctx context.Context, id uuid.UUID) (*Zone, error) {
	return s.zones.GetByID(ctx, id)
}

func (s *service) ListZonesByPage(ctx context.Context, pageID uuid.UUID) ([]*Zone, error) {
	return s.zones.ListByPage(ctx, pageID)
}

func (s *service) UpdateZone(ctx context.Context, input UpdateZoneInput) (*Zone, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	zone, err := s.zones.GetByID(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if *input.SortOrder < 0 {
			return nil, ErrZoneSortOrderInvalid
		}
		zone.SortOrder = *input.SortOrder
	}
	if input.Enabled != nil {
		zone.Enabled = *input.Enabled
	}
	if input.Name != nil {
		zone.Name = input.Name
	}
	if input.ClearAutoFill {
		zone.AutoFill = nil
	} else if input.AutoFill != nil {
		if err := input.AutoFill.Validate(); err != nil {
			return nil, err
		}
		zone.AutoFill = input.AutoFill
	}
	zone.UpdatedAt = s.now()

	return s.zones.Update(ctx, zone)
}

func (s *service) DeleteZone(ctx context.Context, id uuid.UUID) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	if _, err := s.zones.GetByID(ctx, id); err != nil {
		return err
	}
	s.cancelZoneWindowRefreshes(ctx, id)
	if err := s.placements.DeleteByZone(ctx, id); err != nil {
		return err
	}
	return s.zones.Delete(ctx, id)
}

func (s *service) DeleteZonesByPage(ctx context.Context, pageID uuid.UUID) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	zones, err := s.zones.ListByPage(ctx, pageID)
	if err != nil {
		return err
	}
	for _, zone := range zones {
		s.cancelZoneWindowRefreshes(ctx, zone.ID)
		if err := s.placements.DeleteByZone(ctx, zone.ID); err != nil {
			return err
		}
	}
	return s.zones.DeleteByPage(ctx, pageID)
}

func (s *service) AddPlacement(ctx context.Context, input AddPlacementInput) (*ContentPlacement, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	if _, err := s.zones.GetByID(ctx, input.ZoneID); err != nil {
		return nil, err
	}
	if input.CreatedBy == uuid.Nil {
		return nil, ErrCreatorRequired
	}
	if err := validateReference(input.ContentType, input.ArticleID, input.VideoID, input.Custom); err != nil {
		return nil, err
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	existing, err := s.placements.ListByZone(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}

	position := len(existing)
	if input.Position != nil {
		if *input.Position < 0 {
			return nil, ErrPositionInvalid
		}
		if *input.Position < position {
			position = *input.Position
		}
	}

	now := s.now()
	placement := &ContentPlacement{
		ID:          s.id(),
		ZoneID:      input.ZoneID,
		ContentType: input.ContentType,
		ArticleID:   input.ArticleID,
		VideoID:     input.VideoID,
		Custom:      input.Custom,
		Position:    position,
		Pinned:      input.Pinned,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.placements.Insert(ctx, placement)
	if err != nil {
		return nil, err
	}
	s.scheduleWindowRefresh(ctx, created)
	s.log.Debug("placement added",
		"zone_id", input.ZoneID.String(),
		"placement_id", created.ID.String(),
		"position", created.Position,
	)
	return created, nil
}

func (s *service) UpdatePlacement(ctx context.Context, input UpdatePlacementInput) (*ContentPlacement, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	placement, err := s.placements.GetByID(ctx, input.PlacementID)
	if err != nil {
		return nil, err
	}

	if input.Pinned != nil {
		placement.Pinned = *input.Pinned
	}
	if input.ClearWindow {
		placement.StartsAt = nil
		placement.EndsAt = nil
	} else {
		if input.StartsAt != nil {
			placement.StartsAt = input.StartsAt
		}
		if input.EndsAt != nil {
			placement.EndsAt = input.EndsAt
		}
	}
	if err := validateWindow(placement.StartsAt, placement.EndsAt); err != nil {
		return nil, err
	}
	if input.Custom != nil {
		if placement.ContentType != PlacementCustom {
			return nil, ErrInvalidReference
		}
		placement.Custom = input.Custom
	}
	placement.UpdatedAt = s.now()

	updated, err := s.placements.Update(ctx, placement)
	if err != nil {
		return nil, err
	}
	s.scheduleWindowRefresh(ctx, updated)
	return updated, nil
}

func (s *service) RemovePlacement(ctx context.Context, input RemovePlacementInput) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	placement, err := s.placements.GetByID(ctx, input.PlacementID)
	if err != nil {
		return err
	}
	if placement.ZoneID != input.ZoneID {
		return ErrZonePageMismatch
	}
	if err := s.placements.DeleteAndCompact(ctx, input.ZoneID, input.PlacementID); err != nil {
		return err
	}
	s.cancelWindowRefresh(ctx, input.PlacementID)
	return nil
}

func (s *service) ReorderPlacements(ctx context.Context, input ReorderPlacementsInput) ([]*ContentPlacement, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	zone, err := s.zones.GetByID(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}
	if input.PageID != uuid.Nil && zone.PageID != input.PageID {
		return nil, ErrZonePageMismatch
	}

	existing, err := s.placements.ListByZone(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}

	members := make(map[uuid.UUID]struct{}, len(existing))
	for _, placement := range existing {
		members[placement.ID] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(input.PlacementIDs))
	for _, id := range input.PlacementIDs {
		if _, duplicate := seen[id]; duplicate {
			return nil, ErrReorderMembership
		}
		seen[id] = struct{}{}
		if _, ok := members[id]; !ok {
			return nil, ErrReorderForeignPlacement
		}
	}
	if len(input.PlacementIDs) != len(existing) {
		return nil, ErrReorderMembership
	}

	if err := s.placements.Reorder(ctx, input.ZoneID, input.PlacementIDs); err != nil {
		return nil, err
	}
	s.log.Debug("zone reordered", "zone_id", input.ZoneID.String(), "count", len(input.PlacementIDs))
	return s.placements.ListByZone(ctx, input.ZoneID)
}

func (s *service) ListPlacements(ctx context.Context, zoneID uuid.UUID) ([]*ContentPlacement, error) {
	return s.placements.ListByZone(ctx, zoneID)
}

func (s *service) PopulateZone(ctx context.Context, input PopulateZoneInput) ([]*ContentPlacement, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	if _, err := s.zones.GetByID(ctx, input.ZoneID); err != nil {
		return nil, err
	}
	if input.CreatedBy == uuid.Nil {
		return nil, ErrCreatorRequired
	}
	for _, seed := range input.Items {
		if err := validateReference(seed.ContentType, seed.ArticleID, seed.VideoID, seed.Custom); err != nil {
			return nil, err
		}
		if err := validateWindow(seed.StartsAt, seed.EndsAt); err != nil {
			return nil, err
		}
	}

	if input.Replace {
		s.cancelZoneWindowRefreshes(ctx, input.ZoneID)
		if err := s.placements.DeleteByZone(ctx, input.ZoneID); err != nil {
			return nil, err
		}
	}

	existing, err := s.placements.ListByZone(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}
	base := len(existing)

	now := s.now()
	for offset, seed := range input.Items {
		placement := &ContentPlacement{
			ID:          s.id(),
			ZoneID:      input.ZoneID,
			ContentType: seed.ContentType,
			ArticleID:   seed.ArticleID,
			VideoID:     seed.VideoID,
			Custom:      seed.Custom,
			Position:    base + offset,
			Pinned:      seed.Pinned,
			StartsAt:    seed.StartsAt,
			EndsAt:      seed.EndsAt,
			CreatedBy:   input.CreatedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := s.placements.Insert(ctx, placement)
		if err != nil {
			return nil, err
		}
		s.scheduleWindowRefresh(ctx, created)
	}

	s.log.Info("zone populated", "zone_id", input.ZoneID.String(), "count", len(input.Items), "replace", input.Replace)
	return s.placements.ListByZone(ctx, input.ZoneID)
}

func validateReference(contentType PlacementContentType, articleID, videoID *uuid.UUID, custom map[string]any) error {
	switch contentType {
	case PlacementArticle:
		if articleID == nil || *articleID == uuid.Nil || videoID != nil || len(custom) > 0 {
			return ErrInvalidReference
		}
	case PlacementVideo:
		if videoID == nil || *videoID == uuid.Nil || articleID != nil || len(custom) > 0 {
			return ErrInvalidReference
		}
	case PlacementCustom:
		if len(custom) == 0 || articleID != nil || videoID != nil {
			return ErrInvalidReference
		}
	default:
		return ErrInvalidReference
	}
	return nil
}

func validateWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && !startsAt.Before(*endsAt) {
		return ErrVisibilityWindowInvalid
	}
	return nil
}
