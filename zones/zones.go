// Package zones exposes the public contract of the zone content engine:
// models, service interface, operation inputs and sentinel errors. The
// implementation lives in internal/zones and is assembled through the root
// zonecontent package.
package zones

import (
	"github.com/newsroomhq/zonecontent/internal/autofill"
	izones "github.com/newsroomhq/zonecontent/internal/zones"
)

// PermissionManageZones is checked before every zone mutation when an auth
// provider is configured.
const PermissionManageZones = izones.PermissionManageZones

// Models.
type (
	ZoneDefinition       = izones.ZoneDefinition
	Zone                 = izones.Zone
	ContentPlacement     = izones.ContentPlacement
	PlacementContentType = izones.PlacementContentType
	PlacementOrigin      = izones.PlacementOrigin
	AutoFillRule         = izones.AutoFillRule
	ResolvedItem         = izones.ResolvedItem
	ResolvedZone         = izones.ResolvedZone
)

const (
	PlacementArticle = izones.PlacementArticle
	PlacementVideo   = izones.PlacementVideo
	PlacementCustom  = izones.PlacementCustom

	OriginPinned = izones.OriginPinned
	OriginManual = izones.OriginManual
	OriginAuto   = izones.OriginAuto
)

// Service and operation inputs.
type (
	Service = izones.Service

	CreateDefinitionInput  = izones.CreateDefinitionInput
	CreateZoneInput        = izones.CreateZoneInput
	UpdateZoneInput        = izones.UpdateZoneInput
	AddPlacementInput      = izones.AddPlacementInput
	UpdatePlacementInput   = izones.UpdatePlacementInput
	RemovePlacementInput   = izones.RemovePlacementInput
	ReorderPlacementsInput = izones.ReorderPlacementsInput
	PlacementSeed          = izones.PlacementSeed
	PopulateZoneInput      = izones.PopulateZoneInput
	ResolveZoneInput       = izones.ResolveZoneInput
)

// NotFoundError is returned when a zone resource cannot be located.
type NotFoundError = izones.NotFoundError

// Sentinel errors.
var (
	ErrDefinitionSlugRequired    = izones.ErrDefinitionSlugRequired
	ErrDefinitionNameRequired    = izones.ErrDefinitionNameRequired
	ErrDefinitionMaxItemsInvalid = izones.ErrDefinitionMaxItemsInvalid
	ErrDefinitionExists          = izones.ErrDefinitionExists

	ErrZonePageRequired       = izones.ErrZonePageRequired
	ErrZoneDefinitionRequired = izones.ErrZoneDefinitionRequired
	ErrZoneSortOrderInvalid   = izones.ErrZoneSortOrderInvalid

	ErrInvalidReference        = izones.ErrInvalidReference
	ErrPositionInvalid         = izones.ErrPositionInvalid
	ErrVisibilityWindowInvalid = izones.ErrVisibilityWindowInvalid
	ErrCreatorRequired         = izones.ErrCreatorRequired

	ErrZonePageMismatch        = izones.ErrZonePageMismatch
	ErrReorderMembership       = izones.ErrReorderMembership
	ErrReorderForeignPlacement = izones.ErrReorderForeignPlacement

	ErrNotAuthorized       = izones.ErrNotAuthorized
	ErrUpstreamUnavailable = izones.ErrUpstreamUnavailable
)

// Auto-fill rule validation errors.
var (
	ErrRuleSourceInvalid = autofill.ErrRuleSourceInvalid
	ErrRuleLimitInvalid  = autofill.ErrRuleLimitInvalid
	ErrRuleSkipInvalid   = autofill.ErrRuleSkipInvalid
	ErrRuleMaxAgeInvalid = autofill.ErrRuleMaxAgeInvalid
	ErrRuleSortInvalid   = autofill.ErrRuleSortInvalid
)

// Max-age buckets accepted by AutoFillRule.
const (
	MaxAgeDay   = autofill.MaxAgeDay
	MaxAgeWeek  = autofill.MaxAgeWeek
	MaxAgeMonth = autofill.MaxAgeMonth
)
