package zones

import (
	"errors"
	"fmt"

	"github.com/newsroomhq/zonecontent/internal/autofill"
)

var (
	ErrDefinitionSlugRequired    = errors.New("zones: definition slug required")
	ErrDefinitionNameRequired    = errors.New("zones: definition name required")
	ErrDefinitionMaxItemsInvalid = errors.New("zones: definition max items must be positive")
	ErrDefinitionExists          = errors.New("zones: definition slug already exists")

	ErrZonePageRequired       = errors.New("zones: page id required")
	ErrZoneDefinitionRequired = errors.New("zones: definition id required")
	ErrZoneSortOrderInvalid   = errors.New("zones: sort order cannot be negative")

	ErrInvalidReference        = errors.New("zones: placement requires exactly one content reference or custom payload matching its content type")
	ErrPositionInvalid         = errors.New("zones: position cannot be negative")
	ErrVisibilityWindowInvalid = errors.New("zones: starts_at must be before ends_at")
	ErrCreatorRequired         = errors.New("zones: created_by is required")

	ErrZonePageMismatch        = errors.New("zones: zone does not belong to the supplied page")
	ErrReorderMembership       = errors.New("zones: reorder input must include every placement in the zone exactly once")
	ErrReorderForeignPlacement = errors.New("zones: reorder input references a placement outside the zone")

	ErrNotAuthorized = errors.New("zones: caller is not permitted to modify zone content")
)

// ErrUpstreamUnavailable re-exports the resolver sentinel so callers of this
// package match on one identity.
var ErrUpstreamUnavailable = autofill.ErrUpstreamUnavailable

// NotFoundError is returned when a zone resource cannot be located.
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
