// Package pages exposes the public contract for page management and
// composition. The implementation lives in internal/pages and is assembled
// through the root zonecontent package.
package pages

import (
	ipages "github.com/newsroomhq/zonecontent/internal/pages"
)

// PermissionManagePages is checked before every page mutation when an auth
// provider is configured.
const PermissionManagePages = ipages.PermissionManagePages

// Models.
type (
	Page         = ipages.Page
	ComposedPage = ipages.ComposedPage
)

// Service and operation inputs.
type (
	Service = ipages.Service

	CreatePageInput  = ipages.CreatePageInput
	UpdatePageInput  = ipages.UpdatePageInput
	ComposePageInput = ipages.ComposePageInput
)

// NotFoundError is returned when a page cannot be located.
type NotFoundError = ipages.NotFoundError

// Sentinel errors.
var (
	ErrSlugRequired  = ipages.ErrSlugRequired
	ErrTitleRequired = ipages.ErrTitleRequired
	ErrPageExists    = ipages.ErrPageExists
	ErrNotAuthorized = ipages.ErrNotAuthorized
)
