package interfaces

import "context"

// AuthProvider gates mutating operations. The zone content module performs no
// authorization logic of its own; it only consults this predicate before
// applying writes. Host applications supply the real implementation.
type AuthProvider interface {
	CurrentUserID(ctx context.Context) (string, error)
	HasPermission(ctx context.Context, permission string) (bool, error)
}
