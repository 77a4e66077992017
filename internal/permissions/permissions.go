package permissions

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Wildcard grants every permission.
const Wildcard = "*"

var ErrPermissionDenied = errors.New("permissions: denied")

// Error carries the denied permission token while unwrapping to
// ErrPermissionDenied.
type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// Static is an auth provider backed by a fixed grant set. It satisfies
// interfaces.AuthProvider and is meant for hosts without their own identity
// layer, and for tests.
type Static struct {
	mu     sync.RWMutex
	userID string
	grants map[string]struct{}
}

// NewStatic builds a provider granting exactly the supplied tokens. Pass
// Wildcard to allow everything.
func NewStatic(grants ...string) *Static {
	s := &Static{grants: make(map[string]struct{}, len(grants))}
	for _, grant := range grants {
		s.Grant(grant)
	}
	return s
}

// AllowAll returns a provider that grants every permission.
func AllowAll() *Static {
	return NewStatic(Wildcard)
}

// WithUserID sets the principal reported by CurrentUserID and returns the
// provider for chaining.
func (s *Static) WithUserID(userID string) *Static {
	s.mu.Lock()
	s.userID = strings.TrimSpace(userID)
	s.mu.Unlock()
	return s
}

// CurrentUserID returns the configured principal, empty when none was set.
func (s *Static) CurrentUserID(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, nil
}

// Grant adds a token to the set.
func (s *Static) Grant(permission string) {
	token := strings.TrimSpace(permission)
	if token == "" {
		return
	}
	s.mu.Lock()
	s.grants[token] = struct{}{}
	s.mu.Unlock()
}

// Revoke removes a token from the set.
func (s *Static) Revoke(permission string) {
	s.mu.Lock()
	delete(s.grants, strings.TrimSpace(permission))
	s.mu.Unlock()
}

// HasPermission reports whether the token, or the wildcard, is granted.
func (s *Static) HasPermission(_ context.Context, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.grants[Wildcard]; ok {
		return true, nil
	}
	_, ok := s.grants[strings.TrimSpace(permission)]
	return ok, nil
}
