package auth

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/domain"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// identityContextKey is the context key under which the authenticated
// identity is stored.
const identityContextKey contextKey = "auth-identity"

// Identity describes the authenticated caller of a request.
type Identity struct {
	// UserID is the numeric ID of the caller.
	UserID int64

	// Username is the login name of the caller.
	Username string

	// Role is the caller's current role, as loaded from storage
	// (not the role embedded in the token, which may be stale).
	Role domain.Role
}

// IsAdmin reports whether the caller has the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from a context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
