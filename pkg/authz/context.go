package authz

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as seen by the authorization layer.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Roles    []string
}

type principalContextKey struct{}

// WithPrincipal stores the authenticated principal in the context. The
// request-auth middleware calls this after verifying the session token.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
