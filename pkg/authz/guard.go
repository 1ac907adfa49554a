package authz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/rsbst23/groundup/pkg/scopes"
)

// PermissionSource computes the effective permission set for a user from
// roles and policies. Called on cache misses only.
type PermissionSource interface {
	PermissionsForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Guard is the cross-cutting authorization decorator. Services call
// Authorize (directly or through Protect) at their boundary before touching
// any state.
type Guard struct {
	rules  *Rules
	source PermissionSource
	cache  PermissionCache
	logger *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the logger for denial diagnostics.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// NewGuard wires the authorization guard over a startup-built rule table.
func NewGuard(rules *Rules, source PermissionSource, cache PermissionCache, opts ...GuardOption) *Guard {
	g := &Guard{
		rules:  rules,
		source: source,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize checks the operation against the rule table. Operations without
// a rule are allowed unconditionally (enforcement is opt-in). Guarded
// operations require an authenticated principal; a principal role found in
// the rule's role set allows immediately, otherwise the user's effective
// permission set must intersect the rule's permissions. A rule that lists
// only roles denies everyone outside those roles. Denials return a
// *ForbiddenError carrying the user and the target operation.
func (g *Guard) Authorize(ctx context.Context, operation string) error {
	rule, guarded := g.rules.Lookup(operation)
	if !guarded {
		return nil
	}

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		g.logger.WarnContext(ctx, "unauthenticated call to guarded operation",
			"operation", operation, "error", ErrNoPrincipal)
		return &ForbiddenError{Operation: operation}
	}

	if len(rule.Roles) > 0 {
		for _, role := range principal.Roles {
			if slices.Contains(rule.Roles, role) {
				return nil
			}
		}
	}

	// A roles-only rule offers no permission path: failing the role check is
	// final and skips the permission computation.
	if len(rule.Permissions) == 0 {
		return &ForbiddenError{UserID: principal.UserID, Operation: operation}
	}

	perms, err := g.effectivePermissions(ctx, principal.UserID)
	if err != nil {
		// Fail closed: an unavailable permission source denies rather than
		// allows.
		g.logger.ErrorContext(ctx, "permission lookup failed, denying",
			"operation", operation, "user_id", principal.UserID, "error", err)
		return &ForbiddenError{UserID: principal.UserID, Operation: operation}
	}

	if scopes.HasAny(perms, rule.Permissions) {
		return nil
	}
	return &ForbiddenError{UserID: principal.UserID, Operation: operation}
}

// Invalidate drops all cached permission sets. Must be called after any
// permission, role or policy mutation.
func (g *Guard) Invalidate(ctx context.Context) error {
	return g.cache.InvalidateAll(ctx)
}

func (g *Guard) effectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if perms, ok := g.cache.Get(ctx, userID); ok {
		return perms, nil
	}
	perms, err := g.source.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compute permissions: %w", err)
	}
	perms = scopes.Normalize(perms)
	g.cache.Set(ctx, userID, perms)
	return perms, nil
}

// Protect wraps a service operation so authorization runs before the
// implementation executes any side effect. It is the explicit replacement
// for dynamic interface proxies: wiring code decorates each operation once.
func Protect[T any](g *Guard, operation string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		if err := g.Authorize(ctx, operation); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx)
	}
}

// ProtectCall is Protect for operations without a return value.
func ProtectCall(g *Guard, operation string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := g.Authorize(ctx, operation); err != nil {
			return err
		}
		return fn(ctx)
	}
}
