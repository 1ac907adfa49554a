// Package authz enforces declarative permission checks on service
// operations.
//
// Enforcement is opt-in and reflection-free: a Rules table built at startup
// maps operation names to required permissions and short-circuit roles, and
// the Guard consults it on every call. Operations without a registered rule
// are allowed unconditionally. Effective permission sets are computed per
// user through a PermissionSource and memoized in a PermissionCache with a
// TTL; the cache supports wholesale invalidation only, which callers trigger
// on any permission, role or policy mutation.
//
// Denials are typed: a *ForbiddenError carries the user and the target
// operation so transports can render a proper 403 without string matching.
package authz
