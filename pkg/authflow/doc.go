// Package authflow turns an identity-provider OAuth callback into an
// application session for a multi-tenant SaaS backend.
//
// The entry point is the Orchestrator, which decodes the opaque callback
// state, exchanges the authorization code against the realm's token endpoint,
// resolves or provisions tenant membership, and issues the application
// session token. Five flows are supported, selected by the state token:
//
//   - default: sign-in for existing members, with enterprise SSO auto-join
//     and self-service organization creation for first-time users
//   - invitation: accept a pending invitation and join its tenant
//   - join_link: join a tenant through a shareable link
//   - new_org: explicit self-service organization registration
//   - enterprise_first_admin: bootstrap the first administrator of a
//     pre-provisioned enterprise tenant
//
// All persistence happens through narrow store interfaces so the package can
// sit on top of any storage layer; pkg/storage/postgres ships a reference
// implementation. Writes that must be atomic (user creation plus membership,
// invitation acceptance plus membership) run inside a single UnitOfWork call
// and rely on the (user_id, tenant_id) unique constraint for correctness
// under duplicate or replayed callbacks.
package authflow
