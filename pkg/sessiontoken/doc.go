// Package sessiontoken mints and maintains the application session token.
//
// The Issuer produces an HS256-signed JWT from a filtered copy of the
// identity provider's claims plus the selected tenant: registered lifecycle
// claims are stripped from the source set and re-stamped locally, so the
// session's lifetime is always controlled by this service and never
// inherited from the upstream token. The Selector resolves which tenant a
// multi-tenant user gets a session for, and the Refresher implements a
// best-effort sliding refresh that re-verifies membership and silently
// declines rather than erroring.
package sessiontoken
