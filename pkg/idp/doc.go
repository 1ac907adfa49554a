// Package idp is the HTTP client for the realm-based identity provider that
// fronts all authentication. It implements authflow.IdentityProvider:
// authorization-code exchange against a realm's token endpoint, user profile
// lookup through the provider's admin REST API, and best-effort toggling of
// realm self-registration.
//
// The package also owns the one deliberately bounded trust decision of the
// auth core: reading the subject out of an access token by decoding it
// without signature verification. See InsecureDecodeClaims for the exact
// conditions under which that is allowed.
package idp
