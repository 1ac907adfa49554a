package sessiontoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// Claim names owned by this module.
const (
	ClaimTenantID  = "tenant_id"
	ClaimAppUserID = "app_user_id"
)

// registeredClaims are the RFC 7519 lifecycle claims stripped from the
// source claim set before re-stamping, so upstream token lifetimes never
// leak into the session.
var registeredClaims = map[string]struct{}{
	"iss": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// Ensure Issuer satisfies the authflow port.
var _ authflow.TokenIssuer = (*Issuer)(nil)

// Issuer signs session tokens with a symmetric key.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer creates a session token issuer from config.
func NewIssuer(cfg Config, opts ...IssuerOption) (*Issuer, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	i := &Issuer{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	if i.ttl <= 0 {
		i.ttl = time.Hour
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a session token scoped to a tenant. Source claims (typically
// the IdP access token's claim set) are copied over minus the registered
// lifecycle claims, then the subject, tenant and lifecycle claims are
// stamped locally. Identical inputs produce structurally equal claim sets
// modulo the timestamps.
func (i *Issuer) Issue(userID, tenantID uuid.UUID, sourceClaims map[string]any) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range sourceClaims {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	now := i.now().UTC()
	claims["iss"] = i.issuer
	claims["aud"] = i.audience
	claims["sub"] = userID.String()
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = now.Add(i.ttl).Unix()
	claims[ClaimTenantID] = tenantID.String()
	claims[ClaimAppUserID] = userID.String()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

// Parse verifies a session token's signature and lifecycle claims and
// returns the claim set. Unlike the decode-only path in pkg/idp this is the
// full verification for externally supplied tokens.
func (i *Issuer) Parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.key, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL reports the fixed token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
