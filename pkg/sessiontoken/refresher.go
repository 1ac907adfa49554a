package sessiontoken

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Refresher implements the best-effort sliding session refresh. It runs
// beneath normal per-request auth: every failure mode degrades to "no
// refresh" and is never surfaced to the caller.
type Refresher struct {
	memberships MembershipReader
	issuer      *Issuer
	logger      *slog.Logger
	now         func() time.Time
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefresherLogger sets the logger for declined-refresh diagnostics.
func WithRefresherLogger(l *slog.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

// WithRefresherClock overrides the time source, for tests.
func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRefresher wires a session refresher.
func NewRefresher(memberships MembershipReader, issuer *Issuer, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		memberships: memberships,
		issuer:      issuer,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TryRefresh reissues the session token when more than half its lifetime has
// elapsed and the membership still holds. Returns ("", false) in every other
// case, including revoked membership and malformed claims.
func (r *Refresher) TryRefresh(ctx context.Context, userID, tenantID uuid.UUID, claims map[string]any) (string, bool) {
	iat, okIat := numericClaim(claims, "iat")
	exp, okExp := numericClaim(claims, "exp")
	if !okIat || !okExp || exp <= iat {
		return "", false
	}

	// Sliding half-life: only refresh once the token has burned through half
	// its lifetime, so a busy session converges to one reissue per half TTL.
	halfway := time.Unix(iat, 0).Add(time.Unix(exp, 0).Sub(time.Unix(iat, 0)) / 2)
	if r.now().Before(halfway) {
		return "", false
	}

	if _, err := r.memberships.Get(ctx, userID, tenantID); err != nil {
		r.logger.DebugContext(ctx, "refresh declined, membership no longer holds",
			"user_id", userID, "tenant_id", tenantID, "error", err)
		return "", false
	}

	token, err := r.issuer.Issue(userID, tenantID, claims)
	if err != nil {
		r.logger.WarnContext(ctx, "refresh declined, token issue failed",
			"user_id", userID, "tenant_id", tenantID, "error", err)
		return "", false
	}
	return token, true
}

// numericClaim reads a Unix timestamp claim that may arrive as int64,
// float64 or json.Number depending on the decoder.
func numericClaim(claims map[string]any, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
