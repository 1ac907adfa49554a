package authflow

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRealm is the shared identity-provider realm used by standard
// (non-enterprise) tenants. Callbacks with absent or malformed state fall
// back to it.
const DefaultRealm = "groundup"

// Flow identifies the callback-handling branch encoded in the state token.
type Flow string

const (
	FlowDefault              Flow = "default"
	FlowInvitation           Flow = "invitation"
	FlowJoinLink             Flow = "join_link"
	FlowNewOrg               Flow = "new_org"
	FlowEnterpriseFirstAdmin Flow = "enterprise_first_admin"

	// FlowUnauthorizedSSO only appears in results, never in state tokens.
	// It marks an enterprise SSO attempt that was rejected with zero writes.
	FlowUnauthorizedSSO Flow = "unauthorized_sso_access"
)

// CallbackState is round-tripped opaquely through the identity provider as
// the OAuth state parameter. Unknown fields are ignored and missing fields
// default safely, so old and new encoders can interoperate.
type CallbackState struct {
	Flow            Flow   `json:"flow,omitempty"`
	InvitationToken string `json:"invitationToken,omitempty"`
	JoinToken       string `json:"joinToken,omitempty"`
	Realm           string `json:"realm,omitempty"`
	RedirectURL     string `json:"redirectUrl,omitempty"`
}

// User is a local application user. The ID is minted by the orchestrator
// rather than derived from the external subject, because one user may hold
// multiple external identities across realms and tenants.
type User struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Username    string
	CreatedAt   time.Time
}

// TenantKind distinguishes self-service tenants from enterprise tenants with
// a dedicated identity-provider realm.
type TenantKind string

const (
	TenantStandard   TenantKind = "standard"
	TenantEnterprise TenantKind = "enterprise"
)

// TenantStatus is the tenant lifecycle state.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant is an organization. Enterprise tenants carry the SSO auto-join
// configuration: an email-domain allow-list and an optional role to grant
// auto-joined members.
type Tenant struct {
	ID                uuid.UUID
	Name              string
	Realm             string
	Kind              TenantKind
	Status            TenantStatus
	SSOAllowedDomains []string
	SSORoleID         *int64
	CreatedAt         time.Time
}

// Membership authorizes a user for a tenant. Unique on (UserID, TenantID);
// the secondary (realm, ExternalID) lookup resolves membership from a freshly
// authenticated identity before the local user id is known.
type Membership struct {
	UserID     uuid.UUID
	TenantID   uuid.UUID
	ExternalID string
	IsAdmin    bool
	JoinedAt   time.Time
}

// InvitationStatus is the single-use invitation lifecycle.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is an email-bound invite into a tenant.
type Invitation struct {
	Token     string
	TenantID  uuid.UUID
	Email     string
	Status    InvitationStatus
	ExpiresAt time.Time
}

// JoinLink is a shareable token granting non-admin membership in a tenant.
type JoinLink struct {
	Token         string
	TenantID      uuid.UUID
	Revoked       bool
	ExpiresAt     time.Time
	DefaultRoleID *int64
}

// Valid reports whether the link can still be redeemed.
func (l JoinLink) Valid(now time.Time) bool {
	return !l.Revoked && (l.ExpiresAt.IsZero() || now.Before(l.ExpiresAt))
}

// TenantOption is a tenant the user may select a session for.
type TenantOption struct {
	ID   uuid.UUID
	Name string
}

// Result is the terminal outcome of a callback. Exactly one of Token or
// RequiresTenantSelection is meaningful on success; ErrorMessage is a
// sanitized, caller-safe message on failure.
type Result struct {
	Success                 bool
	Flow                    Flow
	Token                   string
	TenantID                uuid.UUID
	TenantName              string
	IsNewOrganization       bool
	RequiresTenantSelection bool
	AvailableTenants        []TenantOption
	ErrorMessage            string
}

// ExternalSession is the identity asserted by the IdP after a successful
// code exchange. It is transient and never persisted directly.
type ExternalSession struct {
	Subject      string
	Realm        string
	AccessToken  string
	RefreshToken string
	Email        string
	Username     string
	DisplayName  string
	Claims       map[string]any
}

// ExternalProfile is the user record as known to the IdP's admin API.
type ExternalProfile struct {
	Subject     string
	Email       string
	Username    string
	DisplayName string
}
