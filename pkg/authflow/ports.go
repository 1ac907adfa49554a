package authflow

import (
	"context"

	"github.com/google/uuid"
)

// IdentityProvider abstracts the external identity provider. pkg/idp ships
// the production implementation.
type IdentityProvider interface {
	// ExchangeCode exchanges an authorization code against the realm's token
	// endpoint and returns the asserted identity. Any non-success response
	// is an error; the caller must fail closed and never retry here.
	ExchangeCode(ctx context.Context, code, redirectURI, realm string) (*ExternalSession, error)

	// GetUserProfile fetches the user record from the IdP's admin API.
	GetUserProfile(ctx context.Context, subject, realm string) (*ExternalProfile, error)

	// DisableRealmRegistration turns off self-registration for a realm.
	// Used best-effort only; failures are logged, never fatal.
	DisableRealmRegistration(ctx context.Context, realm string) error
}

// UserStore persists local users.
type UserStore interface {
	// EnsureExists creates the user and its external-identity link if absent.
	// Must be idempotent: a second call with the same id is a no-op.
	EnsureExists(ctx context.Context, user User, externalID, realm string) error
}

// TenantStore reads and provisions tenants.
type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByRealm(ctx context.Context, realm string) (*Tenant, error)
	CreateStandard(ctx context.Context, id uuid.UUID, realm, name string) (*Tenant, error)
}

// MembershipStore manages the user/tenant join entity.
type MembershipStore interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	Get(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error)
	// GetByRealmAndExternalID resolves a membership from a freshly
	// authenticated identity before the local user id is known.
	GetByRealmAndExternalID(ctx context.Context, realm, externalID string) (*Membership, error)
	// Create inserts a membership. A duplicate (userID, tenantID) pair must
	// fail with ErrAlreadyMember via the store's unique constraint.
	Create(ctx context.Context, m Membership) error
	TenantHasMembers(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// InvitationStore manages single-use invitations.
type InvitationStore interface {
	// AcceptByToken marks a pending invitation accepted and creates the
	// membership in the same store transaction. Returns ErrInvitationInvalid
	// for unknown, non-pending or expired tokens.
	AcceptByToken(ctx context.Context, token string, userID uuid.UUID, externalID string) (*Invitation, error)
	FindPendingForEmail(ctx context.Context, email string) ([]Invitation, error)
}

// JoinLinkStore reads shareable join links.
type JoinLinkStore interface {
	FindByToken(ctx context.Context, token string) (*JoinLink, error)
}

// RoleStore resolves and assigns tenant roles.
type RoleStore interface {
	FindRoleIDByName(ctx context.Context, tenantID uuid.UUID, name string) (int64, error)
	AssignRole(ctx context.Context, userID, tenantID uuid.UUID, roleID int64) error
}

// UnitOfWork runs fn inside one transaction, retrying on transient store
// failures. fn must not perform non-idempotent external side effects before
// commit since it may execute more than once.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenIssuer mints the application session token. pkg/sessiontoken ships
// the production implementation.
type TokenIssuer interface {
	Issue(userID, tenantID uuid.UUID, sourceClaims map[string]any) (string, error)
}
