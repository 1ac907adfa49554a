package authflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Provisioner creates local users and tenant memberships under the no-orphan
// invariant: a user row is never committed without gaining at least one
// membership inside the same transaction. Every multi-write method runs in a
// single UnitOfWork call.
type Provisioner struct {
	users       UserStore
	tenants     TenantStore
	memberships MembershipStore
	invitations InvitationStore
	roles       RoleStore
	uow         UnitOfWork
	logger      *slog.Logger
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionerLogger sets the logger used for non-fatal warnings.
func WithProvisionerLogger(l *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) { p.logger = l }
}

// NewProvisioner wires a membership provisioner over the given stores.
func NewProvisioner(users UserStore, tenants TenantStore, memberships MembershipStore, invitations InvitationStore, roles RoleStore, uow UnitOfWork, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		users:       users,
		tenants:     tenants,
		memberships: memberships,
		invitations: invitations,
		roles:       roles,
		uow:         uow,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProvisionMembership creates the user (if absent) and a membership in the
// given tenant atomically. When roleID is non-nil the role is assigned in the
// same transaction, but a role-assignment failure only logs a warning: the
// membership itself must survive.
func (p *Provisioner) ProvisionMembership(ctx context.Context, user User, externalID, realm string, tenantID uuid.UUID, isAdmin bool, roleID *int64) error {
	return p.uow.Run(ctx, func(ctx context.Context) error {
		if err := p.users.EnsureExists(ctx, user, externalID, realm); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		if err := p.memberships.Create(ctx, Membership{
			UserID:     user.ID,
			TenantID:   tenantID,
			ExternalID: externalID,
			IsAdmin:    isAdmin,
		}); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		if roleID != nil {
			if err := p.roles.AssignRole(ctx, user.ID, tenantID, *roleID); err != nil {
				p.logger.WarnContext(ctx, "membership created but role assignment failed",
					"user_id", user.ID, "tenant_id", tenantID, "role_id", *roleID, "error", err)
			}
		}
		return nil
	})
}

// ProvisionStandardTenant creates the user, a new standard tenant and its
// admin membership in one transaction.
func (p *Provisioner) ProvisionStandardTenant(ctx context.Context, user User, externalID, realm, name string) (*Tenant, error) {
	var tenant *Tenant
	err := p.uow.Run(ctx, func(ctx context.Context) error {
		if err := p.users.EnsureExists(ctx, user, externalID, realm); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		t, err := p.tenants.CreateStandard(ctx, uuid.New(), realm, name)
		if err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := p.memberships.Create(ctx, Membership{
			UserID:     user.ID,
			TenantID:   t.ID,
			ExternalID: externalID,
			IsAdmin:    true,
		}); err != nil {
			return fmt.Errorf("create admin membership: %w", err)
		}
		tenant = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// AcceptInvitation creates the user (if absent) and accepts the invitation
// atomically. The store marks the invitation accepted and creates the
// membership; the post-condition that a membership now exists is verified
// inside the same transaction so a misbehaving store cannot commit an
// orphaned user.
func (p *Provisioner) AcceptInvitation(ctx context.Context, user User, externalID, realm, token string) (*Invitation, error) {
	var inv *Invitation
	err := p.uow.Run(ctx, func(ctx context.Context) error {
		if err := p.users.EnsureExists(ctx, user, externalID, realm); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		accepted, err := p.invitations.AcceptByToken(ctx, token, user.ID, externalID)
		if err != nil {
			return err
		}
		if _, err := p.memberships.Get(ctx, user.ID, accepted.TenantID); err != nil {
			return fmt.Errorf("invitation accepted but no membership resulted: %w", err)
		}
		inv = accepted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// EnsureUser creates the user row on its own. Callers must only use it when
// a membership for the user already exists, otherwise the no-orphan
// invariant would be violated.
func (p *Provisioner) EnsureUser(ctx context.Context, user User, externalID, realm string) error {
	return p.uow.Run(ctx, func(ctx context.Context) error {
		return p.users.EnsureExists(ctx, user, externalID, realm)
	})
}
