package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// handleInvitation accepts the invitation named in the state token. User
// creation, the invitation status transition and the membership write commit
// in one transaction; a token for the invitation's tenant is issued after.
func (o *Orchestrator) handleInvitation(ctx context.Context, cb *callback) (*Result, error) {
	inv, err := o.provisioner.AcceptInvitation(ctx, cb.user(), cb.session.Subject, cb.state.Realm, cb.state.InvitationToken)
	if err != nil {
		return nil, err
	}
	return o.issueToken(ctx, cb, inv.TenantID, FlowInvitation)
}

// handleJoinLink redeems a shareable join link. The link is validated before
// any write so an invalid link can never leave an orphaned user behind, and
// existing members are rejected up front. Concurrent duplicate redemption is
// caught by the membership unique constraint inside the transaction.
func (o *Orchestrator) handleJoinLink(ctx context.Context, cb *callback) (*Result, error) {
	link, err := o.joinLinks.FindByToken(ctx, cb.state.JoinToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrJoinLinkInvalid
		}
		return nil, fmt.Errorf("join link lookup: %w", err)
	}
	if !link.Valid(time.Now()) {
		return nil, ErrJoinLinkInvalid
	}

	if _, err := o.memberships.Get(ctx, cb.userID, link.TenantID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("membership pre-check: %w", err)
	}

	if err := o.provisioner.ProvisionMembership(ctx, cb.user(), cb.session.Subject, cb.state.Realm, link.TenantID, false, link.DefaultRoleID); err != nil {
		return nil, err
	}
	return o.issueToken(ctx, cb, link.TenantID, FlowJoinLink)
}

// handleNewOrg provisions a fresh standard tenant with the caller as admin.
func (o *Orchestrator) handleNewOrg(ctx context.Context, cb *callback) (*Result, error) {
	tenant, err := o.provisioner.ProvisionStandardTenant(ctx, cb.user(), cb.session.Subject, cb.state.Realm, organizationName(cb.user()))
	if err != nil {
		return nil, err
	}
	res, err := o.issueToken(ctx, cb, tenant.ID, FlowNewOrg)
	if err != nil {
		return nil, err
	}
	res.IsNewOrganization = true
	return res, nil
}

// handleEnterpriseFirstAdmin bootstraps the first administrator of a
// pre-provisioned enterprise tenant. The tenant must exist for the realm, be
// enterprise and active, and have no members yet; all checks precede writes.
// Disabling the realm's self-registration afterwards is best-effort: it
// targets a remote system outside the transaction and is never retried.
func (o *Orchestrator) handleEnterpriseFirstAdmin(ctx context.Context, cb *callback) (*Result, error) {
	tenant, err := o.tenants.GetByRealm(ctx, cb.state.Realm)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTenantUnavailable
		}
		return nil, fmt.Errorf("tenant lookup: %w", err)
	}
	if tenant.Kind != TenantEnterprise || tenant.Status != TenantActive {
		return nil, ErrTenantUnavailable
	}

	occupied, err := o.memberships.TenantHasMembers(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("member count check: %w", err)
	}
	if occupied {
		return nil, ErrTenantOccupied
	}

	if err := o.provisioner.ProvisionMembership(ctx, cb.user(), cb.session.Subject, cb.state.Realm, tenant.ID, true, nil); err != nil {
		return nil, err
	}

	if err := o.idp.DisableRealmRegistration(ctx, cb.state.Realm); err != nil {
		o.logger.WarnContext(ctx, "could not disable realm self-registration",
			"realm", cb.state.Realm, "tenant_id", tenant.ID, "error", err)
	}

	return o.issueToken(ctx, cb, tenant.ID, FlowEnterpriseFirstAdmin)
}

// organizationName derives a default name for a self-service tenant.
func organizationName(u User) string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName + "'s Organization"
	case u.Username != "":
		return u.Username + "'s Organization"
	default:
		return "New Organization"
	}
}
