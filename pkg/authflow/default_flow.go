package authflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// handleDefault is the sign-in flow. Existing members get a token (or a
// tenant-selection prompt); first-time users are routed through enterprise
// SSO authorization or standard self-service organization creation.
func (o *Orchestrator) handleDefault(ctx context.Context, cb *callback) (*Result, error) {
	memberships, err := o.memberships.ListForUser(ctx, cb.userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	if len(memberships) == 0 {
		profile, err := o.idp.GetUserProfile(ctx, cb.session.Subject, cb.state.Realm)
		if err != nil {
			return nil, fmt.Errorf("fetch idp profile: %w", err)
		}

		tenant, err := o.tenants.GetByRealm(ctx, cb.state.Realm)
		switch {
		case err == nil && tenant.Kind == TenantEnterprise:
			rejection, gateErr := o.authorizeSSO(ctx, cb, tenant, profile)
			if gateErr != nil {
				return nil, gateErr
			}
			if rejection != nil {
				return rejection, nil
			}
		case err == nil || errors.Is(err, ErrNotFound):
			// Standard realm with no membership: first login provisions a
			// fresh organization for the user.
			return o.handleNewOrg(ctx, cb)
		default:
			return nil, fmt.Errorf("tenant lookup: %w", err)
		}

		if memberships, err = o.memberships.ListForUser(ctx, cb.userID); err != nil {
			return nil, fmt.Errorf("re-list memberships: %w", err)
		}

		// Safety net: the branches above are expected to have created the
		// user row, but an invitation accepted out of band may have produced
		// a membership for an id with no user yet. This is idempotent and
		// only runs when a membership already guards the invariant.
		if len(memberships) > 0 {
			if err := o.provisioner.EnsureUser(ctx, cb.user(), cb.session.Subject, cb.state.Realm); err != nil {
				return nil, fmt.Errorf("ensure user: %w", err)
			}
		}
	}

	switch len(memberships) {
	case 0:
		return nil, ErrNoMembership
	case 1:
		return o.issueToken(ctx, cb, memberships[0].TenantID, FlowDefault)
	default:
		options := make([]TenantOption, 0, len(memberships))
		for _, m := range memberships {
			opt := TenantOption{ID: m.TenantID}
			if t, err := o.tenants.GetByID(ctx, m.TenantID); err == nil {
				opt.Name = t.Name
			}
			options = append(options, opt)
		}
		return &Result{
			Success:                 true,
			Flow:                    FlowDefault,
			RequiresTenantSelection: true,
			AvailableTenants:        options,
		}, nil
	}
}

// authorizeSSO is the enterprise-only authorization gate. It either joins
// the user (allow-listed email domain, or a matching pending invitation) and
// returns (nil, nil), or rejects with a distinguished zero-write result.
func (o *Orchestrator) authorizeSSO(ctx context.Context, cb *callback, tenant *Tenant, profile *ExternalProfile) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return o.ssoRejection(ctx, tenant.ID), nil
	}

	if domain := emailDomain(email); domain != "" && domainAllowed(tenant.SSOAllowedDomains, domain) {
		user := cb.user()
		if user.Email == "" {
			user.Email = email
		}
		roleID := tenant.SSORoleID
		if roleID == nil {
			if id, err := o.provisioner.roles.FindRoleIDByName(ctx, tenant.ID, "Member"); err == nil {
				roleID = &id
			} else {
				o.logger.WarnContext(ctx, "no role configured for sso auto-join, proceeding roleless",
					"tenant_id", tenant.ID, "error", err)
			}
		}
		if err := o.provisioner.ProvisionMembership(ctx, user, cb.session.Subject, cb.state.Realm, tenant.ID, false, roleID); err != nil {
			return nil, fmt.Errorf("sso auto-join: %w", err)
		}
		return nil, nil
	}

	pending, err := o.invitations.FindPendingForEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("pending invitation lookup: %w", err)
	}
	for _, inv := range pending {
		if inv.TenantID != tenant.ID || inv.Status != InvitationPending {
			continue
		}
		if _, err := o.provisioner.AcceptInvitation(ctx, cb.user(), cb.session.Subject, cb.state.Realm, inv.Token); err != nil {
			return nil, fmt.Errorf("accept pending invitation: %w", err)
		}
		return nil, nil
	}

	return o.ssoRejection(ctx, tenant.ID), nil
}

func (o *Orchestrator) ssoRejection(ctx context.Context, tenantID uuid.UUID) *Result {
	o.logger.WarnContext(ctx, "enterprise sso access denied",
		"tenant_id", tenantID, "error", ErrSSOUnauthorized)
	return &Result{
		Flow:         FlowUnauthorizedSSO,
		ErrorMessage: "access to this organization is restricted, request an invitation",
	}
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 && at < len(email)-1 {
		return email[at+1:]
	}
	return ""
}

func domainAllowed(allowed []string, domain string) bool {
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimSpace(a), domain)
	})
}
