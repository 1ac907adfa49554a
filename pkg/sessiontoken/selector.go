package sessiontoken

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// MembershipReader is the read-only slice of authflow.MembershipStore the
// session layer needs.
type MembershipReader interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]authflow.Membership, error)
	Get(ctx context.Context, userID, tenantID uuid.UUID) (*authflow.Membership, error)
}

// TenantReader resolves tenant display names for selection prompts.
type TenantReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*authflow.Tenant, error)
}

// Selection is the outcome of SelectTenant: either a token or a prompt.
type Selection struct {
	SelectionRequired bool
	AvailableTenants  []authflow.TenantOption
	Token             string
	TenantID          uuid.UUID
}

// Selector resolves which tenant a session is issued for.
type Selector struct {
	memberships MembershipReader
	tenants     TenantReader
	issuer      *Issuer
}

// NewSelector wires a tenant selector over the membership store.
func NewSelector(memberships MembershipReader, tenants TenantReader, issuer *Issuer) *Selector {
	return &Selector{memberships: memberships, tenants: tenants, issuer: issuer}
}

// SelectTenant picks the session tenant. A nil tenantID auto-selects when
// the user has exactly one membership and returns the full list otherwise;
// an explicit tenantID is verified against membership (ErrNotAMember maps to
// a 403 at the transport) before a token is issued.
func (s *Selector) SelectTenant(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID, claims map[string]any) (*Selection, error) {
	if tenantID != nil {
		if _, err := s.memberships.Get(ctx, userID, *tenantID); err != nil {
			if errors.Is(err, authflow.ErrNotFound) {
				return nil, ErrNotAMember
			}
			return nil, fmt.Errorf("membership check: %w", err)
		}
		return s.issueFor(userID, *tenantID, claims)
	}

	memberships, err := s.memberships.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	switch len(memberships) {
	case 0:
		return nil, ErrNoTenants
	case 1:
		return s.issueFor(userID, memberships[0].TenantID, claims)
	default:
		options := make([]authflow.TenantOption, 0, len(memberships))
		for _, m := range memberships {
			opt := authflow.TenantOption{ID: m.TenantID}
			if t, err := s.tenants.GetByID(ctx, m.TenantID); err == nil {
				opt.Name = t.Name
			}
			options = append(options, opt)
		}
		return &Selection{SelectionRequired: true, AvailableTenants: options}, nil
	}
}

func (s *Selector) issueFor(userID, tenantID uuid.UUID, claims map[string]any) (*Selection, error) {
	token, err := s.issuer.Issue(userID, tenantID, claims)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Selection{Token: token, TenantID: tenantID}, nil
}
