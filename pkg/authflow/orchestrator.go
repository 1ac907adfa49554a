package authflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Stores groups every persistence and provider dependency of the
// Orchestrator. A struct keeps construction readable and lets tests swap
// individual ports without positional-argument churn.
type Stores struct {
	IdentityProvider IdentityProvider
	Users            UserStore
	Tenants          TenantStore
	Memberships      MembershipStore
	Invitations      InvitationStore
	JoinLinks        JoinLinkStore
	Roles            RoleStore
	UnitOfWork       UnitOfWork
}

// Orchestrator is the callback state machine. One instance serves all
// requests; it holds no per-flow mutable state.
type Orchestrator struct {
	idp         IdentityProvider
	tenants     TenantStore
	memberships MembershipStore
	invitations InvitationStore
	joinLinks   JoinLinkStore
	provisioner *Provisioner
	issuer      TokenIssuer
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for flow diagnostics and degradation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the callback orchestrator. All stores and the token
// issuer are required; the logger defaults to a discard handler.
func NewOrchestrator(stores Stores, issuer TokenIssuer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		idp:         stores.IdentityProvider,
		tenants:     stores.Tenants,
		memberships: stores.Memberships,
		invitations: stores.Invitations,
		joinLinks:   stores.JoinLinks,
		issuer:      issuer,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.provisioner = NewProvisioner(
		stores.Users, stores.Tenants, stores.Memberships, stores.Invitations,
		stores.Roles, stores.UnitOfWork, WithProvisionerLogger(o.logger),
	)
	return o
}

// callback carries the per-request flow context assembled by the preamble.
type callback struct {
	state   CallbackState
	session *ExternalSession
	userID  uuid.UUID
}

// user builds the local user record from the asserted identity.
func (c *callback) user() User {
	return User{
		ID:          c.userID,
		DisplayName: c.session.DisplayName,
		Email:       c.session.Email,
		Username:    c.session.Username,
	}
}

// HandleCallback processes an OAuth callback end to end and always returns a
// terminal result: failures are converted into sanitized Result values while
// full detail is logged server-side.
func (o *Orchestrator) HandleCallback(ctx context.Context, code, state, redirectURI string) (res *Result) {
	st := DecodeState(state, o.logger)

	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "callback flow panicked", "flow", st.Flow, "panic", r)
			res = o.failure(st.Flow, "authentication failed")
		}
	}()

	session, err := o.idp.ExchangeCode(ctx, code, redirectURI, st.Realm)
	if err != nil {
		o.logger.ErrorContext(ctx, "code exchange failed", "flow", st.Flow, "realm", st.Realm, "error", err)
		return o.failure(st.Flow, "authentication failed")
	}
	if session.Subject == "" {
		o.logger.ErrorContext(ctx, "access token carries no subject",
			"flow", st.Flow, "realm", st.Realm, "error", ErrMissingSubject)
		return o.failure(st.Flow, sanitizeFlowError(ErrMissingSubject))
	}

	cb := &callback{state: st, session: session}

	// Resolve a stable user id from a prior membership of this external
	// identity; first-time users get a candidate id that is only persisted
	// once a flow commits a membership alongside it.
	existing, err := o.memberships.GetByRealmAndExternalID(ctx, st.Realm, session.Subject)
	switch {
	case err == nil:
		cb.userID = existing.UserID
	case errors.Is(err, ErrNotFound):
		cb.userID = uuid.New()
	default:
		o.logger.ErrorContext(ctx, "membership lookup failed", "flow", st.Flow, "error", err)
		return o.failure(st.Flow, "authentication failed")
	}

	switch st.Flow {
	case FlowInvitation:
		res, err = o.handleInvitation(ctx, cb)
	case FlowJoinLink:
		res, err = o.handleJoinLink(ctx, cb)
	case FlowNewOrg:
		res, err = o.handleNewOrg(ctx, cb)
	case FlowEnterpriseFirstAdmin:
		res, err = o.handleEnterpriseFirstAdmin(ctx, cb)
	default:
		res, err = o.handleDefault(ctx, cb)
	}
	if err != nil {
		o.logger.ErrorContext(ctx, "callback flow failed",
			"flow", st.Flow, "realm", st.Realm, "user_id", cb.userID, "error", err)
		return o.failure(st.Flow, sanitizeFlowError(err))
	}
	return res
}

// issueToken mints the session token for a tenant the user is now a member
// of and assembles the success result.
func (o *Orchestrator) issueToken(ctx context.Context, cb *callback, tenantID uuid.UUID, flow Flow) (*Result, error) {
	token, err := o.issuer.Issue(cb.userID, tenantID, cb.session.Claims)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	name := ""
	if tenant, err := o.tenants.GetByID(ctx, tenantID); err == nil {
		name = tenant.Name
	} else {
		o.logger.WarnContext(ctx, "tenant name lookup failed", "tenant_id", tenantID, "error", err)
	}

	return &Result{
		Success:    true,
		Flow:       flow,
		Token:      token,
		TenantID:   tenantID,
		TenantName: name,
	}, nil
}

func (o *Orchestrator) failure(flow Flow, msg string) *Result {
	return &Result{Flow: flow, ErrorMessage: msg}
}

// sanitizeFlowError maps flow errors to caller-safe messages. Anything not
// recognized collapses to a generic message; the detailed cause was already
// logged at the flow boundary.
func sanitizeFlowError(err error) string {
	switch {
	case errors.Is(err, ErrInvitationInvalid):
		return "invitation is invalid or expired"
	case errors.Is(err, ErrJoinLinkInvalid):
		return "join link is invalid or expired"
	case errors.Is(err, ErrAlreadyMember):
		return "already a member of this organization"
	case errors.Is(err, ErrTenantUnavailable):
		return "organization is not available"
	case errors.Is(err, ErrTenantOccupied):
		return "organization already has an administrator"
	case errors.Is(err, ErrNoMembership):
		return "unable to assign user to tenant"
	default:
		return "authentication failed"
	}
}
