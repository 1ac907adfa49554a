package authflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider is a mock implementation of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) ExchangeCode(ctx context.Context, code, redirectURI, realm string) (*ExternalSession, error) {
	args := m.Called(ctx, code, redirectURI, realm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExternalSession), args.Error(1)
}

func (m *MockIdentityProvider) GetUserProfile(ctx context.Context, subject, realm string) (*ExternalProfile, error) {
	args := m.Called(ctx, subject, realm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExternalProfile), args.Error(1)
}

func (m *MockIdentityProvider) DisableRealmRegistration(ctx context.Context, realm string) error {
	args := m.Called(ctx, realm)
	return args.Error(0)
}

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) EnsureExists(ctx context.Context, user User, externalID, realm string) error {
	args := m.Called(ctx, user, externalID, realm)
	return args.Error(0)
}

// MockTenantStore is a mock implementation of TenantStore.
type MockTenantStore struct {
	mock.Mock
}

func (m *MockTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *MockTenantStore) GetByRealm(ctx context.Context, realm string) (*Tenant, error) {
	args := m.Called(ctx, realm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *MockTenantStore) CreateStandard(ctx context.Context, id uuid.UUID, realm, name string) (*Tenant, error) {
	args := m.Called(ctx, id, realm, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

// MockMembershipStore is a mock implementation of MembershipStore.
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockMembershipStore) Get(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockMembershipStore) GetByRealmAndExternalID(ctx context.Context, realm, externalID string) (*Membership, error) {
	args := m.Called(ctx, realm, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockMembershipStore) Create(ctx context.Context, membership Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipStore) TenantHasMembers(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

// MockInvitationStore is a mock implementation of InvitationStore.
type MockInvitationStore struct {
	mock.Mock
}

func (m *MockInvitationStore) AcceptByToken(ctx context.Context, token string, userID uuid.UUID, externalID string) (*Invitation, error) {
	args := m.Called(ctx, token, userID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invitation), args.Error(1)
}

func (m *MockInvitationStore) FindPendingForEmail(ctx context.Context, email string) ([]Invitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Invitation), args.Error(1)
}

// MockJoinLinkStore is a mock implementation of JoinLinkStore.
type MockJoinLinkStore struct {
	mock.Mock
}

func (m *MockJoinLinkStore) FindByToken(ctx context.Context, token string) (*JoinLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*JoinLink), args.Error(1)
}

// MockRoleStore is a mock implementation of RoleStore.
type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) FindRoleIDByName(ctx context.Context, tenantID uuid.UUID, name string) (int64, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleStore) AssignRole(ctx context.Context, userID, tenantID uuid.UUID, roleID int64) error {
	args := m.Called(ctx, userID, tenantID, roleID)
	return args.Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID, tenantID uuid.UUID, sourceClaims map[string]any) (string, error) {
	args := m.Called(userID, tenantID, sourceClaims)
	return args.String(0), args.Error(1)
}

// passthroughUoW executes the transactional function directly so membership
// provisioning can be exercised without a database.
type passthroughUoW struct{}

func (passthroughUoW) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
