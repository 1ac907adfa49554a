package sessiontoken

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// MockMembershipReader is a mock implementation of MembershipReader.
type MockMembershipReader struct {
	mock.Mock
}

func (m *MockMembershipReader) ListForUser(ctx context.Context, userID uuid.UUID) ([]authflow.Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authflow.Membership), args.Error(1)
}

func (m *MockMembershipReader) Get(ctx context.Context, userID, tenantID uuid.UUID) (*authflow.Membership, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authflow.Membership), args.Error(1)
}

// MockTenantReader is a mock implementation of TenantReader.
type MockTenantReader struct {
	mock.Mock
}

func (m *MockTenantReader) GetByID(ctx context.Context, id uuid.UUID) (*authflow.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authflow.Tenant), args.Error(1)
}
