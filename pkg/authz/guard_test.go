package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPermissionSource is a mock implementation of PermissionSource.
type MockPermissionSource struct {
	mock.Mock
}

func (m *MockPermissionSource) PermissionsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func testRules() *Rules {
	return NewRules().
		Require("inventory.UpdateItem", Rule{Permissions: []string{"inventory.write"}}).
		Require("inventory.DeleteItem", Rule{Permissions: []string{"inventory.admin"}, Roles: []string{"Admin"}}).
		Require("reports.Export", Rule{Permissions: []string{"reports.export"}}).
		Require("billing.Close", Rule{Roles: []string{"Owner"}})
}

func principalCtx(userID uuid.UUID, roles ...string) context.Context {
	return WithPrincipal(context.Background(), Principal{
		UserID:   userID,
		TenantID: uuid.New(),
		Roles:    roles,
	})
}

func TestGuard_Authorize(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("unguarded operation always allowed", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(context.Background(), "inventory.ListItems")

		assert.NoError(t, err)
		source.AssertNotCalled(t, "PermissionsForUser", mock.Anything, mock.Anything)
	})

	t.Run("guarded operation without principal denied", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(context.Background(), "inventory.UpdateItem")

		require.Error(t, err)
		assert.True(t, IsForbidden(err))
		source.AssertNotCalled(t, "PermissionsForUser", mock.Anything, mock.Anything)
	})

	t.Run("permission grants access", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"inventory.write", "inventory.read"}, nil)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID), "inventory.UpdateItem")

		assert.NoError(t, err)
	})

	t.Run("wildcard permission grants access", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"reports.*"}, nil)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID), "reports.Export")

		assert.NoError(t, err)
	})

	t.Run("missing permission denied", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"inventory.read"}, nil)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID), "inventory.UpdateItem")

		require.Error(t, err)
		var fe *ForbiddenError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, userID, fe.UserID)
		assert.Equal(t, "inventory.UpdateItem", fe.Operation)
	})

	t.Run("role short-circuits permission computation", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID, "Admin"), "inventory.DeleteItem")

		assert.NoError(t, err)
		source.AssertNotCalled(t, "PermissionsForUser", mock.Anything, mock.Anything)
	})

	t.Run("roles-only rule is a hard role requirement", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID, "Owner"), "billing.Close")
		assert.NoError(t, err)

		err = g.Authorize(principalCtx(userID, "Admin"), "billing.Close")
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
		source.AssertNotCalled(t, "PermissionsForUser", mock.Anything, mock.Anything)
	})

	t.Run("source failure fails closed", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return(nil, errors.New("connection refused"))
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		err := g.Authorize(principalCtx(userID), "inventory.UpdateItem")

		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("permissions are cached per user", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"inventory.write"}, nil).Once()
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		ctx := principalCtx(userID)
		require.NoError(t, g.Authorize(ctx, "inventory.UpdateItem"))
		require.NoError(t, g.Authorize(ctx, "inventory.UpdateItem"))

		source.AssertExpectations(t)
	})

	t.Run("invalidate forces recomputation", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"inventory.write"}, nil).Once()
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{}, nil).Once()
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		ctx := principalCtx(userID)
		require.NoError(t, g.Authorize(ctx, "inventory.UpdateItem"))
		require.NoError(t, g.Invalidate(ctx))

		err := g.Authorize(ctx, "inventory.UpdateItem")
		assert.True(t, IsForbidden(err))
		source.AssertExpectations(t)
	})
}

func TestProtect(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("denial prevents execution", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).Return([]string{}, nil)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		called := false
		op := Protect(g, "inventory.UpdateItem", func(ctx context.Context) (string, error) {
			called = true
			return "updated", nil
		})

		got, err := op(principalCtx(userID))

		assert.True(t, IsForbidden(err))
		assert.Empty(t, got)
		assert.False(t, called)
	})

	t.Run("allowed call passes through", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		source.On("PermissionsForUser", mock.Anything, userID).
			Return([]string{"inventory.write"}, nil)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		op := Protect(g, "inventory.UpdateItem", func(ctx context.Context) (string, error) {
			return "updated", nil
		})

		got, err := op(principalCtx(userID))

		require.NoError(t, err)
		assert.Equal(t, "updated", got)
	})

	t.Run("ProtectCall guards side-effecting operations", func(t *testing.T) {
		t.Parallel()

		source := new(MockPermissionSource)
		g := NewGuard(testRules(), source, NewMemoryCache(time.Minute))

		called := false
		op := ProtectCall(g, "inventory.DeleteItem", func(ctx context.Context) error {
			called = true
			return nil
		})

		err := op(context.Background())

		assert.True(t, IsForbidden(err))
		assert.False(t, called)
	})
}
