package sessiontoken

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rsbst23/groundup/pkg/authflow"
)

func TestRefresher_TryRefresh(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tenantID := uuid.New()
	issued := time.Unix(1_700_000_000, 0)
	claims := func() map[string]any {
		return map[string]any{
			"iat": issued.Unix(),
			"exp": issued.Add(time.Hour).Unix(),
		}
	}

	newRefresher := func(t *testing.T, now time.Time) (*Refresher, *MockMembershipReader) {
		t.Helper()
		iss, err := NewIssuer(testConfig(), WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		memberships := new(MockMembershipReader)
		r := NewRefresher(memberships, iss, WithRefresherClock(func() time.Time { return now }))
		return r, memberships
	}

	t.Run("declines before half life", func(t *testing.T) {
		t.Parallel()

		r, memberships := newRefresher(t, issued.Add(20*time.Minute))

		token, ok := r.TryRefresh(context.Background(), userID, tenantID, claims())

		assert.False(t, ok)
		assert.Empty(t, token)
		memberships.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refreshes after half life", func(t *testing.T) {
		t.Parallel()

		r, memberships := newRefresher(t, issued.Add(40*time.Minute))
		memberships.On("Get", mock.Anything, userID, tenantID).
			Return(&authflow.Membership{UserID: userID, TenantID: tenantID}, nil)

		token, ok := r.TryRefresh(context.Background(), userID, tenantID, claims())

		assert.True(t, ok)
		assert.NotEmpty(t, token)
	})

	t.Run("refreshes exactly at half life", func(t *testing.T) {
		t.Parallel()

		r, memberships := newRefresher(t, issued.Add(30*time.Minute))
		memberships.On("Get", mock.Anything, userID, tenantID).
			Return(&authflow.Membership{UserID: userID, TenantID: tenantID}, nil)

		_, ok := r.TryRefresh(context.Background(), userID, tenantID, claims())

		assert.True(t, ok)
	})

	t.Run("declines when membership revoked", func(t *testing.T) {
		t.Parallel()

		r, memberships := newRefresher(t, issued.Add(40*time.Minute))
		memberships.On("Get", mock.Anything, userID, tenantID).
			Return(nil, authflow.ErrNotFound)

		token, ok := r.TryRefresh(context.Background(), userID, tenantID, claims())

		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("declines on malformed lifecycle claims", func(t *testing.T) {
		t.Parallel()

		r, _ := newRefresher(t, issued.Add(40*time.Minute))

		tests := []struct {
			name   string
			claims map[string]any
		}{
			{"missing iat", map[string]any{"exp": issued.Add(time.Hour).Unix()}},
			{"missing exp", map[string]any{"iat": issued.Unix()}},
			{"exp before iat", map[string]any{"iat": issued.Unix(), "exp": issued.Add(-time.Hour).Unix()}},
			{"non-numeric", map[string]any{"iat": "soon", "exp": "later"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, ok := r.TryRefresh(context.Background(), userID, tenantID, tt.claims)
				assert.False(t, ok)
			})
		}
	})

	t.Run("accepts decoder claim variants", func(t *testing.T) {
		t.Parallel()

		r, memberships := newRefresher(t, issued.Add(40*time.Minute))
		memberships.On("Get", mock.Anything, userID, tenantID).
			Return(&authflow.Membership{UserID: userID, TenantID: tenantID}, nil)

		_, ok := r.TryRefresh(context.Background(), userID, tenantID, map[string]any{
			"iat": float64(issued.Unix()),
			"exp": json.Number("1700003600"),
		})

		assert.True(t, ok)
	})
}
