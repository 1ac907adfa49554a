package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAccessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("idp-test-key"))
	require.NoError(t, err)
	return token
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// newTestIdP runs a fake realm-based provider. The extra handler serves
// everything that is not a token endpoint.
func newTestIdP(t *testing.T, accessToken string, extra http.HandlerFunc) *httptest.Server {
	t.Helper()
	masterToken := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"access_token": "admin-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}
	realmToken := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") == "invalid-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
			return
		}
		writeJSON(t, w, map[string]any{
			"access_token":  accessToken,
			"refresh_token": "refresh-xyz",
			"token_type":    "Bearer",
			"expires_in":    300,
		})
	}
	// Go 1.21's ServeMux lacks method/wildcard patterns, so route the
	// "POST /realms/{realm}/protocol/openid-connect/token" endpoints by hand.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if rest, ok := strings.CutPrefix(r.URL.Path, "/realms/"); ok {
				if realm, ok := strings.CutSuffix(rest, "/protocol/openid-connect/token"); ok && realm != "" && !strings.Contains(realm, "/") {
					if realm == "master" {
						masterToken(w, r)
					} else {
						realmToken(w, r)
					}
					return
				}
			}
		}
		if extra != nil {
			extra(w, r)
			return
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *Client {
	return New(Config{
		BaseURL:           srv.URL,
		ClientID:          "groundup-app",
		ClientSecret:      "app-secret",
		AdminClientID:     "groundup-admin",
		AdminClientSecret: "admin-secret",
		AdminRealm:        "master",
		RequestTimeout:    5 * time.Second,
		Scopes:            []string{"openid", "profile", "email"},
	}, WithHTTPClient(srv.Client()))
}

func TestClient_ExchangeCode(t *testing.T) {
	t.Parallel()

	t.Run("success extracts identity from access token", func(t *testing.T) {
		t.Parallel()

		access := makeAccessToken(t, jwt.MapClaims{
			"sub":                "ext-123",
			"email":              "jane@acme.com",
			"preferred_username": "jane",
			"name":               "Jane Doe",
		})
		srv := newTestIdP(t, access, nil)
		c := testClient(srv)

		session, err := c.ExchangeCode(context.Background(), "good-code", "https://app/callback", "acme")

		require.NoError(t, err)
		assert.Equal(t, "ext-123", session.Subject)
		assert.Equal(t, "acme", session.Realm)
		assert.Equal(t, access, session.AccessToken)
		assert.Equal(t, "refresh-xyz", session.RefreshToken)
		assert.Equal(t, "jane@acme.com", session.Email)
		assert.Equal(t, "jane", session.Username)
		assert.Equal(t, "Jane Doe", session.DisplayName)
		assert.Equal(t, "jane@acme.com", session.Claims["email"])
	})

	t.Run("provider rejection fails the exchange", func(t *testing.T) {
		t.Parallel()

		srv := newTestIdP(t, "unused", nil)
		c := testClient(srv)

		_, err := c.ExchangeCode(context.Background(), "invalid-code", "https://app/callback", "acme")

		assert.ErrorIs(t, err, ErrExchangeFailed)
	})

	t.Run("non-jwt access token fails the exchange", func(t *testing.T) {
		t.Parallel()

		srv := newTestIdP(t, "opaque-not-a-jwt", nil)
		c := testClient(srv)

		_, err := c.ExchangeCode(context.Background(), "good-code", "https://app/callback", "acme")

		assert.ErrorIs(t, err, ErrExchangeFailed)
	})
}

func TestClient_GetUserProfile(t *testing.T) {
	t.Parallel()

	t.Run("reads user through the admin api", func(t *testing.T) {
		t.Parallel()

		srv := newTestIdP(t, "unused", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/admin/realms/acme/users/ext-123" {
				assert.Equal(t, "Bearer admin-access-token", r.Header.Get("Authorization"))
				writeJSON(t, w, map[string]any{
					"id":        "ext-123",
					"username":  "jane",
					"email":     "jane@acme.com",
					"firstName": "Jane",
					"lastName":  "Doe",
				})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})
		c := testClient(srv)

		profile, err := c.GetUserProfile(context.Background(), "ext-123", "acme")

		require.NoError(t, err)
		assert.Equal(t, "ext-123", profile.Subject)
		assert.Equal(t, "jane@acme.com", profile.Email)
		assert.Equal(t, "jane", profile.Username)
		assert.Equal(t, "Jane Doe", profile.DisplayName)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		srv := newTestIdP(t, "unused", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		c := testClient(srv)

		_, err := c.GetUserProfile(context.Background(), "nope", "acme")

		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestClient_DisableRealmRegistration(t *testing.T) {
	t.Parallel()

	t.Run("puts the realm update", func(t *testing.T) {
		t.Parallel()

		var gotBody map[string]any
		srv := newTestIdP(t, "unused", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut && r.URL.Path == "/admin/realms/acme" {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})
		c := testClient(srv)

		err := c.DisableRealmRegistration(context.Background(), "acme")

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"registrationAllowed": false}, gotBody)
	})

	t.Run("admin api failure propagates", func(t *testing.T) {
		t.Parallel()

		srv := newTestIdP(t, "unused", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		c := testClient(srv)

		err := c.DisableRealmRegistration(context.Background(), "acme")

		assert.ErrorIs(t, err, ErrAdminRequest)
	})
}

func TestClient_AuthorizationURL(t *testing.T) {
	t.Parallel()

	c := New(Config{
		BaseURL:  "https://id.example.com",
		ClientID: "groundup-app",
		Scopes:   []string{"openid"},
	})

	got := c.AuthorizationURL("acme", "opaque-state", "https://app/callback")

	assert.Contains(t, got, "https://id.example.com/realms/acme/protocol/openid-connect/auth")
	assert.Contains(t, got, "state=opaque-state")
	assert.Contains(t, got, "client_id=groundup-app")
}

func TestInsecureDecodeClaims(t *testing.T) {
	t.Parallel()

	t.Run("decodes without verifying", func(t *testing.T) {
		t.Parallel()

		token := makeAccessToken(t, jwt.MapClaims{"sub": "ext-1", "email": "a@b.c"})
		claims, err := InsecureDecodeClaims(token)

		require.NoError(t, err)
		assert.Equal(t, "ext-1", claims["sub"])
		assert.Equal(t, "a@b.c", claims["email"])
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()

		_, err := InsecureDecodeClaims("definitely not a jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}
