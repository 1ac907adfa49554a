package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// Ensure Client implements the authflow port.
var _ authflow.IdentityProvider = (*Client)(nil)

// Client talks to the realm-based identity provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	adminToken oauth2.TokenSource
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger sets the logger for request diagnostics.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// New creates an identity-provider client. The admin token source uses the
// client-credentials grant against the admin realm and refreshes itself.
func New(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = 10 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.AdminClientID,
		ClientSecret: cfg.AdminClientSecret,
		TokenURL:     c.tokenURL(cfg.AdminRealm),
	}
	adminCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	c.adminToken = cc.TokenSource(adminCtx)

	return c
}

func (c *Client) base() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) tokenURL(realm string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.base(), url.PathEscape(realm))
}

func (c *Client) authURL(realm string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/auth", c.base(), url.PathEscape(realm))
}

func (c *Client) oauthConfig(realm, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       c.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL(realm),
			TokenURL: c.tokenURL(realm),
		},
	}
}

// AuthorizationURL builds the login redirect for a realm with the encoded
// callback state.
func (c *Client) AuthorizationURL(realm, state, redirectURI string) string {
	return c.oauthConfig(realm, redirectURI).AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens against the
// realm's token endpoint and extracts the asserted identity from the access
// token via a trusted decode. Any non-success response is an error; this
// layer never retries.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI, realm string) (*authflow.ExternalSession, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauthConfig(realm, redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	claims, err := InsecureDecodeClaims(tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	return &authflow.ExternalSession{
		Subject:      stringClaim(claims, "sub"),
		Realm:        realm,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Email:        stringClaim(claims, "email"),
		Username:     stringClaim(claims, "preferred_username"),
		DisplayName:  stringClaim(claims, "name"),
		Claims:       claims,
	}, nil
}

// userRepresentation mirrors the subset of the admin API user resource the
// auth core reads.
type userRepresentation struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GetUserProfile reads the user record through the admin REST API.
func (c *Client) GetUserProfile(ctx context.Context, subject, realm string) (*authflow.ExternalProfile, error) {
	endpoint := fmt.Sprintf("%s/admin/realms/%s/users/%s", c.base(), url.PathEscape(realm), url.PathEscape(subject))

	var user userRepresentation
	if err := c.adminGET(ctx, endpoint, &user); err != nil {
		return nil, err
	}

	return &authflow.ExternalProfile{
		Subject:     user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
	}, nil
}

// DisableRealmRegistration turns off self-registration for a realm. Callers
// treat failures as non-fatal; the realm update targets a remote system and
// is intentionally not transactional with any local write.
func (c *Client) DisableRealmRegistration(ctx context.Context, realm string) error {
	endpoint := fmt.Sprintf("%s/admin/realms/%s", c.base(), url.PathEscape(realm))

	body, err := json.Marshal(map[string]any{"registrationAllowed": false})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doAdmin(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: realm update returned status %d", ErrAdminRequest, resp.StatusCode)
	}
	return nil
}

func (c *Client) adminGET(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.doAdmin(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrProfileNotFound
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("%w: status %d", ErrAdminRequest, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doAdmin(req *http.Request) (*http.Response, error) {
	tok, err := c.adminToken.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: admin token: %w", ErrAdminRequest, err)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdminRequest, err)
	}
	return resp, nil
}

func stringClaim(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
