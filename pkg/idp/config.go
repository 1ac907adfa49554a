package idp

import "time"

// Config holds identity-provider connection settings.
type Config struct {
	// BaseURL is the identity provider root, e.g. "https://id.example.com".
	BaseURL string `env:"IDP_BASE_URL,required"`
	// ClientID is the OAuth client used for user logins.
	ClientID string `env:"IDP_CLIENT_ID,required"`
	// ClientSecret may be empty for public clients.
	ClientSecret string `env:"IDP_CLIENT_SECRET"`
	// AdminClientID is the service account for admin API calls.
	AdminClientID string `env:"IDP_ADMIN_CLIENT_ID"`
	// AdminClientSecret authenticates the admin service account.
	AdminClientSecret string `env:"IDP_ADMIN_CLIENT_SECRET"`
	// AdminRealm is the realm the admin service account lives in.
	AdminRealm string `env:"IDP_ADMIN_REALM" envDefault:"master"`
	// RequestTimeout bounds every outbound HTTP call.
	RequestTimeout time.Duration `env:"IDP_REQUEST_TIMEOUT" envDefault:"10s"`
	// Scopes are requested on login redirects.
	Scopes []string `env:"IDP_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
}
