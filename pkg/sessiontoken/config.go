package sessiontoken

import "time"

// Config holds session token settings.
type Config struct {
	// SigningKey is the symmetric HS256 key, at least 32 bytes.
	SigningKey string `env:"SESSION_SIGNING_KEY,required"`
	// Issuer is stamped into the "iss" claim.
	Issuer string `env:"SESSION_ISSUER" envDefault:"groundup"`
	// Audience is stamped into the "aud" claim.
	Audience string `env:"SESSION_AUDIENCE" envDefault:"groundup-api"`
	// TTL is the fixed session token lifetime.
	TTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"1h"`
}
