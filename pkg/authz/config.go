package authz

import "time"

// Config holds authorization settings.
type Config struct {
	// CacheTTL bounds permission-set staleness between invalidations.
	CacheTTL time.Duration `env:"AUTHZ_CACHE_TTL" envDefault:"15m"`
}
