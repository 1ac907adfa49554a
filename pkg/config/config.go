// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development. Every package
// in this module declares its own Config struct with caarlos0/env tags;
// wiring code loads each one once at startup.
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("config: nil config pointer")
	ErrParsingFailed = errors.New("config: failed to parse environment")
)

var dotenvOnce sync.Once

// Load populates cfg from the environment. The default .env file is loaded
// once per process and may be absent.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// Missing .env is fine; real environments set variables directly.
		_ = godotenv.Load()
	})
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingFailed, err)
	}
	return nil
}

// MustLoad is Load for configuration the application cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
