// Package config loads service configuration from an optional YAML file and
// UNIVISA_* environment variables. Environment values override the file;
// secrets come only from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all tunables for the API server and client tooling.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr" env:"UNIVISA_ADDR" env-default:":8080"`

	// PostgresDSN enables the durable store when set; otherwise the
	// seeded in-memory store is used.
	PostgresDSN string `yaml:"postgres_dsn" env:"UNIVISA_PG_DSN" env-default:""`

	// APIBase is the server base URL consumed by client tooling.
	APIBase string `yaml:"api_base" env:"UNIVISA_API_BASE" env-default:"http://localhost:8080"`

	// FetchBound caps how long a CPT list fetch may block a view before
	// it degrades to an empty list.
	FetchBound time.Duration `yaml:"fetch_bound" env:"UNIVISA_FETCH_BOUND" env-default:"6s"`

	// Rate limiting (token bucket per client IP).
	RateBurst  int `yaml:"rate_burst" env:"UNIVISA_RATE_BURST" env-default:"100"`
	RatePerSec int `yaml:"rate_per_sec" env:"UNIVISA_RATE_PER_SEC" env-default:"50"`

	// MaxBodyBytes limits request body size.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"UNIVISA_MAX_BODY_BYTES" env-default:"1048576"`

	// GeminiAPIKey marks an upstream generative backend as configured.
	// The advisory resolver never requires it; /v1/chat/status reports
	// its presence so clients can show a configuration notice.
	GeminiAPIKey string `yaml:"-" env:"UNIVISA_GEMINI_API_KEY"`
}

// Load reads the optional config file named by UNIVISA_CONFIG, then applies
// environment overrides and defaults.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("UNIVISA_CONFIG"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}
