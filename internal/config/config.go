// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers files and env on top.
// - Errors returned from Load wrap this package's sentinels.
package config

import (
	"strings"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Storage selects the candidate/task store: memory or postgres.
	Storage string `koanf:"storage"`

	// DatabaseURL is the lib/pq connection string used when Storage is postgres.
	DatabaseURL string `koanf:"database_url"`

	// JWTSecret verifies HS256 bearer tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// AuthDevAllowLocal accepts the X-Local-Dev-Principal header as caller identity.
	AuthDevAllowLocal bool `koanf:"auth_dev_allow_local"`

	// LeaderboardLimit caps the number of ranked entries.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// DefaultXPReward is applied to tasks created without a reward.
	DefaultXPReward int `koanf:"default_xp_reward"`

	// CertificateDir is where rendered certificates are written when no bucket is set.
	CertificateDir string `koanf:"certificate_dir"`

	// CertificateBucket switches certificate storage to S3.
	CertificateBucket string `koanf:"certificate_bucket"`

	// CertificatePrefix is prepended to S3 object keys.
	CertificatePrefix string `koanf:"certificate_prefix"`

	// KafkaBrokers is a comma separated broker list; empty logs award events instead.
	KafkaBrokers string `koanf:"kafka_brokers"`

	// KafkaTopic receives award events.
	KafkaTopic string `koanf:"kafka_topic"`

	// EventQueueSize bounds the in-memory award event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// PublisherWorkers sets the number of goroutines draining the event queue.
	PublisherWorkers int `koanf:"publisher_workers"`

	// IdempotencyCacheSize bounds the Idempotency-Key cache.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		Storage:              StorageMemory,
		LeaderboardLimit:     100,
		DefaultXPReward:      10,
		CertificateDir:       "generated_certificates",
		CertificatePrefix:    "certificates/",
		KafkaTopic:           "internxp.awards",
		EventQueueSize:       10_000,
		PublisherWorkers:     2,
		IdempotencyCacheSize: 50_000,
	}
}

// Brokers splits KafkaBrokers into a clean list.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url is required for postgres storage")
		}
	default:
		return invalid("unknown storage " + `"` + c.Storage + `"`)
	}
	if c.JWTSecret == "" && !c.AuthDevAllowLocal {
		return invalid("jwt_secret is required unless auth_dev_allow_local is set")
	}
	if c.LeaderboardLimit <= 0 {
		return invalid("leaderboard_limit must be positive")
	}
	if c.DefaultXPReward <= 0 {
		return invalid("default_xp_reward must be positive")
	}
	if c.EventQueueSize <= 0 || c.PublisherWorkers <= 0 || c.IdempotencyCacheSize <= 0 {
		return invalid("event_queue_size, publisher_workers and idempotency_cache_size must be positive")
	}
	return nil
}
