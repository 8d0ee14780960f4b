package config

import "time"

// Config is the complete service configuration. Values come from defaults,
// an optional config file, environment variables and command-line flags, in
// increasing order of precedence.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Datasets  DatasetsConfig  `mapstructure:"datasets"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Verbose   bool            `mapstructure:"verbose"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool   `mapstructure:"trust_proxy"`
	StaticDir  string `mapstructure:"static_dir"`
}

// RateLimitConfig configures the per-client fixed-window limiter.
type RateLimitConfig struct {
	Requests        int           `mapstructure:"requests"`
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// Trusted lists client addresses that bypass limiting, in addition to
	// loopback.
	Trusted []string `mapstructure:"trusted"`
}

// CacheConfig holds the advertised dataset cache TTL. Entries are refreshed
// by invalidation, not by age.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DatasetsConfig controls how upstream datasets are fetched.
type DatasetsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ValidateSchema bool          `mapstructure:"validate_schema"`
	Prefetch       bool          `mapstructure:"prefetch"`
}

// AdminConfig guards the admin routes. An empty token disables them.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated exporter port; /metrics on the main port proxies it.
	Port int `mapstructure:"port"`
}
