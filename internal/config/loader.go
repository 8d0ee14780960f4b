// Package config loads the service configuration with viper.
//
// Every key has a default, may be set in a YAML config file, and may be
// overridden by an environment variable. Most keys take the application env
// prefix (CATPPUCCIN_PORT); the handful inherited from earlier deployments
// (PORT, HOST, RATE_LIMIT, RATE_WINDOW, CACHE_TTL, VERBOSE) are also read
// unprefixed, with the prefixed name winning when both are set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/fetch"
	"github.com/catppuccin/api/internal/ratelimit"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// envBinding maps a config key to its environment suffix. Legacy bindings
// are also read without the prefix.
type envBinding struct {
	key    string
	suffix string
	legacy bool
}

var envBindings = []envBinding{
	{key: "server.host", suffix: "HOST", legacy: true},
	{key: "server.port", suffix: "PORT", legacy: true},
	{key: "server.read_timeout", suffix: "READ_TIMEOUT"},
	{key: "server.write_timeout", suffix: "WRITE_TIMEOUT"},
	{key: "server.idle_timeout", suffix: "IDLE_TIMEOUT"},
	{key: "server.shutdown_timeout", suffix: "SHUTDOWN_TIMEOUT"},
	{key: "server.trust_proxy", suffix: "TRUST_PROXY"},
	{key: "server.static_dir", suffix: "STATIC_DIR"},

	{key: "rate_limit.requests", suffix: "RATE_LIMIT", legacy: true},
	{key: "rate_limit.window", suffix: "RATE_WINDOW", legacy: true},
	{key: "rate_limit.cleanup_interval", suffix: "RATE_CLEANUP_INTERVAL"},
	{key: "rate_limit.trusted", suffix: "RATE_LIMIT_TRUSTED"},

	{key: "cache.ttl", suffix: "CACHE_TTL", legacy: true},

	{key: "datasets.base_url", suffix: "DATASETS_BASE_URL"},
	{key: "datasets.timeout", suffix: "DATASETS_TIMEOUT"},
	{key: "datasets.validate_schema", suffix: "DATASETS_VALIDATE_SCHEMA"},
	{key: "datasets.prefetch", suffix: "DATASETS_PREFETCH"},

	{key: "admin.token", suffix: "ADMIN_TOKEN"},

	{key: "logging.level", suffix: "LOG_LEVEL"},
	{key: "metrics.enabled", suffix: "METRICS_ENABLED"},
	{key: "metrics.port", suffix: "METRICS_PORT"},

	{key: "verbose", suffix: "VERBOSE", legacy: true},
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.idle_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.static_dir", "./public")

	v.SetDefault("rate_limit.requests", 100000)
	v.SetDefault("rate_limit.window", "3600s")
	v.SetDefault("rate_limit.cleanup_interval", ratelimit.DefaultCleanupInterval.String())
	v.SetDefault("rate_limit.trusted", []string{})

	v.SetDefault("cache.ttl", "300s")

	v.SetDefault("datasets.base_url", dataset.DefaultBaseURL)
	v.SetDefault("datasets.timeout", fetch.DefaultTimeout.String())
	v.SetDefault("datasets.validate_schema", false)
	v.SetDefault("datasets.prefetch", false)

	v.SetDefault("admin.token", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("verbose", false)
}

// BindEnv binds every key to its prefixed environment variable, plus the
// unprefixed name for legacy keys.
func BindEnv(v *viper.Viper, prefix string) error {
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	for _, b := range envBindings {
		names := []string{b.key, prefix + b.suffix}
		if b.legacy && prefix != "" {
			names = append(names, b.suffix)
		}
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind %s: %w", b.key, err)
		}
	}
	return nil
}

// AddConfigPaths points v at the XDG config directory for identity, the
// binary-name directory when it differs, and ./config.
func AddConfigPaths(v *viper.Viper, identity *appidentity.Identity) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if identity != nil {
		if dir := gfconfig.GetAppConfigDir(identity.ConfigName); dir != "" {
			v.AddConfigPath(dir)
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.SetConfigName("." + identity.ConfigName)
		}
		if identity.BinaryName != "" && identity.BinaryName != identity.ConfigName {
			if dir := gfconfig.GetAppConfigDir(identity.BinaryName); dir != "" {
				v.AddConfigPath(dir)
			}
		}
	}
	v.AddConfigPath("./config")
}

// Load decodes v into a Config, validates it and makes it the current
// configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Datasets.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Datasets.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests must be positive, got %d", c.RateLimit.Requests))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port))
	}
	if u, err := url.Parse(c.Datasets.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("datasets.base_url must be an http(s) URL, got %q", c.Datasets.BaseURL))
	}
	return errors.Join(errs...)
}

// secondsToDurationHookFunc lets duration keys take a bare number of seconds,
// as in RATE_WINDOW=3600. Anything else falls through to the duration parser.
func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch value := data.(type) {
		case int:
			return time.Duration(value) * time.Second, nil
		case int64:
			return time.Duration(value) * time.Second, nil
		case float64:
			return time.Duration(value * float64(time.Second)), nil
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
				return time.Duration(n) * time.Second, nil
			}
			return strings.TrimSpace(value), nil
		}
		return data, nil
	}
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
