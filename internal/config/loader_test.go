package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "CATPPUCCIN_"

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v, testPrefix))
	return v
}

// clearEnv blanks every bound variable; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range envBindings {
		t.Setenv(testPrefix+b.suffix, "")
		if b.legacy {
			t.Setenv(b.suffix, "")
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.False(t, cfg.Server.TrustProxy)
		assert.Equal(t, "./public", cfg.Server.StaticDir)

		assert.Equal(t, 100000, cfg.RateLimit.Requests)
		assert.Equal(t, time.Hour, cfg.RateLimit.Window)
		assert.Equal(t, 5*time.Minute, cfg.RateLimit.CleanupInterval)
		assert.Empty(t, cfg.RateLimit.Trusted)

		assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)

		assert.Equal(t, "https://raw.githubusercontent.com", cfg.Datasets.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Datasets.Timeout)
		assert.False(t, cfg.Datasets.ValidateSchema)
		assert.False(t, cfg.Datasets.Prefetch)

		assert.Empty(t, cfg.Admin.Token)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9090, cfg.Metrics.Port)

		assert.Same(t, cfg, GetConfig())
	})

	t.Run("PrefixedEnvOverrides", func(t *testing.T) {
		t.Setenv("CATPPUCCIN_PORT", "8088")
		t.Setenv("CATPPUCCIN_RATE_LIMIT", "50")
		t.Setenv("CATPPUCCIN_RATE_WINDOW", "15m")
		t.Setenv("CATPPUCCIN_TRUST_PROXY", "true")
		t.Setenv("CATPPUCCIN_DATASETS_BASE_URL", "https://mirror.example.com/")
		t.Setenv("CATPPUCCIN_DATASETS_PREFETCH", "true")
		t.Setenv("CATPPUCCIN_ADMIN_TOKEN", "secret")
		t.Setenv("CATPPUCCIN_RATE_LIMIT_TRUSTED", "10.0.0.1,10.0.0.2")
		t.Setenv("CATPPUCCIN_LOG_LEVEL", "WARN")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, 8088, cfg.Server.Port)
		assert.Equal(t, 50, cfg.RateLimit.Requests)
		assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
		assert.True(t, cfg.Server.TrustProxy)
		assert.Equal(t, "https://mirror.example.com", cfg.Datasets.BaseURL)
		assert.True(t, cfg.Datasets.Prefetch)
		assert.Equal(t, "secret", cfg.Admin.Token)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Trusted)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("LegacyEnvNames", func(t *testing.T) {
		t.Setenv("HOST", "127.0.0.1")
		t.Setenv("PORT", "4000")
		t.Setenv("RATE_LIMIT", "10")
		t.Setenv("RATE_WINDOW", "60")
		t.Setenv("CACHE_TTL", "120")
		t.Setenv("VERBOSE", "true")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, 10, cfg.RateLimit.Requests)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
		assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("PrefixedBeatsLegacy", func(t *testing.T) {
		t.Setenv("PORT", "4000")
		t.Setenv("CATPPUCCIN_PORT", "5000")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Server.Port)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "server:\n  port: 3100\nrate_limit:\n  requests: 7\n  window: 90\ncache:\n  ttl: 1m\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		v := newViper(t)
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 3100, cfg.Server.Port)
		assert.Equal(t, 7, cfg.RateLimit.Requests)
		assert.Equal(t, 90*time.Second, cfg.RateLimit.Window)
		assert.Equal(t, time.Minute, cfg.Cache.TTL)
	})
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"ZeroRequests":   {"CATPPUCCIN_RATE_LIMIT": "0"},
		"NegativeWindow": {"CATPPUCCIN_RATE_WINDOW": "-5"},
		"ZeroWindow":     {"RATE_WINDOW": "0"},
		"PortTooLarge":   {"CATPPUCCIN_PORT": "70000"},
		"BadBaseURL":     {"CATPPUCCIN_DATASETS_BASE_URL": "ftp://example.com"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, val := range env {
				t.Setenv(k, val)
			}
			_, err := Load(newViper(t))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("CATPPUCCIN_RATE_WINDOW", "soon")
	_, err := Load(newViper(t))
	require.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: -1},
		RateLimit: RateLimitConfig{Requests: 0, Window: 0},
		Datasets:  DatasetsConfig{BaseURL: "https://raw.githubusercontent.com"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit.requests")
	assert.Contains(t, err.Error(), "rate_limit.window")
	assert.Contains(t, err.Error(), "server.port")
}

func TestAddConfigPathsWithoutConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	identity := &appidentity.Identity{ConfigName: "catppuccin-api", BinaryName: "catppuccin-api"}
	v := newViper(t)
	AddConfigPaths(v, identity)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
