// Package config provides application configuration management through environment variables.
//
// Static settings (server address, KMS provider, logging) are read once at startup
// via Load. The three cache tunables live under the "aegis" namespace and are
// re-read from the environment on every use, so a running service can be retuned
// without a restart.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Cache tunable defaults.
const (
	DefaultCacheLimit              = 100000
	DefaultCacheMaxAgeSec          = 1800
	DefaultCacheExpirationCheckSec = 10
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort int

	// Logging
	LogLevel string

	// Key manager backend: a gocloud.dev/secrets keeper URI
	// (e.g. "base64key://...", "hashivault://keyname", "awskms://...").
	KMSKeyURI string

	// CORS configuration
	CORSEnabled      bool
	CORSAllowOrigins string

	// Rate limiting (per client IP)
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key manager backend
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),

		// CORS configuration
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Rate limiting
		RateLimitEnabled: env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRPS:     env.GetInt("RATE_LIMIT_RPS", 100),
		RateLimitBurst:   env.GetInt("RATE_LIMIT_BURST", 200),
	}
}

// CacheLimit returns the maximum number of entries the key cache may hold.
// Read fresh from AEGIS_CACHE_LIMIT on every call.
func CacheLimit() int {
	return env.GetInt("AEGIS_CACHE_LIMIT", DefaultCacheLimit)
}

// CacheMaxAge returns the TTL of a cache entry from the moment it is inserted.
// Read fresh from AEGIS_CACHE_MAX_AGE_SEC on every call.
func CacheMaxAge() time.Duration {
	return time.Duration(env.GetInt("AEGIS_CACHE_MAX_AGE_SEC", DefaultCacheMaxAgeSec)) * time.Second
}

// CacheExpirationCheckInterval returns the period between TTL sweeps.
// Read fresh from AEGIS_CACHE_EXPIRATION_CHECK_SEC on every call.
func CacheExpirationCheckInterval() time.Duration {
	return time.Duration(
		env.GetInt("AEGIS_CACHE_EXPIRATION_CHECK_SEC", DefaultCacheExpirationCheckSec),
	) * time.Second
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
