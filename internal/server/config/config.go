// Package config handles configuration for the server component:
// defaults, environment (optionally from a .env file), a JSON overlay and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds runtime settings for the gradekeeper server.
//
// DatabaseDSN selects the dialect: postgres:// URLs use PostgreSQL through
// pgx, anything else is opened as a SQLite file. SecretKey signs session
// cookies and must be overridden outside development.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string
	SecretKey        string
	SessionTTL       time.Duration
	SessionBackend   string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CaptchaMode      string
	BcryptCost       int
	CORSOrigins      []string
	CookieSecure     bool
	LogFormat        string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "database.db"
	c.SecretKey = "secret123"
	c.SessionTTL = 24 * time.Hour
	c.SessionBackend = SessionBackendMemory
	c.RedisAddr = "localhost:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.CaptchaMode = "server"
	c.BcryptCost = 10
	// local front-end origins; "*" (any origin, with credentials) is opt-in
	c.CORSOrigins = append([]string(nil), common.DefaultCORSOrigins...)
	c.CookieSecure = false
	c.LogFormat = "slog"
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
