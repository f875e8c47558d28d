// Package config decodes the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. Startup logs a
// warning when it is in effect.
const DefaultSessionSecret = "dev-secret-change-in-production"

type Server struct {
	Addr            string        `env:"HTTP_ADDR,default=0.0.0.0"`
	Port            string        `env:"PORT,default=8080"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES,default=2097152"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	RateLimitRPS    int           `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=10"`
	// TrustProxy is the number of reverse proxies in front of the server whose
	// X-Forwarded-For entries are believed. 0 keys clients by RemoteAddr.
	TrustProxy int `env:"TRUST_PROXY,default=0"`
}

// ListenAddr joins Addr and Port.
func (s Server) ListenAddr() string { return s.Addr + ":" + s.Port }

type Session struct {
	Store      string        `env:"SESSION_STORE"`
	Secret     string        `env:"SESSION_SECRET,default=dev-secret-change-in-production"`
	MaxAge     time.Duration `env:"SESSION_MAX_AGE,default=168h"`
	CookieName string        `env:"SESSION_COOKIE_NAME,default=blog_session"`
	RedisAddr  string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB    int           `env:"REDIS_DB,default=0"`
}

type Auth struct {
	MinUsernameLen int `env:"AUTH_MIN_USERNAME_LEN,default=3"`
	MinPasswordLen int `env:"AUTH_MIN_PASSWORD_LEN,default=6"`
	BcryptCost     int `env:"BCRYPT_COST,default=12"`
}

type IDs struct {
	Strategy      string `env:"ID_STRATEGY,default=ksuid"`
	SnowflakeNode int64  `env:"SNOWFLAKE_NODE,default=1"`
}

// Config is the full service configuration.
type Config struct {
	Env         string `env:"APP_ENV,default=development"`
	StoreDriver string `env:"STORE_DRIVER,default=postgres"`
	Server      Server
	Database    database.Config
	Session     Session
	Auth        Auth
	IDs         IDs
	Log         utilities.LogConfig
}

// Production reports whether cookies must carry the Secure flag.
func (c Config) Production() bool { return c.Env == "production" }

// UsesDatabase reports whether content and users live in a relational store.
func (c Config) UsesDatabase() bool { return c.StoreDriver != "memory" }

// SessionStore resolves the session store kind, defaulting to the relational
// store when one is configured.
func (c Config) SessionStore() string {
	if c.Session.Store != "" {
		return c.Session.Store
	}
	if c.UsesDatabase() {
		return "sql"
	}
	return "memory"
}

// Load decodes the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}
	// STORE_DRIVER selects the database driver unless DATABASE_DRIVER says otherwise
	if cfg.UsesDatabase() && cfg.StoreDriver != database.DriverPostgres {
		cfg.Database.Driver = cfg.StoreDriver
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "memory", "postgres", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("STORE_DRIVER: unsupported value %q", c.StoreDriver)
	}
	switch c.SessionStore() {
	case "memory", "redis":
	case "sql":
		if !c.UsesDatabase() {
			return errors.New("SESSION_STORE=sql requires a database STORE_DRIVER")
		}
	default:
		return fmt.Errorf("SESSION_STORE: unsupported value %q", c.Session.Store)
	}
	if c.Server.TrustProxy < 0 {
		return errors.New("TRUST_PROXY must not be negative")
	}
	if c.Session.MaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.Auth.MinUsernameLen < 1 || c.Auth.MinPasswordLen < 1 {
		return errors.New("AUTH_MIN_USERNAME_LEN and AUTH_MIN_PASSWORD_LEN must be positive")
	}
	if c.Production() && c.Session.Secret == DefaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}
