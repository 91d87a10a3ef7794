package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/xxxsen/common/logger"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreCookie = "cookie"
	SessionStoreDB     = "db"

	ListScopeOwner = "owner"
	ListScopeAll   = "all"
)

type Config struct {
	Port          int              `json:"port" env:"MTODO_PORT" env-default:"8080"`
	Database      DatabaseConfig   `json:"database"`
	Session       SessionConfig    `json:"session"`
	Todo          TodoConfig       `json:"todo"`
	CORSOrigins   []string         `json:"cors_origins" env:"MTODO_CORS_ORIGINS"`
	PasswordCost  int              `json:"password_cost" env:"MTODO_PASSWORD_COST" env-default:"10"`
	AuthRateLimit int              `json:"auth_rate_limit_ms" env:"MTODO_AUTH_RATE_LIMIT_MS" env-default:"0"`
	UserCache     UserCacheConfig  `json:"user_cache"`
	LogConfig     logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	// Driver is one of postgres (lib/pq), pgx or sqlite.
	Driver   string `json:"driver" env:"MTODO_DB_DRIVER" env-default:"postgres"`
	DSN      string `json:"dsn" env:"MTODO_DB_DSN"`
	Host     string `json:"host" env:"MTODO_DB_HOST" env-default:"127.0.0.1"`
	Port     int    `json:"port" env:"MTODO_DB_PORT" env-default:"5432"`
	User     string `json:"user" env:"MTODO_DB_USER"`
	Password string `json:"password" env:"MTODO_DB_PASSWORD"`
	DBName   string `json:"dbname" env:"MTODO_DB_NAME"`
	SSLMode  string `json:"sslmode" env:"MTODO_DB_SSLMODE" env-default:"disable"`
	MaxConns int    `json:"max_conns" env:"MTODO_DB_MAX_CONNS" env-default:"10"`
}

type SessionConfig struct {
	Store      string      `json:"store" env:"MTODO_SESSION_STORE" env-default:"memory"`
	CookieName string      `json:"cookie_name" env:"MTODO_SESSION_COOKIE" env-default:"session"`
	TTLHours   int         `json:"ttl_hours" env:"MTODO_SESSION_TTL_HOURS" env-default:"24"`
	Secure     bool        `json:"secure" env:"MTODO_SESSION_SECURE"`
	Secret     string      `json:"secret" env:"MTODO_SESSION_SECRET"`
	MemorySize int         `json:"memory_size" env:"MTODO_SESSION_MEMORY_SIZE" env-default:"10000"`
	Redis      RedisConfig `json:"redis"`
	// CleanupSpec is the cron spec for purging expired rows of the db store.
	CleanupSpec string `json:"cleanup_spec" env:"MTODO_SESSION_CLEANUP_SPEC" env-default:"*/30 * * * *"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"MTODO_REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `json:"password" env:"MTODO_REDIS_PASSWORD"`
	DB       int    `json:"db" env:"MTODO_REDIS_DB" env-default:"0"`
}

type TodoConfig struct {
	// ListScope decides whether list/get only see the caller's todos (owner)
	// or every todo with the user filter left to the caller (all).
	ListScope   string `json:"list_scope" env:"MTODO_TODO_LIST_SCOPE" env-default:"owner"`
	MaxPageSize int    `json:"max_page_size" env:"MTODO_TODO_MAX_PAGE_SIZE" env-default:"0"`
}

type UserCacheConfig struct {
	Size       int `json:"size" env:"MTODO_USER_CACHE_SIZE" env-default:"1024"`
	TTLSeconds int `json:"ttl_seconds" env:"MTODO_USER_CACHE_TTL" env-default:"300"`
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c UserCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load reads the config file at path (json, yaml or toml by extension) and
// applies MTODO_* environment overrides. An empty path reads the environment
// only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Port <= 0 {
		return fmt.Errorf("port is required")
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "postgres", "pgx":
		if c.Database.DSN == "" && (c.Database.User == "" || c.Database.DBName == "") {
			return fmt.Errorf("database.dsn or database.user/dbname are required for %s", c.Database.Driver)
		}
	case "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be postgres, pgx or sqlite")
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session"
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis, SessionStoreDB:
	case SessionStoreCookie:
		if c.Session.Secret == "" {
			return fmt.Errorf("session.secret is required for cookie store")
		}
	default:
		return fmt.Errorf("session.store must be memory, redis, cookie or db")
	}
	switch c.Todo.ListScope {
	case "":
		c.Todo.ListScope = ListScopeOwner
	case ListScopeOwner, ListScopeAll:
	default:
		return fmt.Errorf("todo.list_scope must be owner or all")
	}
	if c.Todo.MaxPageSize < 0 {
		c.Todo.MaxPageSize = 0
	}
	return nil
}
