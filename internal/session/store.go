// Package session maps opaque session identifiers to user ids.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/repo"
)

// Store is implemented by every session backend. Lookup returns
// errors.ErrNotFound for unknown or expired sessions.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// New builds the store selected by cfg.Store. db is only used by the db
// backend.
func New(cfg config.SessionConfig, db *sqlx.DB) (Store, error) {
	ttl := cfg.TTL()
	switch cfg.Store {
	case config.SessionStoreMemory, "":
		return NewMemoryStore(cfg.MemorySize, ttl), nil
	case config.SessionStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(rdb, ttl), nil
	case config.SessionStoreCookie:
		return NewCookieStore([]byte(cfg.Secret), ttl), nil
	case config.SessionStoreDB:
		if db == nil {
			return nil, fmt.Errorf("db session store needs a database")
		}
		return NewDBStore(repo.NewSessionRepo(db), ttl), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Store)
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
