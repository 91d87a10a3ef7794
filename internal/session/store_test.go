package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/testutil"
)

func roundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	id, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	other, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEqual(t, id, other)

	userID, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)

	_, err = store.Lookup(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	roundTrip(t, store)

	id, err := store.Create(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), id))
	_, err = store.Lookup(context.Background(), id)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(10, 20*time.Millisecond)
	id, err := store.Create(context.Background(), 7)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := store.Lookup(context.Background(), id)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, time.Hour)
	defer store.Close()

	roundTrip(t, store)

	id, err := store.Create(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, mr.Exists(redisKeyPrefix+id))
	require.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+id))

	mr.FastForward(2 * time.Hour)
	_, err = store.Lookup(context.Background(), id)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	id, err = store.Create(context.Background(), 9)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), id))
	require.False(t, mr.Exists(redisKeyPrefix+id))
}

func TestCookieStore(t *testing.T) {
	store := NewCookieStore([]byte("secret"), time.Hour)
	roundTrip(t, store)

	forged := NewCookieStore([]byte("other"), time.Hour)
	token, err := forged.Create(context.Background(), 1)
	require.NoError(t, err)
	_, err = store.Lookup(context.Background(), token)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDBStore(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := repo.NewUserRepo(db)
	user := &model.User{Email: "first@gmail.com", PasswordHash: "x", CreatedAt: 1}
	require.NoError(t, users.Create(context.Background(), user))

	sessions := repo.NewSessionRepo(db)
	store := NewDBStore(sessions, time.Hour)
	id, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)
	got, err := store.Lookup(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, user.ID, got)

	require.NoError(t, store.Delete(context.Background(), id))
	_, err = store.Lookup(context.Background(), id)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	expired := NewDBStore(sessions, -time.Minute)
	id, err = expired.Create(context.Background(), user.ID)
	require.NoError(t, err)
	_, err = store.Lookup(context.Background(), id)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	n, err := sessions.DeleteExpired(context.Background(), time.Now().UnixMilli())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestNew(t *testing.T) {
	store, err := New(config.SessionConfig{Store: config.SessionStoreMemory, TTLHours: 1}, nil)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)

	store, err = New(config.SessionConfig{Store: config.SessionStoreCookie, Secret: "s", TTLHours: 1}, nil)
	require.NoError(t, err)
	require.IsType(t, &CookieStore{}, store)

	mr := miniredis.RunT(t)
	store, err = New(config.SessionConfig{Store: config.SessionStoreRedis, TTLHours: 1, Redis: config.RedisConfig{Addr: mr.Addr()}}, nil)
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, store)
	require.NoError(t, store.(*RedisStore).Close())

	_, err = New(config.SessionConfig{Store: config.SessionStoreDB, TTLHours: 1}, nil)
	require.Error(t, err)

	_, err = New(config.SessionConfig{Store: "file"}, nil)
	require.Error(t, err)
}
