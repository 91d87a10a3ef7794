package session

import (
	"context"
	"time"

	"github.com/xxxsen/mtodo/internal/model"
	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
	"github.com/xxxsen/mtodo/internal/repo"
)

// DBStore persists sessions in the sessions table. Expired rows are ignored
// on lookup and purged by the session cleanup job.
type DBStore struct {
	sessions *repo.SessionRepo
	ttl      time.Duration
}

func NewDBStore(sessions *repo.SessionRepo, ttl time.Duration) *DBStore {
	return &DBStore{sessions: sessions, ttl: ttl}
}

func (s *DBStore) Create(ctx context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	now := timeutil.NowMilli()
	sess := &model.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now + s.ttl.Milliseconds(),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", err
	}
	return id, nil
}

func (s *DBStore) Lookup(ctx context.Context, id string) (int64, error) {
	sess, err := s.sessions.GetActive(ctx, id, timeutil.NowMilli())
	if err != nil {
		return 0, err
	}
	return sess.UserID, nil
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
