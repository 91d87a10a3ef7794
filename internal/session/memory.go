package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

// MemoryStore keeps sessions in process. When full the least recently used
// session is evicted.
type MemoryStore struct {
	cache *expirable.LRU[string, int64]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 10000
	}
	return &MemoryStore{cache: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	s.cache.Add(id, userID)
	return id, nil
}

func (s *MemoryStore) Lookup(_ context.Context, id string) (int64, error) {
	userID, ok := s.cache.Get(id)
	if !ok {
		return 0, appErr.ErrNotFound
	}
	return userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}
