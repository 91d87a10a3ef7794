package session

import (
	"context"
	"time"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/jwt"
)

// CookieStore keeps no server state: the session id handed to the client is
// a signed token carrying the user id. Delete cannot revoke a token; logout
// relies on the cookie being cleared.
type CookieStore struct {
	secret []byte
	ttl    time.Duration
}

func NewCookieStore(secret []byte, ttl time.Duration) *CookieStore {
	return &CookieStore{secret: secret, ttl: ttl}
}

func (s *CookieStore) Create(_ context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	return jwt.GenerateToken(userID, id, s.secret, s.ttl)
}

func (s *CookieStore) Lookup(_ context.Context, token string) (int64, error) {
	claims, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return 0, appErr.ErrNotFound
	}
	return claims.UserID, nil
}

func (s *CookieStore) Delete(context.Context, string) error {
	return nil
}
