package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/session"
)

type AuthService struct {
	users    *repo.UserRepo
	sessions session.Store
	// users are never mutated, so cached entries only go stale by expiry
	cache *expirable.LRU[int64, model.User]
	sf    singleflight.Group
}

func NewAuthService(users *repo.UserRepo, sessions session.Store, cacheSize int, cacheTTL time.Duration) *AuthService {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		cache:    expirable.NewLRU[int64, model.User](cacheSize, nil, cacheTTL),
	}
}

func (s *AuthService) Register(ctx context.Context, creds Credentials) (*model.User, error) {
	email, plain, err := ValidateCredentials(creds)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(plain)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, appErr.Wrap(appErr.ErrInvalid, "Password is too long")
		}
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    timeutil.NowMilli(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr.IsConflict(err) {
			return nil, appErr.Wrap(appErr.ErrConflict, "User with this email already exists")
		}
		return nil, err
	}
	logutil.GetLogger(ctx).Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and opens a session, returning its id.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*model.User, string, error) {
	email, plain, err := ValidateCredentials(creds)
	if err != nil {
		return nil, "", err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.Wrap(appErr.ErrUnauthorized, "Wrong email or password")
		}
		return nil, "", err
	}
	if err := password.Compare(user.PasswordHash, plain); err != nil {
		return nil, "", appErr.Wrap(appErr.ErrUnauthorized, "Wrong email or password")
	}
	sid, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	s.cache.Add(user.ID, *user)
	return user, sid, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sid)
}

// ResolveSession returns the user behind sid, or ErrNotFound when the
// session or its user no longer exists.
func (s *AuthService) ResolveSession(ctx context.Context, sid string) (*model.User, error) {
	if sid == "" {
		return nil, appErr.ErrNotFound
	}
	userID, err := s.sessions.Lookup(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.loadUser(ctx, userID)
}

func (s *AuthService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	if u, ok := s.cache.Get(userID); ok {
		return &u, nil
	}
	v, err, _ := s.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Add(userID, *u)
		return *u, nil
	})
	if err != nil {
		return nil, err
	}
	u := v.(model.User)
	return &u, nil
}
