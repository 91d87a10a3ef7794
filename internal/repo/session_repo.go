package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

type SessionRepo struct {
	sqlRepo
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{sqlRepo: newSQLRepo(db)}
}

func (r *SessionRepo) Create(ctx context.Context, sess *model.Session) error {
	data := map[string]interface{}{
		"id":         sess.ID,
		"user_id":    sess.UserID,
		"expires_at": sess.ExpiresAt,
		"created_at": sess.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.execAffected(ctx, sqlStr, args)
	return err
}

// GetActive returns the session unless it is missing or expired at now.
func (r *SessionRepo) GetActive(ctx context.Context, id string, now int64) (*model.Session, error) {
	where := map[string]interface{}{
		"id":           id,
		"expires_at >": now,
		"_limit":       []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("sessions", where, []string{"id", "user_id", "expires_at", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = r.finalize(sqlStr, args)
	var sess model.Session
	if err := r.db.GetContext(ctx, &sess, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("sessions", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	_, err = r.execAffected(ctx, sqlStr, args)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	sqlStr, args, err := builder.BuildDelete("sessions", map[string]interface{}{"expires_at <=": now})
	if err != nil {
		return 0, err
	}
	return r.execAffected(ctx, sqlStr, args)
}
