package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/mtodo/internal/pkg/dbutil"
)

type sqlRepo struct {
	db   *sqlx.DB
	bind int
}

func newSQLRepo(db *sqlx.DB) sqlRepo {
	return sqlRepo{db: db, bind: sqlx.BindType(db.DriverName())}
}

func (r sqlRepo) finalize(query string, args []interface{}) (string, []interface{}) {
	return dbutil.Finalize(r.bind, query, args)
}

// insertReturningID runs a gendry insert and returns the generated id.
func (r sqlRepo) insertReturningID(ctx context.Context, query string, args []interface{}) (int64, error) {
	query, args = r.finalize(query+" RETURNING id", args)
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r sqlRepo) execAffected(ctx context.Context, query string, args []interface{}) (int64, error) {
	query, args = r.finalize(query, args)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
