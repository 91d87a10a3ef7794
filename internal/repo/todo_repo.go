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

var todoFields = []string{"id", "user_id", "title", "description", "status", "created_at", "updated_at"}

type TodoRepo struct {
	sqlRepo
}

func NewTodoRepo(db *sqlx.DB) *TodoRepo {
	return &TodoRepo{sqlRepo: newSQLRepo(db)}
}

// ListQuery selects one page of todos. Where holds gendry conditions only;
// ordering and paging are applied here.
type ListQuery struct {
	Where   map[string]interface{}
	OrderBy string
	Limit   uint
	Offset  uint
}

func (r *TodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	data := map[string]interface{}{
		"user_id":     todo.UserID,
		"title":       todo.Title,
		"description": todo.Desc,
		"status":      todo.Status,
		"created_at":  todo.CreatedAt,
		"updated_at":  todo.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("todos", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	id, err := r.insertReturningID(ctx, sqlStr, args)
	if err != nil {
		return err
	}
	todo.ID = id
	return nil
}

// GetByID loads a todo. A non-zero scopeUserID restricts the lookup to that
// owner.
func (r *TodoRepo) GetByID(ctx context.Context, todoID, scopeUserID int64) (*model.Todo, error) {
	where := map[string]interface{}{
		"id":     todoID,
		"_limit": []uint{0, 1},
	}
	if scopeUserID != 0 {
		where["user_id"] = scopeUserID
	}
	sqlStr, args, err := builder.BuildSelect("todos", where, todoFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = r.finalize(sqlStr, args)
	var todo model.Todo
	if err := r.db.GetContext(ctx, &todo, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	where := map[string]interface{}{
		"id":      todo.ID,
		"user_id": todo.UserID,
	}
	update := map[string]interface{}{
		"title":       todo.Title,
		"description": todo.Desc,
		"status":      todo.Status,
		"updated_at":  todo.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildUpdate("todos", where, update)
	if err != nil {
		return err
	}
	affected, err := r.execAffected(ctx, sqlStr, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *TodoRepo) Delete(ctx context.Context, userID, todoID int64) error {
	where := map[string]interface{}{
		"id":      todoID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildDelete("todos", where)
	if err != nil {
		return err
	}
	affected, err := r.execAffected(ctx, sqlStr, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *TodoRepo) List(ctx context.Context, q ListQuery) ([]model.Todo, error) {
	where := copyWhere(q.Where)
	if q.OrderBy != "" {
		where["_orderby"] = q.OrderBy
	}
	if q.Limit > 0 {
		where["_limit"] = []uint{q.Offset, q.Limit}
	}
	sqlStr, args, err := builder.BuildSelect("todos", where, todoFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = r.finalize(sqlStr, args)
	todos := make([]model.Todo, 0)
	if err := r.db.SelectContext(ctx, &todos, sqlStr, args...); err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *TodoRepo) Count(ctx context.Context, where map[string]interface{}) (int64, error) {
	sqlStr, args, err := builder.BuildSelect("todos", copyWhere(where), []string{"COUNT(1)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = r.finalize(sqlStr, args)
	var count int64
	if err := r.db.GetContext(ctx, &count, sqlStr, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func copyWhere(where map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(where)+2)
	for k, v := range where {
		out[k] = v
	}
	return out
}
