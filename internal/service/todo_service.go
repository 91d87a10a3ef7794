package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
	"github.com/xxxsen/mtodo/internal/query"
	"github.com/xxxsen/mtodo/internal/repo"
)

type TodoService struct {
	todos *repo.TodoRepo
	scope string
}

func NewTodoService(todos *repo.TodoRepo, scope string) *TodoService {
	if scope == "" {
		scope = config.ListScopeOwner
	}
	return &TodoService{todos: todos, scope: scope}
}

// TodoInput is the create/update body. Nil means the field was absent.
type TodoInput struct {
	Title  *string `json:"title"`
	Desc   *string `json:"desc"`
	Status *string `json:"status"`
}

type TodoPage struct {
	Data     []model.Todo
	Page     int
	PageSize int
	Total    int64
}

// CheckOwner fails with ErrForbidden unless userID owns todo.
func CheckOwner(userID int64, todo *model.Todo) error {
	if todo == nil || todo.UserID != userID {
		return appErr.Wrap(appErr.ErrForbidden, "You are not allowed to modify this todo")
	}
	return nil
}

func (s *TodoService) scopeFor(userID int64) int64 {
	if s.scope == config.ListScopeAll {
		return 0
	}
	return userID
}

func (s *TodoService) List(ctx context.Context, userID int64, params query.ListParams) (*TodoPage, error) {
	where, ok := query.Compile(params.Filters.List(), s.scopeFor(userID))
	if !ok {
		return &TodoPage{Data: []model.Todo{}, Page: params.Page, PageSize: params.PageSize}, nil
	}
	total, err := s.todos.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	todos, err := s.todos.List(ctx, repo.ListQuery{
		Where:   where,
		OrderBy: params.Sort.OrderBy(),
		Limit:   params.Limit(),
		Offset:  params.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &TodoPage{Data: todos, Page: params.Page, PageSize: params.PageSize, Total: total}, nil
}

func (s *TodoService) Get(ctx context.Context, userID, todoID int64) (*model.Todo, error) {
	return s.todos.GetByID(ctx, todoID, s.scopeFor(userID))
}

func (s *TodoService) Create(ctx context.Context, userID int64, in TodoInput) (*model.Todo, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status := model.TodoStatusTodo
	if in.Status != nil {
		if status, err = validateStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	now := timeutil.NowMilli()
	todo := &model.Todo{
		UserID:    userID,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Desc != nil {
		todo.Desc = *in.Desc
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("todo created", zap.Int64("user_id", userID), zap.Int64("todo_id", todo.ID))
	return todo, nil
}

// Update replaces title and desc; status is kept when absent.
func (s *TodoService) Update(ctx context.Context, userID, todoID int64, in TodoInput) (*model.Todo, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	var status string
	if in.Status != nil {
		if status, err = validateStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	todo, err := s.todos.GetByID(ctx, todoID, 0)
	if err != nil {
		return nil, err
	}
	if err := CheckOwner(userID, todo); err != nil {
		return nil, err
	}
	todo.Title = title
	todo.Desc = ""
	if in.Desc != nil {
		todo.Desc = *in.Desc
	}
	if status != "" {
		todo.Status = status
	}
	todo.UpdatedAt = timeutil.NowMilli()
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete removes the todo and returns it as it was.
func (s *TodoService) Delete(ctx context.Context, userID, todoID int64) (*model.Todo, error) {
	todo, err := s.todos.GetByID(ctx, todoID, 0)
	if err != nil {
		return nil, err
	}
	if err := CheckOwner(userID, todo); err != nil {
		return nil, err
	}
	if err := s.todos.Delete(ctx, userID, todoID); err != nil {
		return nil, err
	}
	return todo, nil
}

func validateTitle(title *string) (string, error) {
	if title == nil || strings.TrimSpace(*title) == "" {
		return "", appErr.Wrap(appErr.ErrInvalid, "Missing required fields: title")
	}
	if utf8.RuneCountInString(*title) > model.TodoTitleMaxLen {
		return "", appErr.Wrap(appErr.ErrInvalid, "Title must be at most 100 characters long")
	}
	return *title, nil
}

func validateStatus(status string) (string, error) {
	if !model.ValidTodoStatus(status) {
		return "", appErr.Wrap(appErr.ErrInvalid, "Invalid status: must be one of todo, in-progress, done")
	}
	return status, nil
}
