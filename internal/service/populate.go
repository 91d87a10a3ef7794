package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
)

const (
	DemoPassword     = "123123"
	DefaultDemoUsers = 2
	DefaultDemoTodos = 101
)

var demoEmails = []string{"first@gmail.com", "second@gmail.com"}

type PopulateOptions struct {
	Users int
	Todos int
	// Seed 0 picks a random seed.
	Seed uint64
}

type PopulateResult struct {
	Users []model.User
	Todos int
}

// Populator seeds demo users and todos. Existing demo users are reused.
type Populator struct {
	users *repo.UserRepo
	todos *repo.TodoRepo
}

func NewPopulator(users *repo.UserRepo, todos *repo.TodoRepo) *Populator {
	return &Populator{users: users, todos: todos}
}

func (p *Populator) Populate(ctx context.Context, opts PopulateOptions) (*PopulateResult, error) {
	if opts.Users <= 0 {
		opts.Users = DefaultDemoUsers
	}
	if opts.Todos < 0 {
		opts.Todos = 0
	}
	faker := gofakeit.New(opts.Seed)
	hash, err := password.Hash(DemoPassword)
	if err != nil {
		return nil, err
	}
	res := &PopulateResult{}
	for i := 0; i < opts.Users; i++ {
		user, err := p.ensureUser(ctx, demoEmail(faker, i), hash)
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, *user)
	}

	end := time.Now()
	start := end.AddDate(0, -1, 0)
	statuses := []string{model.TodoStatusTodo, model.TodoStatusInProgress, model.TodoStatusDone}
	for i := 0; i < opts.Todos; i++ {
		owner := res.Users[faker.Number(0, len(res.Users)-1)]
		created := faker.DateRange(start, end).UnixMilli()
		todo := &model.Todo{
			UserID:    owner.ID,
			Title:     demoTitle(faker),
			Desc:      strings.Join([]string{faker.Adjective(), faker.Noun(), faker.Verb(), faker.Adverb()}, " "),
			Status:    faker.RandomString(statuses),
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := p.todos.Create(ctx, todo); err != nil {
			return nil, fmt.Errorf("create todo: %w", err)
		}
		res.Todos++
	}
	logutil.GetLogger(ctx).Info("demo data populated",
		zap.Int("users", len(res.Users)), zap.Int("todos", res.Todos))
	return res, nil
}

func (p *Populator) ensureUser(ctx context.Context, email, hash string) (*model.User, error) {
	user := &model.User{Email: email, PasswordHash: hash, CreatedAt: time.Now().UnixMilli()}
	err := p.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !appErr.IsConflict(err) {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return p.users.GetByEmail(ctx, email)
}

func demoEmail(faker *gofakeit.Faker, i int) string {
	if i < len(demoEmails) {
		return demoEmails[i]
	}
	return fmt.Sprintf("%s.%d@%s", strings.ToLower(faker.FirstName()), i, faker.DomainName())
}

func demoTitle(faker *gofakeit.Faker) string {
	title := faker.Verb() + " " + faker.Noun()
	if len(title) > model.TodoTitleMaxLen {
		title = title[:model.TodoTitleMaxLen]
	}
	return title
}
