package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/session"
	"github.com/xxxsen/mtodo/internal/testutil"
)

func init() {
	password.SetCost(bcrypt.MinCost)
}

type fixture struct {
	users *repo.UserRepo
	todos *repo.TodoRepo
	auth  *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.OpenTestDB(t)
	users := repo.NewUserRepo(conn)
	return &fixture{
		users: users,
		todos: repo.NewTodoRepo(conn),
		auth:  NewAuthService(users, session.NewMemoryStore(100, time.Hour), 100, time.Minute),
	}
}
