package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/service"
	"github.com/xxxsen/mtodo/internal/session"
	"github.com/xxxsen/mtodo/internal/testutil"
)

func init() {
	password.SetCost(bcrypt.MinCost)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := testutil.OpenTestDB(t)
	users := repo.NewUserRepo(conn)
	auth := service.NewAuthService(users, session.NewMemoryStore(100, time.Hour), 100, time.Minute)
	todos := service.NewTodoService(repo.NewTodoRepo(conn), config.ListScopeOwner)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.LoadUser(auth, "session"))
	RegisterRoutes(engine.Group("/api"), RouterDeps{
		Auth:  NewAuthHandler(auth, CookieOptions{Name: "session", MaxAge: 3600}),
		Todos: NewTodoHandler(todos, 0),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email string) *http.Cookie {
	s.t.Helper()
	creds := map[string]string{"email": email, "password": "secret1"}
	w := s.do(http.MethodPost, "/api/register", creds, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/login", creds, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	s.t.Fatal("login did not set a session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterTwice(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "a@example.com", "password": "secret1"}
	w := s.do(http.MethodPost, "/api/register", creds, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"message":"User registered successfully"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/register", creds, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.EqualValues(t, 400, body["code"])
	require.Equal(t, "Bad Request", body["name"])
	require.Equal(t, "User with this email already exists", body["description"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/register", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Missing credentials: email or password", decode(t, w)["description"])

	w = s.do(http.MethodPost, "/api/register", map[string]string{"email": "nope", "password": "secret1"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid email", decode(t, w)["description"])
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login("a@example.com")

	w := s.do(http.MethodPost, "/api/login", map[string]string{"email": "a@example.com", "password": "wrong12"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Wrong email or password", decode(t, w)["description"])

	w = s.do(http.MethodGet, "/api/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a@example.com", decode(t, w)["email"])
	require.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodGet, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"User logged out successfully"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/todo", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTodoRequiresLogin(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/todo"},
		{http.MethodPost, "/api/todo"},
		{http.MethodGet, "/api/todo/1"},
		{http.MethodPut, "/api/todo/1"},
		{http.MethodDelete, "/api/todo/1"},
	} {
		w := s.do(tc.method, tc.path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}
	w := s.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCreateTodoWithoutTitle(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login("a@example.com")
	for _, body := range []interface{}{
		nil,
		map[string]string{"desc": "d"},
		map[string]string{"desc": "d", "status": "done"},
		map[string]string{"title": ""},
	} {
		w := s.do(http.MethodPost, "/api/todo", body, cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Missing required fields: title", decode(t, w)["description"])
	}

	w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": "t", "status": "later"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodoCRUD(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login("a@example.com")

	w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": "buy milk", "desc": "2l"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	require.Equal(t, "buy milk", created["title"])
	require.Equal(t, "2l", created["desc"])
	require.Equal(t, "todo", created["status"])
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, created["created_at"])
	id := int64(created["id"].(float64))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/todo/%d", id), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/todo/abc", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/todo/999", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/todo/%d", id), map[string]string{"title": "buy oat milk", "status": "done"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	require.Equal(t, "buy oat milk", updated["title"])
	require.Equal(t, "", updated["desc"])
	require.Equal(t, "done", updated["status"])

	w = s.do(http.MethodPut, fmt.Sprintf("/api/todo/%d", id), map[string]string{"desc": "x"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/todo/%d", id), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "buy oat milk", decode(t, w)["title"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/todo/%d", id), nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner@example.com")
	intruder := s.login("intruder@example.com")

	w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": "mine"}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/todo/%d", int64(decode(t, w)["id"].(float64)))

	w = s.do(http.MethodPut, path, map[string]string{"title": "theirs"}, intruder)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Forbidden", decode(t, w)["name"])
	w = s.do(http.MethodDelete, path, nil, intruder)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, path, map[string]string{"title": "still mine"}, owner)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, path, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTodoListPaging(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login("a@example.com")
	for i := 0; i < 25; i++ {
		w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": fmt.Sprintf("todo %d", i)}, cookie)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/api/todo?page=1&pageSize=10", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["data"], 10)
	require.EqualValues(t, 25, body["total"])
	require.EqualValues(t, 1, body["page"])
	require.EqualValues(t, 10, body["pageSize"])

	w = s.do(http.MethodGet, "/api/todo?page=3&pageSize=10", nil, cookie)
	require.Len(t, decode(t, w)["data"], 5)

	w = s.do(http.MethodGet, "/api/todo?page=zero&pageSize=-1", nil, cookie)
	body = decode(t, w)
	require.EqualValues(t, 1, body["page"])
	require.EqualValues(t, 10, body["pageSize"])

	w = s.do(http.MethodGet, "/api/todo?sort_by=created_at&order=desc&pageSize=100", nil, cookie)
	items := decode(t, w)["data"].([]interface{})
	require.Len(t, items, 25)
	for i := 1; i < len(items); i++ {
		prev := items[i-1].(map[string]interface{})["created_at"].(string)
		cur := items[i].(map[string]interface{})["created_at"].(string)
		require.GreaterOrEqual(t, prev, cur)
	}
}

func TestTodoListUserFilterUnderOwnerScope(t *testing.T) {
	s := newTestServer(t)
	mine := s.login("a@example.com")
	theirs := s.login("b@example.com")
	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": "mine"}, mine)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := s.do(http.MethodPost, "/api/todo", map[string]string{"title": "theirs"}, theirs)
	require.Equal(t, http.StatusCreated, w.Code)

	me := decode(t, s.do(http.MethodGet, "/api/me", nil, mine))
	other := decode(t, s.do(http.MethodGet, "/api/me", nil, theirs))
	myID := int64(me["id"].(float64))
	otherID := int64(other["id"].(float64))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/todo?user=%d", otherID), nil, mine)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.EqualValues(t, 0, body["total"])
	require.Empty(t, body["data"])
	require.Contains(t, w.Body.String(), `"data":[]`)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/todo?user=%d,%d", myID, otherID), nil, mine)
	body = decode(t, w)
	require.EqualValues(t, 3, body["total"])
	for _, item := range body["data"].([]interface{}) {
		require.EqualValues(t, myID, item.(map[string]interface{})["user_id"])
	}
}
