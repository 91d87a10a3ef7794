package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

type fakeResolver map[string]*model.User

func (f fakeResolver) ResolveSession(_ context.Context, sid string) (*model.User, error) {
	if sid == "broken" {
		return nil, errors.New("store down")
	}
	u, ok := f[sid]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return u, nil
}

func newSessionEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), LoadUser(fakeResolver{"good": {ID: 3, Email: "a@b.com"}}, "session"))
	r.GET("/open", func(c *gin.Context) {
		_, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": ok})
	})
	r.GET("/closed", RequireLogin(), func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	return r
}

func TestRequireLogin(t *testing.T) {
	r := newSessionEngine()
	tests := []struct {
		name   string
		cookie string
		code   int
	}{
		{name: "no cookie", code: http.StatusUnauthorized},
		{name: "unknown session", cookie: "nope", code: http.StatusUnauthorized},
		{name: "store failure", cookie: "broken", code: http.StatusUnauthorized},
		{name: "live session", cookie: "good", code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/closed", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusUnauthorized {
				require.Contains(t, w.Body.String(), `"name":"Unauthorized"`)
			}
		})
	}
}

func TestLoadUserAnonymous(t *testing.T) {
	r := newSessionEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user":false}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newSessionEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	require.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
