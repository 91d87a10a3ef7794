package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/response"
)

func currentUser(c *gin.Context) *model.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// bindJSON decodes the body into obj. An empty body leaves obj zero valued
// so field validation reports what is missing.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	response.Error(c, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func parseTodoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, "Todo not found")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, desc := classify(err)
	if d := appErr.Description(err); d != "" {
		desc = d
	}
	var userID int64
	if user := currentUser(c); user != nil {
		userID = user.ID
	}
	fields := []zap.Field{
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int64("user_id", userID),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logutil.GetLogger(c.Request.Context()).Error("request failed", fields...)
	} else {
		logutil.GetLogger(c.Request.Context()).Debug("request rejected", fields...)
	}
	response.Error(c, status, desc)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, appErr.ErrConflict):
		return http.StatusBadRequest, "Resource already exists"
	case errors.Is(err, appErr.ErrUnauthorized):
		return http.StatusUnauthorized, "Login required"
	case errors.Is(err, appErr.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, appErr.ErrNotFound):
		return http.StatusNotFound, "Todo not found"
	case errors.Is(err, appErr.ErrTooMany):
		return http.StatusTooManyRequests, "Too many requests, retry later"
	}
	return http.StatusInternalServerError, "Internal server error"
}
