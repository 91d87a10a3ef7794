package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/response"
)

type RouterDeps struct {
	Auth  *AuthHandler
	Todos *TodoHandler
	// AuthRateLimit throttles register/login per client; 0 disables it.
	AuthRateLimit time.Duration
}

// RegisterRoutes mounts the API on api. Session loading is expected to run
// before these handlers.
func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"ok": true})
	})

	limited := api.Group("")
	limited.Use(middleware.RateLimit(deps.AuthRateLimit))
	limited.POST("/register", deps.Auth.Register)
	limited.POST("/login", deps.Auth.Login)
	api.GET("/logout", deps.Auth.Logout)

	authGroup := api.Group("")
	authGroup.Use(middleware.RequireLogin())
	authGroup.GET("/me", deps.Auth.Me)
	authGroup.GET("/todo", deps.Todos.List)
	authGroup.POST("/todo", deps.Todos.Create)
	authGroup.GET("/todo/:id", deps.Todos.Get)
	authGroup.PUT("/todo/:id", deps.Todos.Update)
	authGroup.DELETE("/todo/:id", deps.Todos.Delete)
}
