package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/response"
	"github.com/xxxsen/mtodo/internal/service"
)

type CookieOptions struct {
	Name   string
	MaxAge int
	Secure bool
}

type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieOptions
}

func NewAuthHandler(auth *service.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.Credentials
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.auth.Register(c.Request.Context(), req); err != nil {
		handleError(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.Credentials
	if !bindJSON(c, &req) {
		return
	}
	_, sid, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setCookie(c, sid, h.cookie.MaxAge)
	response.Message(c, http.StatusOK, "User logged in successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		handleError(c, err)
		return
	}
	h.setCookie(c, "", -1)
	response.Message(c, http.StatusOK, "User logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, currentUser(c).ToMap())
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
