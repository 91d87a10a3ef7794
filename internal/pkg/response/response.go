package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func Error(c *gin.Context, status int, description string) {
	c.JSON(status, ErrorBody{
		Code:        status,
		Name:        http.StatusText(status),
		Description: description,
	})
}

func Abort(c *gin.Context, status int, description string) {
	Error(c, status, description)
	c.Abort()
}
