// Package api holds the response envelope shared by every JSON endpoint.
package api

import (
	"github.com/gin-gonic/gin"
)

// Envelope wraps every JSON response. Exactly one of Error and Data is set.
type Envelope struct {
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
}

// Success writes data with the given status
func Success(c *gin.Context, status int, data interface{}) {
	noCache(c)
	c.JSON(status, Envelope{Data: data, Success: true})
}

// Failure writes an error code with the given status and aborts the chain
func Failure(c *gin.Context, status int, code string) {
	noCache(c)
	c.AbortWithStatusJSON(status, Envelope{Error: code, Success: false})
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
