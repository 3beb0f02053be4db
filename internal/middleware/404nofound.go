package middleware

import (
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		errors.ErrorResponse(c, code.ErrorNotFound.WithDetails(c.Request.Method+" "+c.Request.URL.Path))
	}
}
