// Package httpx maps service errors onto stable JSON error responses.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-api/apperr"
)

// Error writes the taxonomy code and client-safe message for err. Internal
// causes go to the log, never to the client.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{
		"code":  apperr.CodeOf(err),
		"error": apperr.MessageOf(err),
	})
}
