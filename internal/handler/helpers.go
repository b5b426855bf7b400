package handler

import (
	"net/http"

	"backend/internal/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail writes the standard error envelope for a service error, mapping the
// error code to the HTTP status.
func fail(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, string(apperror.CodeOf(err)), err.Error()))
}

// badRequest writes a 400 for malformed request payloads.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, string(apperror.CodeValidation), msg))
}

// actorID returns the authenticated user ID set by the auth middleware.
func actorID(c *gin.Context) string {
	if id, ok := c.Get("userID"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
