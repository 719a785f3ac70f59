// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"errors"
	"net/http"

	"parley/internal/services"
	"parley/internal/transport/httpdto"
	parley_errors "parley/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// httpStatus maps domain error kinds onto response codes. Missing resources
// report as bad requests rather than 404s, so probing ids reveals nothing.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, parley_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, parley_errors.ErrNotFound):
		return http.StatusBadRequest
	case errors.Is(err, parley_errors.ErrUnauthenticated), errors.Is(err, parley_errors.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, parley_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, parley_errors.ErrConflict), errors.Is(err, parley_errors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := httpStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, httpdto.NewErrorResponse(message))
}

// actor returns the authenticated user id set by the auth middleware.
func actor(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, c.Param(name), name)
}

func parseUUID(c *gin.Context, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
