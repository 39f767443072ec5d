package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusinessRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateResource), errors.Is(err, domain.ErrOptimisticLock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrResourceNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, errorResponse{Error: msg})
}
