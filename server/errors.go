package server

import (
	"errors"
	"net/http"

	"github.com/existflow/sprintplan/internal/capacity"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Warning *capacity.Warning `json:"warning,omitempty"`
}

// errorStatus maps planner errors to HTTP status codes
func errorStatus(err error) int {
	var warning *capacity.Warning
	switch {
	case errors.As(err, &warning):
		return http.StatusConflict
	case errors.Is(err, store.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	status := errorStatus(err)
	body := errorResponse{Error: err.Error()}
	errors.As(err, &body.Warning)

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
