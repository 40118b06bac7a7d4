package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/apperror"
)

const (
	msgBadBody = "El cuerpo de la solicitud es inválido."
	msgBadID   = "El identificador es inválido."
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func ok(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: msg, Data: data})
}

// fail writes err as a failure envelope.  Errors that are not
// *apperror.Failure never reach the client as text.
func fail(c echo.Context, err error) error {
	f, isFailure := apperror.As(err)
	if !isFailure {
		f = apperror.Storage(err)
	}
	return c.JSON(statusFor(f.Kind), Envelope{Success: false, Message: f.Message})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: msg})
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(k apperror.Kind) int {
	switch k {
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.InvalidState, apperror.Conflict:
		return http.StatusConflict
	case apperror.ValidationFailure:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
