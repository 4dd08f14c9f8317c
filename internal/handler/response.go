package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// writeError maps service error kinds to a status and body. Internal
// failures are reported with fallback and the cause goes to the request log.
func writeError(c echo.Context, err error, fallback string) error {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_error"
	}
	msg := fallback
	if status != http.StatusInternalServerError && status != http.StatusBadGateway {
		msg = detail(err)
	} else {
		c.Set("handler_error", err.Error())
	}
	return c.JSON(status, NewErrorResponse(code, msg))
}

// detail drops the "kind: " prefix that service errors carry.
func detail(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		return s[i+2:]
	}
	return s
}

func currentUID(c echo.Context) uint64 {
	uid, _ := c.Get("uid").(uint64)
	return uid
}

func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", msg))
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ID accepts a JSON number or a numeric string.
type ID uint64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}
