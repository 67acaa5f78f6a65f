package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/model"
)

// Validator adapts validator/v10 to echo's Validator interface so
// handlers can call c.Validate on bound request bodies.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New()} }

func (cv *Validator) Validate(i any) error {
	if err := cv.v.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": message}.  Internal errors are logged
// and reported with a generic message.
func fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, echo.Map{"error": "internal server error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// bindAndValidate decodes the request into dst and runs its validation
// tags.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", model.ErrValidation)
	}
	return c.Validate(dst)
}

// queryLimit reads the result cap from ?count= (or ?limit=).  Absent
// means no cap.
func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("count")
	if raw == "" {
		raw = c.QueryParam("limit")
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: count must be a non-negative integer", model.ErrValidation)
	}
	return n, nil
}
