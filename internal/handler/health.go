package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the health check endpoint used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Liveness answers GET / with the banner clients of the API check for.
func Liveness(appName, port string) echo.HandlerFunc {
	msg := fmt.Sprintf("%s server is active on port: %s", appName, port)
	return func(c echo.Context) error {
		return c.String(http.StatusOK, msg)
	}
}
