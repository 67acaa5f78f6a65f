// Package middleware contains the echo middleware of the API: JWT
// authentication and role checks, the Redis response cache and rate
// limiter, and request metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/utils"
)

// JWTAuth validates a Bearer access token and stores its subject and
// role in the context.  With enabled false it lets every request through
// untouched, which keeps the API public as it has always been.
func JWTAuth(secret string, enabled bool) echo.MiddlewareFunc {
	if !enabled {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxEmail, claims.Subject)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
