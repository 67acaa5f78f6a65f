package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	ctxEmail = "email"
	ctxRole  = "role"
)

// Subject returns the email of the authenticated caller, or "anon" when
// the request carries no verified token.
func Subject(c echo.Context) string {
	if s, ok := c.Get(ctxEmail).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// Caller returns the verified email of the caller.  ok is false when no
// token was checked, which is always the case with auth disabled.
func Caller(c echo.Context) (email string, ok bool) {
	email, _ = c.Get(ctxEmail).(string)
	return email, email != ""
}

// Role returns the role claim of the authenticated caller.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
