package middleware

import "github.com/labstack/echo/v4"

// Context keys set by the middleware in this package.
const (
	ctxSubject   = "subject"
	ctxRole      = "role"
	ctxRequestID = "request_id"
)

// subject returns the authenticated token subject, or "anon" when the
// request carried no token.
func subject(c echo.Context) string {
	if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
		return s
	}
	return "anon"
}
