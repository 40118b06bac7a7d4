package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates an HS256 Bearer token
// and stores its subject and role claims in the context under "subject"
// and "role".  The reservations API is usually called by the front desk
// application, whose tokens carry role "staff" or "admin".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return deny(c, http.StatusUnauthorized, "Se requiere un token de acceso.")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return deny(c, http.StatusUnauthorized, "Token de acceso inválido.")
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return deny(c, http.StatusUnauthorized, "Token de acceso inválido.")
			}

			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				c.Set(ctxSubject, sub)
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(ctxRole, role)
			}
			return next(c)
		}
	}
}

// deny writes the API's failure envelope.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg, "data": nil})
}
