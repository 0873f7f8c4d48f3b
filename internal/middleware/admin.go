package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminSecretHeader carries the shared secret for admin endpoints.
const AdminSecretHeader = "X-Admin-Secret"

// RequireAdmin returns a middleware that gates admin endpoints behind a
// shared-secret header. A missing server-side secret is a deployment fault
// and yields 500, never a false accept. The guard runs before any request
// parameter is parsed, so unauthenticated input never reaches a handler.
func RequireAdmin(secret string) echo.MiddlewareFunc {
	secret = strings.TrimSpace(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, "admin access is not configured")
			}

			supplied := strings.TrimSpace(c.Request().Header.Get(AdminSecretHeader))
			if supplied == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing admin credentials")
			}
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin credentials")
			}

			return next(c)
		}
	}
}
