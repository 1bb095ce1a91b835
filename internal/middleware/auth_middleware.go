package middleware

import (
	"net/http"

	"github.com/damacus/iron-drive/internal/services"
	"github.com/damacus/iron-drive/internal/utils"
	"github.com/labstack/echo/v4"
)

var publicPaths = map[string]bool{
	"/health":      true,
	"/metrics":     true,
	"/logout":      true,
	"/auth/code":   true,
	"/auth/verify": true,
}

// AuthMiddleware checks for the IronDrive cookie and resolves the session it seals
func AuthMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skip for public routes
			if publicPaths[c.Request().URL.Path] {
				return next(c)
			}

			cookie, err := c.Cookie(utils.CookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			sess, err := authService.DecryptSession(cookie.Value)
			if err != nil || sess.ID == "" || sess.UserID == "" {
				// Invalid cookie - clear it so the client starts over
				cookie.Value = ""
				cookie.MaxAge = -1
				cookie.Path = "/"
				c.SetCookie(cookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			// Store the session in context for handlers to use
			c.Set(utils.ContextKeySession, sess)

			return next(c)
		}
	}
}
