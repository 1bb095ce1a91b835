package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/damacus/iron-drive/internal/utils"
)

// CSRF guards writes that carry the session cookie with a double-submit token
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token",
		CookieName:     "csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				return false
			}

			_, err := c.Cookie(utils.CookieName)
			return err != nil
		},
	})
}

// CSRFTokenHeader echoes the request's CSRF token in the X-CSRF-Token response header.
// It must run after CSRF.
func CSRFTokenHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok && token != "" {
				c.Response().Header().Set("X-CSRF-Token", token)
			}
			return next(c)
		}
	}
}
