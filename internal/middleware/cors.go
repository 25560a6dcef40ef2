package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CORS wraps echo's CORS middleware.  When any origin is allowed the
// Access-Control-Allow-Origin header is sent on every response, including
// same-origin requests and requests without an Origin header.
func CORS(allowOrigins []string) echo.MiddlewareFunc {
	cors := echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		MaxAge:       600,
	})
	if !slices.Contains(allowOrigins, "*") {
		return cors
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := cors(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderOrigin) == "" {
				c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
			}
			return h(c)
		}
	}
}
