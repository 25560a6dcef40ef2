package router // package router defines how HTTP routes are registered

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camera-overlay/internal/handler"
	"github.com/iliyamo/camera-overlay/internal/view"
)

// Routes bundles the handlers and per-route middleware the server exposes.
// LiveReload is nil outside debug mode, in which case its endpoint is not
// registered and requests to it fall through to 404.
type Routes struct {
	Page          *handler.PageHandler
	Static        *handler.StaticHandler
	LiveReload    http.Handler
	APIMiddleware []echo.MiddlewareFunc // applied to /api/texts only (cache, rate limit)
}

// getHead lists the methods every read-only route answers.
var getHead = []string{http.MethodGet, http.MethodHead}

// RegisterRoutes maps every path on the provided Echo instance.  API
// middleware goes on the route, not the group: group middleware makes echo
// register catch-all routes that turn 405s on /api paths into 404s.
func RegisterRoutes(e *echo.Echo, r Routes) {
	// Liveness probe for load balancers and monitoring.
	e.Match(getHead, "/healthz", handler.Health)

	// The overlay page and its assets.
	e.Match(getHead, "/", r.Page.Index)
	e.Match(getHead, view.StaticPrefix+"*", r.Static.Serve)

	// Read-only API consumed by the page script.
	api := e.Group("/api")
	api.Match(getHead, "/texts", handler.Texts, r.APIMiddleware...)

	if r.LiveReload != nil {
		e.GET(view.LiveReloadPath, echo.WrapHandler(r.LiveReload))
	}
}
