package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camera-overlay/internal/view"
)

// StaticHandler serves the in-memory page assets under /static/*.
type StaticHandler struct {
	Assets *view.Assets
	Debug  bool // disables browser caching
}

// Serve writes the asset named by the wildcard.  Requests carrying the
// current version hash are cacheable forever; anything else revalidates.
func (h *StaticHandler) Serve(c echo.Context) error {
	asset, ok := h.Assets.Get(c.Param("*"))
	if !ok {
		return echo.ErrNotFound
	}

	etag := `"` + asset.Hash + `"`
	hdr := c.Response().Header()
	hdr.Set("ETag", etag)
	switch {
	case h.Debug:
		hdr.Set("Cache-Control", "no-store")
	case c.QueryParam("v") == asset.Hash:
		hdr.Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		hdr.Set("Cache-Control", "no-cache")
	}

	if match := c.Request().Header.Get("If-None-Match"); match == etag && !h.Debug {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, asset.ContentType, asset.Body)
}
