// This file renders the single HTML page.  The overlay texts are written into
// the markup directly; the page script refreshes them from /api/texts.

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/camera-overlay/internal/model"
)

// IndexTemplate is the template rendered for the root path.
const IndexTemplate = "index.html"

// PageHandler renders the overlay page.  LiveReloadPath is empty unless the
// server runs in debug mode with a live reload endpoint.
type PageHandler struct {
	Title          string
	LiveReloadPath string
}

// PageData is the template context of index.html.
type PageData struct {
	Title          string
	Texts          model.OverlayTexts
	LiveReload     bool
	LiveReloadPath string
}

// Index renders index.html through the echo renderer.
func (h *PageHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, IndexTemplate, PageData{
		Title:          h.Title,
		Texts:          model.DefaultOverlayTexts(),
		LiveReload:     h.LiveReloadPath != "",
		LiveReloadPath: h.LiveReloadPath,
	})
}
