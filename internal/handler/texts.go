package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"

	"github.com/iliyamo/camera-overlay/internal/model"
)

// textsBody is encoded once; echo's debug mode and ?pretty must not change
// the bytes clients receive.
var textsBody = mustMarshal(model.DefaultOverlayTexts())

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Texts returns the overlay strings as JSON.  The content is fixed, so the
// handler ignores the request and cannot fail.
func Texts(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, textsBody)
}
