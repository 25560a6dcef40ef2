// Package web holds the page template and browser assets compiled into the
// binary.
package web

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed static
var Static embed.FS
