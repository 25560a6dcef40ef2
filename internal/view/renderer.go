package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"
)

// Renderer is the echo.Renderer for the page templates.  Templates are
// parsed from source on construction and again on every Reload; a failed
// reload keeps the previous set.
type Renderer struct {
	mu       sync.RWMutex
	tmpl     *template.Template
	source   fs.FS
	funcs    template.FuncMap
	minifier *minify.M
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every *.html file at the root of source.  The sprig
// function map is available together with "asset", which resolves a
// versioned static URL.
func NewRenderer(source fs.FS, assets *Assets, minifyOutput bool) (*Renderer, error) {
	funcs := sprig.FuncMap()
	funcs["asset"] = assets.URL

	r := &Renderer{source: source, funcs: funcs}
	if minifyOutput {
		m := minify.New()
		m.AddFunc("text/html", minhtml.Minify)
		m.AddFunc("text/css", mincss.Minify)
		m.AddFunc("application/javascript", minjs.Minify)
		r.minifier = m
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses the templates from source.
func (r *Renderer) Reload() error {
	tmpl, err := template.New("").Funcs(r.funcs).ParseFS(r.source, "*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

// Render executes the named template into a buffer first so a failing
// template never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if r.minifier != nil {
		var out bytes.Buffer
		if err := r.minifier.Minify("text/html", &out, bytes.NewReader(buf.Bytes())); err == nil {
			_, err = out.WriteTo(w)
			return err
		}
	}
	_, err := buf.WriteTo(w)
	return err
}
