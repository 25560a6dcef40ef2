package view

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

// StaticPrefix is the URL path assets are served under.
const StaticPrefix = "/static/"

// Asset is a static file held in memory, ready to serve.
type Asset struct {
	Body        []byte
	ContentType string
	Hash        string // first six hex chars of the md5 of Body
}

// Assets is the read-only set of page assets.  It is built once and never
// mutated, so lookups need no locking.
type Assets struct {
	files map[string]Asset
}

// NewAssets loads every file of fsys.  With minifyOutput set, CSS and
// JavaScript are minified; a file that fails to minify is kept as is.
func NewAssets(fsys fs.FS, minifyOutput bool) (*Assets, error) {
	var m *minify.M
	if minifyOutput {
		m = minify.New()
		m.AddFunc("text/css", mincss.Minify)
		m.AddFunc("application/javascript", minjs.Minify)
	}

	files := map[string]Asset{}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", p, err)
		}

		ext := path.Ext(p)
		if m != nil {
			body = minifyAsset(m, ext, body)
		}
		ctype := mime.TypeByExtension(ext)
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		sum := md5.Sum(body)
		files[p] = Asset{Body: body, ContentType: ctype, Hash: hex.EncodeToString(sum[:])[:6]}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Assets{files: files}, nil
}

func minifyAsset(m *minify.M, ext string, body []byte) []byte {
	var mediatype string
	switch ext {
	case ".css":
		mediatype = "text/css"
	case ".js":
		mediatype = "application/javascript"
	default:
		return body
	}
	var buf bytes.Buffer
	if err := m.Minify(mediatype, &buf, bytes.NewReader(body)); err != nil {
		return body
	}
	return buf.Bytes()
}

// Get returns the asset stored under name, e.g. "script.js".
func (a *Assets) Get(name string) (Asset, bool) {
	asset, ok := a.files[strings.TrimPrefix(name, "/")]
	return asset, ok
}

// URL is the versioned public path of an asset.  Unknown names map to the
// plain path so a typo surfaces as a 404 in the browser, not a render error.
func (a *Assets) URL(name string) string {
	name = strings.TrimPrefix(name, "/")
	if asset, ok := a.files[name]; ok {
		return StaticPrefix + name + "?v=" + asset.Hash
	}
	return StaticPrefix + name
}
