package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStatic = fstest.MapFS{
	"script.js": {Data: []byte("function add(first, second) {\n    return first + second;\n}\nconsole.log(add(1, 2));\n")},
	"style.css": {Data: []byte("body {\n    margin: 0px;\n    color: #ffffff;\n}\n")},
	"logo.bin":  {Data: []byte{0x00, 0x01}},
}

func TestNewAssets(t *testing.T) {
	raw, err := NewAssets(testStatic, false)
	require.NoError(t, err)
	minified, err := NewAssets(testStatic, true)
	require.NoError(t, err)

	for _, name := range []string{"script.js", "style.css"} {
		r, ok := raw.Get(name)
		require.True(t, ok, name)
		m, ok := minified.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, string(testStatic[name].Data), string(r.Body))
		assert.Less(t, len(m.Body), len(r.Body), name)
		assert.NotEqual(t, r.Hash, m.Hash)
		assert.Len(t, m.Hash, 6)
	}

	js, _ := raw.Get("/script.js")
	assert.Contains(t, js.ContentType, "javascript")
	bin, _ := raw.Get("logo.bin")
	assert.Equal(t, "application/octet-stream", bin.ContentType)

	assert.Equal(t, "/static/script.js?v="+js.Hash, raw.URL("script.js"))
	assert.Equal(t, "/static/nope.js", raw.URL("nope.js"))
}

func TestRenderer_RenderAndReload(t *testing.T) {
	assets, err := NewAssets(testStatic, false)
	require.NoError(t, err)
	src := fstest.MapFS{
		"index.html": {Data: []byte(`<title>{{ .Title | default "Fallback" }}</title><script src="{{ asset "script.js" }}"></script>`)},
	}
	r, err := NewRenderer(src, assets, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "index.html", map[string]string{}, nil))
	assert.Contains(t, buf.String(), "<title>Fallback</title>")
	assert.Contains(t, buf.String(), assets.URL("script.js"))

	src["index.html"] = &fstest.MapFile{Data: []byte(`<p>v2</p>`)}
	require.NoError(t, r.Reload())
	buf.Reset()
	require.NoError(t, r.Render(&buf, "index.html", nil, nil))
	assert.Equal(t, "<p>v2</p>", buf.String())

	src["index.html"] = &fstest.MapFile{Data: []byte(`{{ .Broken `)}
	assert.Error(t, r.Reload())
	buf.Reset()
	require.NoError(t, r.Render(&buf, "index.html", nil, nil))
	assert.Equal(t, "<p>v2</p>", buf.String(), "failed reload keeps the previous templates")

	assert.Error(t, r.Render(&buf, "missing.html", nil, nil))
}

func TestRenderer_Minifies(t *testing.T) {
	assets, err := NewAssets(testStatic, true)
	require.NoError(t, err)
	src := fstest.MapFS{
		"index.html": {Data: []byte("<div>\n    <p>   Top Left Text   </p>\n</div>\n")},
	}
	r, err := NewRenderer(src, assets, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "index.html", nil, nil))
	assert.Contains(t, buf.String(), "Top Left Text")
	assert.NotContains(t, buf.String(), "\n")
}

func TestNewRenderer_ParseError(t *testing.T) {
	assets, err := NewAssets(testStatic, false)
	require.NoError(t, err)

	_, err = NewRenderer(fstest.MapFS{"index.html": {Data: []byte(`{{ if }}`)}}, assets, false)
	assert.Error(t, err)
	_, err = NewRenderer(fstest.MapFS{}, assets, false)
	assert.Error(t, err, "no templates at all")
}

func TestLiveReloader(t *testing.T) {
	lr := NewLiveReloader()
	e := echo.New()
	e.GET(LiveReloadPath, echo.WrapHandler(lr))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + LiveReloadPath
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return lr.Clients() == 1 }, time.Second, 10*time.Millisecond)

	lr.BroadcastReload()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.Equal(t, "reload", string(msg))

	lr.Close()
	assert.Equal(t, 0, lr.Clients())
}

func TestLiveReloader_CloseWhileConnecting(t *testing.T) {
	lr := NewLiveReloader()
	srv := httptest.NewServer(lr)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				return
			}
			resp.Body.Close()
			defer conn.Close()
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, _ = conn.ReadMessage()
		}()
	}
	lr.Close()
	wg.Wait()
	assert.Equal(t, 0, lr.Clients())

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connections after Close are dropped")
	assert.Equal(t, 0, lr.Clients())
}

func TestLiveReloader_RejectsPlainHTTP(t *testing.T) {
	lr := NewLiveReloader()
	rec := httptest.NewRecorder()
	lr.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LiveReloadPath, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, lr.Clients())
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte("v1"), 0o644))

	var calls atomic.Int32
	w, err := NewWatcher(dir, func() { calls.Add(1) }, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 100 * time.Millisecond
	w.Start(testContext(t))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(page, []byte("v2"), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one callback")
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), func() {}, zap.NewNop())
	assert.Error(t, err)
}
