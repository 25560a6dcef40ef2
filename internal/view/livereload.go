package view

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// LiveReloadPath is where browsers open the reload websocket in debug mode.
const LiveReloadPath = "/__livereload"

// LiveReloader keeps the websocket connections of open pages and tells them
// to reload after a template change.
type LiveReloader struct {
	clients  map[*websocket.Conn]bool
	lock     sync.Mutex
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
	closed   bool
}

// NewLiveReloader returns a reloader with no clients.  Any origin may
// connect; the endpoint is only mounted in debug mode.
func NewLiveReloader() *LiveReloader {
	return &LiveReloader{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and registers the connection until the
// browser goes away.
func (lr *LiveReloader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// wg.Add stays under the lock and after the closed check so it never
	// races the Wait in Close
	lr.lock.Lock()
	if lr.closed {
		lr.lock.Unlock()
		conn.Close()
		return
	}
	lr.clients[conn] = true
	lr.wg.Add(1)
	lr.lock.Unlock()

	go func() {
		defer lr.wg.Done()
		defer lr.drop(conn)

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (lr *LiveReloader) drop(conn *websocket.Conn) {
	lr.lock.Lock()
	delete(lr.clients, conn)
	lr.lock.Unlock()
	conn.Close()
}

// BroadcastReload sends "reload" to every client, dropping those that fail.
func (lr *LiveReloader) BroadcastReload() {
	lr.lock.Lock()
	defer lr.lock.Unlock()

	for conn := range lr.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			conn.Close()
			delete(lr.clients, conn)
		}
	}
}

// Clients reports the number of connected pages.
func (lr *LiveReloader) Clients() int {
	lr.lock.Lock()
	defer lr.lock.Unlock()
	return len(lr.clients)
}

// Close disconnects every client, refuses new ones and waits for the
// readers to exit.
func (lr *LiveReloader) Close() {
	lr.lock.Lock()
	lr.closed = true
	for conn := range lr.clients {
		conn.Close()
	}
	lr.lock.Unlock()
	lr.wg.Wait()
}
