// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "aura/internal/log"
)

// WebSocketTransport broadcasts frames as JSON to every client
// connected to /frames. Frames are queued on a bounded channel and
// dropped when the queue is full so a slow client never stalls the
// frame loop.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
	closeOnce sync.Once
	closed    bool
}

// NewWebSocketTransport creates the transport and starts listening on
// addr immediately.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Geometry frames carry no secrets; any origin may view.
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}
	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", wst.handleFrames)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocket: serving frames on ws://%s/frames", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocket: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

func (wst *WebSocketTransport) handleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocket: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocket: client connected, total: %d", total)

	go func() {
		// Block until the client goes away; incoming messages are ignored.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.clientsMu.Lock()
		delete(wst.clients, conn)
		total := len(wst.clients)
		wst.clientsMu.Unlock()
		conn.Close()
		applog.Infof("WebSocket: client disconnected, total: %d", total)
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(data); err != nil {
				applog.Debugf("WebSocket: dropping client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues a frame for broadcast. When the queue is full the frame
// is dropped; the next one supersedes it anyway.
func (wst *WebSocketTransport) Send(data any) error {
	wst.clientsMu.Lock()
	if wst.closed {
		wst.clientsMu.Unlock()
		return nil
	}
	select {
	case wst.broadcast <- data:
	default:
	}
	wst.clientsMu.Unlock()
	return nil
}

// Close shuts down the server and disconnects every client.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocket: closing server")

		wst.clientsMu.Lock()
		wst.closed = true
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		close(wst.broadcast)
		wst.clientsMu.Unlock()
		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
