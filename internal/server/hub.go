package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
	"github.com/samber/lo"
)

// Hub tracks every live connection, whatever its transport, so that shutdown
// can close them and wait for their handlers to finish.
type Hub struct {
	log     *slog.Logger
	mu      sync.Mutex
	conns   map[chat.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, conns: make(map[chat.Conn]struct{})}
}

// Go runs serve for conn on its own goroutine and tracks the connection until
// serve returns. It refuses, closing conn, once Shutdown has started.
func (h *Hub) Go(conn chat.Conn, serve func(chat.Conn)) bool {
	h.mu.Lock()
	if h.closing {
		h.mu.Unlock()
		_ = conn.Close()
		h.log.Debug("Refused connection during shutdown", "addr", conn.RemoteAddr())
		return false
	}
	h.conns[conn] = struct{}{}
	count := len(h.conns)
	h.wg.Add(1)
	h.mu.Unlock()

	h.log.Debug("Connection accepted", "addr", conn.RemoteAddr(), "connections", count)

	go func() {
		defer h.wg.Done()
		defer h.forget(conn)
		serve(conn)
	}()
	return true
}

func (h *Hub) forget(conn chat.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	count := len(h.conns)
	h.mu.Unlock()
	h.log.Debug("Connection finished", "addr", conn.RemoteAddr(), "connections", count)
}

// Count returns the number of tracked connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every tracked connection and waits for the handlers to tear
// down, or returns context.DeadlineExceeded once timeout has elapsed.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	h.closing = true
	conns := lo.Keys(h.conns)
	h.mu.Unlock()

	h.log.Info("Closing client connections", "connections", len(conns))
	for _, conn := range conns {
		if err := conn.Close(); err != nil && !isExpectedCloseError(err) {
			h.log.Warn("Error closing client connection", "addr", conn.RemoteAddr(), "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some sessions may still be running", "timeout", timeout)
		return context.DeadlineExceeded
	}
}
