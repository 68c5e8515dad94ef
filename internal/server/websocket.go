package server

import (
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
	"github.com/gorilla/websocket"
)

// wsConn adapts a WebSocket to the line protocol. Every server line is one text
// frame; an incoming frame carrying several lines is split and replayed one line
// at a time.
type wsConn struct {
	conn         *websocket.Conn
	addr         string
	writeTimeout time.Duration
	pending      []string

	closeOnce sync.Once
	closeErr  error
}

func newWSConn(conn *websocket.Conn, addr string, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, addr: addr, writeTimeout: writeTimeout}
}

func (c *wsConn) ReadLine() chat.ReadResult {
	for len(c.pending) == 0 {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return classifyReadError(err)
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		text := strings.TrimSuffix(string(data), "\n")
		for _, line := range strings.Split(text, "\n") {
			c.pending = append(c.pending, strings.TrimSuffix(line, "\r"))
		}
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return chat.Line(line)
}

func classifyReadError(err error) chat.ReadResult {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived) {
		return chat.EndOfStream()
	}
	if errors.Is(err, net.ErrClosed) || isExpectedCloseError(err) {
		return chat.EndOfStream()
	}
	return chat.Failure(err)
}

func (c *wsConn) WriteLine(line string) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// Close sends a normal closure frame when the peer is still listening and then
// drops the socket, which unblocks a pending ReadLine.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *wsConn) RemoteAddr() string {
	return c.addr
}
