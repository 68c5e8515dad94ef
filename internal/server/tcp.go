package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
)

// lineConn frames a TCP stream as newline-delimited lines. A trailing "\r" is
// stripped so telnet-style clients work unchanged.
type lineConn struct {
	conn         net.Conn
	reader       *bufio.Reader
	writeTimeout time.Duration
	addr         string

	closeOnce sync.Once
	closeErr  error
}

func newLineConn(conn net.Conn, writeTimeout time.Duration) *lineConn {
	return &lineConn{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		writeTimeout: writeTimeout,
		addr:         conn.RemoteAddr().String(),
	}
}

func (c *lineConn) ReadLine() chat.ReadResult {
	line, err := c.reader.ReadString('\n')
	if err == nil {
		return chat.Line(trimEOL(line))
	}
	if errors.Is(err, io.EOF) {
		// The final unterminated line still counts; the next read reports EOF.
		if line != "" {
			return chat.Line(trimEOL(line))
		}
		return chat.EndOfStream()
	}
	if errors.Is(err, net.ErrClosed) {
		return chat.EndOfStream()
	}
	return chat.Failure(err)
}

func (c *lineConn) WriteLine(line string) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(c.conn, line+"\n")
	return err
}

func (c *lineConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *lineConn) RemoteAddr() string {
	return c.addr
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
