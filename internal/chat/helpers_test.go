package chat

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
)

const waitTimeout = time.Second

var errPipeClosed = errors.New("pipe closed")

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

func fixedClock() time.Time {
	return time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)
}

// pipeConn is an in-memory Conn. Lines pushed into in are read by the handler,
// lines written by the handler come out of out.
type pipeConn struct {
	addr      string
	in        chan string
	out       chan string
	closed    chan struct{}
	closeOnce sync.Once
	hangOnce  sync.Once
}

func newPipeConn(addr string) *pipeConn {
	return &pipeConn{
		addr:   addr,
		in:     make(chan string, 64),
		out:    make(chan string, 1024),
		closed: make(chan struct{}),
	}
}

func (c *pipeConn) ReadLine() ReadResult {
	select {
	case line, ok := <-c.in:
		if !ok {
			return EndOfStream()
		}
		return Line(line)
	case <-c.closed:
		return EndOfStream()
	}
}

func (c *pipeConn) WriteLine(line string) error {
	select {
	case <-c.closed:
		return errPipeClosed
	default:
	}
	c.out <- line
	return nil
}

func (c *pipeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *pipeConn) RemoteAddr() string {
	return c.addr
}

// hangup simulates the peer closing its side of the stream.
func (c *pipeConn) hangup() {
	c.hangOnce.Do(func() { close(c.in) })
}

// testClient drives one Handler over a pipeConn.
type testClient struct {
	t       *testing.T
	conn    *pipeConn
	handler *Handler
	done    chan struct{}
}

func connect(t *testing.T, svc *Service) *testClient {
	t.Helper()
	conn := newPipeConn("pipe:" + t.Name())
	c := &testClient{t: t, conn: conn, handler: svc.NewHandler(conn), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		c.handler.Run()
	}()
	t.Cleanup(func() {
		c.conn.hangup()
		<-c.done
	})
	return c
}

func (c *testClient) send(line string) {
	c.conn.in <- line
}

// expect reads lines until one contains substr, skipping unrelated lines.
func (c *testClient) expect(substr string) string {
	c.t.Helper()
	timeout := time.After(waitTimeout)
	last := ""
	for {
		select {
		case line := <-c.conn.out:
			last = line
			if strings.Contains(line, substr) {
				return line
			}
		case <-timeout:
			c.t.Fatalf("no line containing %q; last line: %q", substr, last)
			return ""
		}
	}
}

// expectSilence fails if any line arrives within window.
func (c *testClient) expectSilence(window time.Duration) {
	c.t.Helper()
	select {
	case line := <-c.conn.out:
		c.t.Fatalf("expected no line, got %q", line)
	case <-time.After(window):
	}
}

// expectNone fails if a line containing substr arrives within window.
func (c *testClient) expectNone(substr string, window time.Duration) {
	c.t.Helper()
	deadline := time.After(window)
	for {
		select {
		case line := <-c.conn.out:
			if strings.Contains(line, substr) {
				c.t.Fatalf("unexpected line containing %q: %q", substr, line)
			}
		case <-deadline:
			return
		}
	}
}

func (c *testClient) join(name string) {
	c.t.Helper()
	c.expect("Please enter your username:")
	c.send(name)
	c.expect("Start chatting!")
}

func (c *testClient) waitClosed() {
	c.t.Helper()
	select {
	case <-c.done:
	case <-time.After(waitTimeout):
		c.t.Fatal("handler did not finish")
	}
}

// queued drains everything currently waiting in a session's outbox. It is used
// for sessions that have no writer goroutine.
func queued(s *Session) []string {
	var lines []string
	for {
		select {
		case line := <-s.outbox:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

func newTestSession(addr string) *Session {
	return newSession(addr, 64, 10*time.Millisecond, fixedClock())
}
