// Package testhelpers provides shared helpers for transport-level tests: line
// clients over TCP and WebSocket, and small HTTP assertions.
package testhelpers

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestOrigin is the Origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:8080"

const readTimeout = 2 * time.Second

// LineClient is a line protocol peer used to drive a server from tests.
type LineClient interface {
	Send(line string) error
	// Next returns the next line from the server, or an error on timeout or
	// closed stream.
	Next() (string, error)
	Close() error
}

// TCPClient is a LineClient over a raw TCP connection.
type TCPClient struct {
	Conn   net.Conn
	reader *bufio.Reader
}

// DialTCP connects to a line protocol listener.
func DialTCP(t *testing.T, addr string) *TCPClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", addr, err)
	}
	c := &TCPClient{Conn: conn, reader: bufio.NewReader(conn)}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (c *TCPClient) Send(line string) error {
	_, err := c.Conn.Write([]byte(line + "\n"))
	return err
}

func (c *TCPClient) Next() (string, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return "", err
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *TCPClient) Close() error {
	return c.Conn.Close()
}

// WSClient is a LineClient over a WebSocket, one frame per line.
type WSClient struct {
	Conn *websocket.Conn
}

// ConnectWebSocket dials url with the given Origin header and returns the
// connection and the handshake response status code.
func ConnectWebSocket(url, origin string) (*websocket.Conn, int, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	status := 0
	if resp != nil {
		status = resp.StatusCode
		_ = resp.Body.Close()
	}
	return conn, status, err
}

// DialWebSocket connects with TestOrigin and fails the test on error.
func DialWebSocket(t *testing.T, url string) *WSClient {
	t.Helper()
	conn, _, err := ConnectWebSocket(url, TestOrigin)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket %s: %v", url, err)
	}
	c := &WSClient{Conn: conn}
	t.Cleanup(func() { _ = c.Conn.Close() })
	return c
}

func (c *WSClient) Send(line string) error {
	return c.Conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *WSClient) Next() (string, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return "", err
	}
	_, data, err := c.Conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close sends a normal closure frame and drops the connection.
func (c *WSClient) Close() error {
	err := c.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return c.Conn.Close()
}

// Expect reads lines until one contains substr and returns it.
func Expect(t *testing.T, c LineClient, substr string) string {
	t.Helper()
	for {
		line, err := c.Next()
		if err != nil {
			t.Fatalf("No line containing %q: %v", substr, err)
		}
		if strings.Contains(line, substr) {
			return line
		}
	}
}

// Join completes name negotiation for c.
func Join(t *testing.T, c LineClient, name string) {
	t.Helper()
	Expect(t, c, "Please enter your username:")
	if err := c.Send(name); err != nil {
		t.Fatalf("Failed to send username: %v", err)
	}
	Expect(t, c, "Start chatting!")
}

// MakeRequest executes an HTTP request with a 5 second timeout.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	if contentType := resp.Header.Get("Content-Type"); contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}
