package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts one connection and runs script against it.
func fakeServer(t *testing.T, script func(r *bufio.Reader, w net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(bufio.NewReader(conn), conn)
	}()
	return ln.Addr().String()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestClient(addr string) *Client {
	return New(Config{ServerAddr: addr, Linger: time.Second}, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestClient_Relays_Until_Quit(t *testing.T) {
	req := require.New(t)
	received := make(chan []string, 1)
	addr := fakeServer(t, func(r *bufio.Reader, w net.Conn) {
		_, _ = io.WriteString(w, "Welcome to ChatServer!\nPlease enter your username:\n")
		var got []string
		for len(got) < 3 {
			line, err := r.ReadString('\n')
			if err != nil {
				break
			}
			got = append(got, strings.TrimSuffix(line, "\n"))
		}
		_, _ = io.WriteString(w, "Goodbye, alice :(\n")
		received <- got
	})

	var out syncBuffer
	in := strings.NewReader("alice\n\n   \nhello\n/quit\nnever sent\n")

	err := newTestClient(addr).Run(context.Background(), in, &out)

	req.NoError(err)
	// Then blank lines were skipped and nothing after /quit was sent
	req.Equal([]string{"alice", "hello", "/quit"}, <-received)
	req.Contains(out.String(), "Please enter your username:\n")
	req.Contains(out.String(), "Goodbye, alice :(\n")
	req.True(strings.HasSuffix(out.String(), "Disconnected from server.\n"))
}

func TestClient_Stops_When_Server_Closes(t *testing.T) {
	req := require.New(t)
	addr := fakeServer(t, func(_ *bufio.Reader, w net.Conn) {
		_, _ = io.WriteString(w, "Welcome to ChatServer!\n")
	})

	// Given input that never ends
	in, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	var out syncBuffer

	done := make(chan error, 1)
	go func() { done <- newTestClient(addr).Run(context.Background(), in, &out) }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("client kept running after the server closed")
	}
	req.Contains(out.String(), "Welcome to ChatServer!")
}

func TestClient_End_Of_Input_Half_Closes(t *testing.T) {
	req := require.New(t)
	sawEOF := make(chan bool, 1)
	addr := fakeServer(t, func(r *bufio.Reader, w net.Conn) {
		_, _ = r.ReadString('\n')
		_, err := r.ReadString('\n')
		sawEOF <- err == io.EOF
		_, _ = io.WriteString(w, "bye\n")
	})

	var out syncBuffer
	err := newTestClient(addr).Run(context.Background(), strings.NewReader("alice\n"), &out)

	req.NoError(err)
	req.True(<-sawEOF)
	req.Contains(out.String(), "bye\n")
}

func TestClient_Dial_Failure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	var out syncBuffer
	err = newTestClient(addr).Run(context.Background(), strings.NewReader(""), &out)

	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{line: "[10:00:00] alice: hi", want: kindChat},
		{line: "[10:00:00] bob whispered: secret", want: kindWhisper},
		{line: "[10:00:00] Whispered to carol: secret", want: kindWhisper},
		{line: "[10:00:00] alice joined the chat!", want: kindEvent},
		{line: "[10:00:00] alice left the chat.", want: kindEvent},
		{line: "[10:00:00] alice is now known as dave", want: kindEvent},
		{line: "User 'ghost' is not found.", want: kindError},
		{line: "Username 'dave' is already taken.", want: kindError},
		{line: "Unknown command: /dance. Type /help for available commands.", want: kindError},
		{line: "Usage: /nick <new_username>", want: kindError},
		{line: "Please enter your username:", want: kindPlain},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, classify(tt.line))
		})
	}
}

func TestRender_Without_Colours_Is_Verbatim(t *testing.T) {
	require.Equal(t, "[10:00:00] alice: hi", render("[10:00:00] alice: hi", false))
}
