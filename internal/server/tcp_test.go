package server

import (
	"net"
	"testing"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
	"github.com/stretchr/testify/require"
)

// loopback returns the server side of a fresh loopback TCP connection as a
// lineConn, and the raw client side.
func loopback(t *testing.T) (*lineConn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
		close(accepted)
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	serverSide, ok := <-accepted
	require.True(t, ok)

	conn := newLineConn(serverSide, time.Second)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = client.Close()
	})
	return conn, client
}

func TestLineConn_Framing(t *testing.T) {
	req := require.New(t)
	conn, client := loopback(t)

	// Given CRLF and LF terminated lines and a final unterminated one
	_, err := client.Write([]byte("hello\r\nworld\n\ntail"))
	req.NoError(err)
	req.NoError(client.Close())

	// Then each line arrives without its terminator and EOF follows
	req.Equal(chat.Line("hello"), conn.ReadLine())
	req.Equal(chat.Line("world"), conn.ReadLine())
	req.Equal(chat.Line(""), conn.ReadLine())
	req.Equal(chat.Line("tail"), conn.ReadLine())
	req.Equal(chat.EndOfStream(), conn.ReadLine())
	req.Equal(chat.EndOfStream(), conn.ReadLine())
}

func TestLineConn_Keeps_Unicode(t *testing.T) {
	req := require.New(t)
	conn, client := loopback(t)

	_, err := client.Write([]byte("héllo wörld ✓\n"))
	req.NoError(err)

	req.Equal(chat.Line("héllo wörld ✓"), conn.ReadLine())
}

func TestLineConn_Close_Unblocks_Reader(t *testing.T) {
	req := require.New(t)
	conn, _ := loopback(t)

	result := make(chan chat.ReadResult, 1)
	go func() { result <- conn.ReadLine() }()

	time.Sleep(20 * time.Millisecond)
	req.NoError(conn.Close())
	// A second close is harmless
	_ = conn.Close()

	select {
	case res := <-result:
		req.Equal(chat.ReadEOF, res.Status)
	case <-time.After(time.Second):
		t.Fatal("ReadLine still blocked after Close")
	}
}

func TestLineConn_WriteLine(t *testing.T) {
	req := require.New(t)
	conn, client := loopback(t)

	req.NoError(conn.WriteLine("[12:00:00] alice: hi"))

	buf := make([]byte, 64)
	req.NoError(client.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := client.Read(buf)
	req.NoError(err)
	req.Equal("[12:00:00] alice: hi\n", string(buf[:n]))
	req.NotEmpty(conn.RemoteAddr())
}

func TestLineConn_Write_After_Close_Fails(t *testing.T) {
	conn, _ := loopback(t)
	require.NoError(t, conn.Close())
	require.Error(t, conn.WriteLine("late"))
}
