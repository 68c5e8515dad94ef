// Package client is a console client for the line protocol: it prints every
// server line and forwards every non-blank input line.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

const quitCommand = "/quit"

type Client struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Linger <= 0 {
		cfg.Linger = 2 * time.Second
	}
	return &Client{cfg: cfg, log: log}
}

// Run connects to the server and relays lines until the user sends /quit,
// input ends, the server closes the stream or ctx is cancelled.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	p := &printer{w: out, colours: c.cfg.Colours}
	p.println(fmt.Sprintf("Connecting to chat server at %s...", c.cfg.ServerAddr))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to server at %s: %w", c.cfg.ServerAddr, err)
	}
	defer conn.Close()
	p.println("Successfully connected to server!")

	received := make(chan struct{})
	go func() {
		defer close(received)
		c.receive(conn, p)
	}()

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan string)
	go scanInput(in, lines, stop)

	for {
		select {
		case <-ctx.Done():
			p.println("Disconnected from server.")
			return nil
		case <-received:
			p.println("Disconnected from server.")
			return nil
		case line, ok := <-lines:
			if !ok {
				c.finish(conn, received)
				p.println("Disconnected from server.")
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := io.WriteString(conn, line+"\n"); err != nil {
				c.log.Warn("Sending failed", "error", err)
				p.println("Disconnected from server.")
				return nil
			}
			if strings.EqualFold(strings.TrimSpace(line), quitCommand) {
				c.finish(conn, received)
				p.println("Disconnected from server.")
				return nil
			}
		}
	}
}

// receive prints server lines until the stream ends.
func (c *Client) receive(conn net.Conn, p *printer) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			p.println(render(strings.TrimRight(line, "\r\n"), p.colours))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				p.println("Connection to server lost: " + err.Error())
			}
			return
		}
	}
}

// finish half-closes the connection so the server sees end of input, then
// gives the server up to the linger time to send its last lines and close.
func (c *Client) finish(conn net.Conn, received <-chan struct{}) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}
	select {
	case <-received:
	case <-time.After(c.cfg.Linger):
		c.log.Debug("Server did not close in time", "linger", c.cfg.Linger)
	}
}

func scanInput(in io.Reader, lines chan<- string, stop <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			return
		}
	}
}

type printer struct {
	mu      sync.Mutex
	w       io.Writer
	colours bool
}

func (p *printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, s)
}
