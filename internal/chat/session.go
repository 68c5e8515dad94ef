package chat

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session represents one connected client: its identity, its outbound queue and
// its quit flag.
//
// The display name is written only by the Registry while it holds its write lock,
// so Name always reflects the session's current registered identity.
type Session struct {
	id          uuid.UUID
	remoteAddr  string
	connectedAt time.Time

	mu   sync.RWMutex
	name string

	outbox          chan string
	deliveryTimeout time.Duration
	done            chan struct{}
	closeOnce       sync.Once
	drained         chan struct{}

	quit atomic.Bool
}

func newSession(remoteAddr string, outboxSize int, deliveryTimeout time.Duration, now time.Time) *Session {
	if outboxSize <= 0 {
		outboxSize = 1
	}
	return &Session{
		id:              uuid.New(),
		remoteAddr:      remoteAddr,
		connectedAt:     now,
		outbox:          make(chan string, outboxSize),
		deliveryTimeout: deliveryTimeout,
		done:            make(chan struct{}),
		drained:         make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// RemoteAddr returns the peer address reported by the transport.
func (s *Session) RemoteAddr() string {
	return s.remoteAddr
}

// ConnectedAt returns the time the connection was accepted.
func (s *Session) ConnectedAt() time.Time {
	return s.connectedAt
}

// Name returns the current display name, or "" before registration.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) setName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// RequestQuit marks the session for termination once the current line is handled.
func (s *Session) RequestQuit() {
	s.quit.Store(true)
}

// QuitRequested reports whether RequestQuit was called.
func (s *Session) QuitRequested() bool {
	return s.quit.Load()
}

// Deliver queues one line for this session's writer. It never writes to the
// connection itself, so it is safe to call from any goroutine while holding no
// locks. When the outbox is full it waits up to the delivery timeout.
func (s *Session) Deliver(line string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- line:
		return nil
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.outbox <- line:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-timer.C:
		return ErrOutboxFull
	}
}

func (s *Session) reply(m Message) {
	_ = s.Deliver(m.Line())
}

// replyLines sends a multi-line text as separate lines so every emitted message
// stays a single wire line.
func (s *Session) replyLines(text string) {
	for _, line := range strings.Split(text, "\n") {
		s.reply(notice(line))
	}
}

// pump writes queued lines to conn in order until the session is closed, then
// flushes whatever is still queued. A write error closes the connection, which
// ends the reader side, and the remaining lines are discarded.
func (s *Session) pump(conn Conn, log *slog.Logger) {
	defer close(s.drained)

	failed := false
	write := func(line string) {
		if failed {
			return
		}
		if err := conn.WriteLine(line); err != nil {
			failed = true
			log.Warn("Write failed, closing connection", "session", s.id, "name", s.Name(), "error", err)
			_ = conn.Close()
		}
	}

	for {
		select {
		case line := <-s.outbox:
			write(line)
		case <-s.done:
			for {
				select {
				case line := <-s.outbox:
					write(line)
				default:
					return
				}
			}
		}
	}
}

// close stops accepting deliveries. It is safe to call more than once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
