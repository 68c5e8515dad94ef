package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// State is a position in the per-connection state machine.
type State int32

const (
	StateConnecting State = iota
	StateNaming
	StateActive
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateNaming:
		return "naming"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Handler owns one connection end to end: name negotiation, the receive loop
// and teardown. Run must be called once.
type Handler struct {
	conn       Conn
	session    *Session
	registry   *Registry
	router     *Router
	dispatcher *Dispatcher
	serverName string
	log        *slog.Logger

	state        atomic.Int32
	pumping      bool
	teardownOnce sync.Once
}

// Session returns the session driven by this handler.
func (h *Handler) Session() *Session {
	return h.session
}

// State returns the current state. It is safe to call from other goroutines.
func (h *Handler) State() State {
	return State(h.state.Load())
}

func (h *Handler) setState(s State) {
	h.state.Store(int32(s))
}

// Run drives the connection until the client quits, the stream ends or the
// transport fails. Teardown always runs, including after a panic, which is
// recovered so that one broken session cannot take the process down.
func (h *Handler) Run() {
	defer h.teardown()
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Session panicked", "session", h.session.ID(), "name", h.session.Name(), "panic", r)
		}
	}()

	h.pumping = true
	go h.session.pump(h.conn, h.log)
	h.setState(StateNaming)

	if !h.negotiateName() {
		return
	}
	h.setState(StateActive)
	h.receive()
}

func (h *Handler) negotiateName() bool {
	h.session.reply(notice(fmt.Sprintf("Welcome to %s!", h.serverName)))
	h.session.reply(notice("Please enter your username:"))

	for {
		res := h.conn.ReadLine()
		if !h.readable(res) {
			return false
		}

		name := strings.TrimSpace(res.Text)
		switch {
		case name == "":
			h.session.reply(notice("Username cannot be empty, please try again:"))
		case ValidateName(name) != nil:
			h.session.reply(notice(invalidNameHint(name) + " Please choose another:"))
		case !h.registry.Register(name, h.session):
			h.session.reply(notice(fmt.Sprintf("Username '%s' is already taken. Please choose another:", name)))
		default:
			h.log.Info("User registered", "session", h.session.ID(), "name", name, "addr", h.conn.RemoteAddr())
			h.router.Announce(name + " joined the chat!")
			h.session.reply(notice(fmt.Sprintf("Welcome, %s! You're now connected to the chat.", name)))
			h.session.reply(notice("Commands: /list (users), /whisper <user> <msg> (private), /nick <name> (change name), /help (commands), /quit (exit)"))
			h.session.reply(notice("Start chatting! Your messages will be broadcasted to everyone!"))
			return true
		}
	}
}

func (h *Handler) receive() {
	for !h.session.QuitRequested() {
		res := h.conn.ReadLine()
		if !h.readable(res) {
			return
		}
		if err := h.dispatcher.Dispatch(h.session, res.Text); err != nil {
			h.log.Debug("Command rejected", "session", h.session.ID(), "name", h.session.Name(), "error", err)
		}
	}
}

// readable reports whether res carries a line. End of stream and transport
// failures both end the session; only failures are logged as warnings.
func (h *Handler) readable(res ReadResult) bool {
	switch res.Status {
	case ReadOK:
		return true
	case ReadEOF:
		h.log.Info("Client disconnected", "session", h.session.ID(), "name", h.session.Name(), "state", h.State())
	default:
		h.log.Warn("Transport failure", "session", h.session.ID(), "name", h.session.Name(), "state", h.State(), "error", res.Err)
	}
	return false
}

// teardown releases the name, announces the departure if a name was held,
// flushes the outbox and closes the connection. It runs at most once.
func (h *Handler) teardown() {
	h.teardownOnce.Do(func() {
		h.setState(StateClosing)

		if name, ok := h.registry.Release(h.session); ok {
			h.router.Announce(name + " left the chat.")
		}

		h.session.close()
		if h.pumping {
			<-h.session.drained
		}
		if err := h.conn.Close(); err != nil {
			h.log.Debug("Closing connection failed", "session", h.session.ID(), "error", err)
		}
	})
}
