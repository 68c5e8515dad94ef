package chat

import (
	"log/slog"
	"time"
)

const (
	DefaultServerName      = "ChatServer"
	DefaultOutboxSize      = 256
	DefaultDeliveryTimeout = 2 * time.Second
)

// Options tunes a Service. Zero values fall back to the defaults above.
type Options struct {
	ServerName      string
	OutboxSize      int
	DeliveryTimeout time.Duration
	// Now stamps broadcast and whisper lines; tests pin it.
	Now func() time.Time
}

// Service wires one registry, router and dispatcher together and runs a Handler
// per connection. A Service lives as long as the server process.
type Service struct {
	log        *slog.Logger
	opts       Options
	registry   *Registry
	router     *Router
	dispatcher *Dispatcher
}

func NewService(log *slog.Logger, opts Options) *Service {
	if opts.ServerName == "" {
		opts.ServerName = DefaultServerName
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = DefaultOutboxSize
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	registry := NewRegistry()
	router := NewRouter(registry, log, opts.Now)
	return &Service{
		log:        log,
		opts:       opts,
		registry:   registry,
		router:     router,
		dispatcher: NewDispatcher(registry, router, log),
	}
}

// Registry returns the shared user registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Router returns the shared message router.
func (s *Service) Router() *Router {
	return s.router
}

// NewHandler builds the state machine for a freshly accepted connection.
func (s *Service) NewHandler(conn Conn) *Handler {
	return &Handler{
		conn:       conn,
		session:    newSession(conn.RemoteAddr(), s.opts.OutboxSize, s.opts.DeliveryTimeout, s.opts.Now()),
		registry:   s.registry,
		router:     s.router,
		dispatcher: s.dispatcher,
		serverName: s.opts.ServerName,
		log:        s.log,
	}
}

// Serve runs a Handler for conn and returns once the session has been torn down.
func (s *Service) Serve(conn Conn) {
	s.NewHandler(conn).Run()
}
