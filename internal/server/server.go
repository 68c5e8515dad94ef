package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/chat"
	"golang.org/x/sync/errgroup"
)

// Server runs the line protocol listener and, unless disabled, the HTTP
// listener carrying the WebSocket gateway and status routes. Both feed the
// same chat.Service.
type Server struct {
	cfg       Config
	log       *slog.Logger
	service   *chat.Service
	hub       *Hub
	origins   *originPolicy
	startedAt time.Time

	tcpListener  net.Listener
	httpListener net.Listener
	httpServer   *http.Server
}

func New(cfg Config, log *slog.Logger) *Server {
	cfg = sanitizeConfig(cfg)
	return &Server{
		cfg: cfg,
		log: log,
		service: chat.NewService(log, chat.Options{
			ServerName:      cfg.ServerName,
			OutboxSize:      cfg.OutboxSize,
			DeliveryTimeout: cfg.DeliveryTimeout,
		}),
		hub:       NewHub(log),
		origins:   newOriginPolicy(log, cfg.Origins()),
		startedAt: time.Now(),
	}
}

// Service exposes the chat core shared by every transport.
func (s *Server) Service() *chat.Service {
	return s.service
}

// Hub exposes the connection tracker.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Listen binds the configured addresses. Run calls it when needed; calling it
// first lets callers learn the bound addresses of ":0" listeners.
func (s *Server) Listen() error {
	if s.tcpListener == nil {
		ln, err := net.Listen("tcp", s.cfg.TCPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.TCPAddr, err)
		}
		s.tcpListener = ln
	}
	if s.cfg.HTTPEnabled() && s.httpListener == nil {
		ln, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			_ = s.tcpListener.Close()
			s.tcpListener = nil
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpListener = ln
		s.httpServer = CreateServer(s.cfg.HTTPAddr, s.SetupRoutes())
	}
	return nil
}

// TCPAddr returns the bound line protocol address, or nil before Listen.
func (s *Server) TCPAddr() net.Addr {
	if s.tcpListener == nil {
		return nil
	}
	return s.tcpListener.Addr()
}

// HTTPAddr returns the bound HTTP address, or nil when HTTP is disabled.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpListener == nil {
		return nil
	}
	return s.httpListener.Addr()
}

// Run serves until ctx is cancelled or a listener fails, then shuts down: the
// listeners are closed, every session is closed and Run waits for teardown up
// to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Chat server listening", "transport", "tcp", "address", s.tcpListener.Addr().String())
		return s.acceptLoop(s.tcpListener)
	})

	if s.httpServer != nil {
		g.Go(func() error {
			s.log.Info("Chat server listening", "transport", "http", "address", s.httpListener.Addr().String())
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.hub.Go(newLineConn(conn, s.cfg.WriteTimeout), s.service.Serve)
	}
}

func (s *Server) shutdown() error {
	s.log.Info("Shutting down gracefully...")

	if err := s.tcpListener.Close(); err != nil && !isExpectedCloseError(err) {
		s.log.Warn("Closing TCP listener failed", "error", err)
	}
	if s.httpServer != nil {
		if err := ShutdownServer(s.log, s.httpServer, s.cfg.ShutdownTimeout); err != nil {
			s.log.Warn("HTTP server shutdown error", "error", err)
		}
	}
	if err := s.hub.Shutdown(s.cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Program stopped cleanly")
	return nil
}
