// Package chat implements the session lifecycle and message routing engine of the
// chat server.
//
// The package is transport neutral. A connection is anything that satisfies Conn:
// it reads one line at a time and writes one line at a time. The server package
// adapts TCP sockets and WebSocket connections to that interface and hands each
// of them to Service.Serve, which runs the per-connection state machine until the
// peer quits, disconnects, or the transport fails.
//
// Shared state is limited to the Registry. Every other collaborator (Router,
// Dispatcher, Handler) is stateless or owned by a single session.
package chat
