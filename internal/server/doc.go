// Package server exposes the chat core over the network.
//
// It owns the transports (newline-delimited TCP and a WebSocket gateway), the
// hub that tracks live connections for graceful shutdown, the HTTP status
// routes and the environment-driven configuration. No routing logic lives
// here; every accepted connection is handed to chat.Service.
package server
