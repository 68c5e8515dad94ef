package server

import "net/http"

// SetupRoutes returns the HTTP routes: health, WebSocket gateway, test page and
// the two status endpoints.
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	mux.HandleFunc("/test", TestPageHandler)
	mux.HandleFunc("/users", s.UsersHandler)
	mux.HandleFunc("/stats", s.StatsHandler)
	return mux
}
