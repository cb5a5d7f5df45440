package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server: the Room REST endpoints plus the player
// WebSocket route.
type Server struct {
	router      *chi.Mux
	rateLimiter *IPRateLimiter
}

// NewServer builds the router from rooms (the Room Manager) and wsHandler
// (the Transport Adapter's upgrade entrypoint).
//
// IMPORTANT: no background workers or listeners are started here. That
// happens only in Start(), so tests can exercise Router() directly with
// httptest.NewServer.
func NewServer(rooms RoomManager, wsHandler http.HandlerFunc) *Server {
	s := &Server{
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}
	s.router = NewRouter(RouterConfig{
		Rooms:       rooms,
		WSHandler:   wsHandler,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// Start begins serving HTTP on addr. Call once; stop the process to stop
// the server.
func (s *Server) Start(addr string) error {
	log.Printf("rts-arena-server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers owned directly
// by the server (the rate limiter's cleanup loop).
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
