package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rts-arena-server/internal/game"
	"rts-arena-server/internal/room"
)

// RoomManager defines the room-lifecycle methods the REST layer calls.
// Satisfied by *room.Manager; kept as an interface so the router can be
// exercised in tests against a narrower fake.
type RoomManager interface {
	Create(hostID, hostName string, difficulty game.Difficulty, aiSlot bool) (*room.Room, error)
	Get(roomID string) (*room.Room, error)
	List() []*room.Room
	Join(roomID, playerID, playerName string) (*room.Room, error)
	Leave(roomID, playerID string) error
	SetReady(roomID, playerID string, ready bool) error
	Start(roomID, requesterID string) error
}

// RouterConfig contains the dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
type RouterConfig struct {
	// Rooms is the room registry (required).
	Rooms RoomManager

	// WSHandler upgrades and serves the player WebSocket connection.
	// Wired separately from Rooms because the Transport Adapter that
	// implements it depends on this package's metrics recorders, and
	// this package must not import back into transport.
	WSHandler http.HandlerFunc

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string
	DisableLogging  bool
}

type routerHandlers struct {
	rooms RoomManager
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: this function is PURE - no goroutines started, no listeners
// opened - safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{rooms: cfg.Rooms}

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.handleListRooms)
		r.Post("/", h.handleCreateRoom)
		r.Get("/{roomID}", h.handleGetRoom)
		r.Post("/{roomID}/join", h.handleJoinRoom)
		r.Post("/{roomID}/leave", h.handleLeaveRoom)
		r.Post("/{roomID}/ready", h.handleReadyRoom)
		r.Post("/{roomID}/start", h.handleStartRoom)
	})

	if cfg.WSHandler != nil {
		r.Get("/ws", cfg.WSHandler)
	}

	return r
}
