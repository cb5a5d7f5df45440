package room

import (
	"sync"
	"time"

	"rts-arena-server/internal/game"
	"rts-arena-server/internal/scheduler"
)

// Status is a room's lifecycle phase, per spec.md §4.I.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// GraceWindow is how long a disconnected in-game player has to rejoin
// before forfeit.
const GraceWindow = 60 * time.Second

// PingTimeout is the longest silence before a connected player is marked
// disconnected, opening the grace window.
const PingTimeout = 30 * time.Second

// Seat is one player's lobby-level bookkeeping. Before a room starts this
// is the only representation of a player; once playing, the authoritative
// copy lives in the engine's Player and this tracks connection health.
type Seat struct {
	ID   string
	Name string
	Team game.TeamRole

	Ready bool

	LastPing       time.Time
	Disconnected   bool
	DisconnectedAt time.Time
}

// Room is one match container: up to two players (or one plus an AI
// slot) and, once started, the engine and scheduler driving them.
//
// mu serializes lobby-level mutation (seats, status, ready flags) only;
// it is never held across a tick, per spec.md §5's rule that simulation
// runs outside any registry/room lock.
type Room struct {
	mu sync.Mutex

	ID         string
	Seed       int64
	Difficulty game.Difficulty
	MaxPlayers int
	AISlot     bool

	HostID string

	Seats     map[string]*Seat
	SeatOrder []string

	Status    Status
	CreatedAt time.Time

	Engine      *game.Engine
	Scheduler   *scheduler.Scheduler
	inputQueues map[string]*SPSCQueue[game.PendingAction]

	Winner string
	Reason string
}

// Lock/Unlock expose the room's lobby mutex to the Manager, which owns
// all cross-seat invariants (host promotion, seat counts, status
// transitions).
func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// newRoom constructs an empty waiting room identified by id, with no seats.
func newRoom(id string, seed int64, difficulty game.Difficulty, aiSlot bool) *Room {
	return &Room{
		ID:         id,
		Seed:       seed,
		Difficulty: difficulty,
		MaxPlayers: 2,
		AISlot:     aiSlot,
		Seats:      make(map[string]*Seat),
		Status:     StatusWaiting,
		CreatedAt:  time.Now(),
	}
}

// addSeat appends a new seat in join order. Caller holds the room lock.
func (r *Room) addSeat(id, name string, team game.TeamRole) *Seat {
	s := &Seat{ID: id, Name: name, Team: team, LastPing: time.Now()}
	r.Seats[id] = s
	r.SeatOrder = append(r.SeatOrder, id)
	return s
}

// removeSeat drops a seat and its place in join order. Caller holds the
// room lock.
func (r *Room) removeSeat(id string) {
	delete(r.Seats, id)
	for i, sid := range r.SeatOrder {
		if sid == id {
			r.SeatOrder = append(r.SeatOrder[:i], r.SeatOrder[i+1:]...)
			break
		}
	}
}

// allReady reports whether every seat has readied up.
func (r *Room) allReady() bool {
	for _, s := range r.Seats {
		if !s.Ready {
			return false
		}
	}
	return true
}

// canStart mirrors spec.md §4.I Start: all-ready and size>=2, or size==1
// with an AI slot configured.
func (r *Room) canStart() bool {
	if !r.allReady() {
		return false
	}
	if len(r.Seats) >= 2 {
		return true
	}
	return len(r.Seats) == 1 && r.AISlot
}

// ToJSON returns the REST-safe view of a room: lobby metadata and seats,
// never the engine or scheduler.
func (r *Room) ToJSON() map[string]interface{} {
	r.Lock()
	defer r.Unlock()

	seats := make([]map[string]interface{}, 0, len(r.SeatOrder))
	for _, id := range r.SeatOrder {
		s := r.Seats[id]
		seats = append(seats, map[string]interface{}{
			"id":           s.ID,
			"name":         s.Name,
			"team":         s.Team,
			"ready":        s.Ready,
			"disconnected": s.Disconnected,
		})
	}

	return map[string]interface{}{
		"id":         r.ID,
		"status":     r.Status,
		"hostId":     r.HostID,
		"maxPlayers": r.MaxPlayers,
		"aiSlot":     r.AISlot,
		"difficulty": r.Difficulty,
		"seats":      seats,
		"winner":     r.Winner,
		"reason":     r.Reason,
	}
}
