package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"rts-arena-server/internal/config"
	"rts-arena-server/internal/game"
	"rts-arena-server/internal/scheduler"
)

// Manager is the process-wide room registry. Per spec.md §5, operations
// are serialized through this registry only while looking up/inserting/
// removing a room; simulation itself runs outside any registry lock.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg config.AppConfig

	// Broadcast is invoked by a room's scheduler with each snapshot; wired
	// to the Transport Adapter by the caller that constructs the Manager.
	Broadcast func(roomID string, snap game.Snapshot)
	// GameOver is invoked once a room's engine reports gameOver.
	GameOver func(roomID string, snap game.Snapshot)

	stopSweep chan struct{}
}

// NewManager returns an empty registry and starts its background
// sweeper, which removes waiting rooms older than cfg.Room.TTLWaiting.
func NewManager(cfg config.AppConfig) *Manager {
	m := &Manager{
		rooms:     make(map[string]*Room),
		cfg:       cfg,
		stopSweep: make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Close stops the background sweeper. Rooms already playing keep running
// until their own scheduler stops them.
func (m *Manager) Close() {
	close(m.stopSweep)
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweepStaleWaitingRooms()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Manager) sweepStaleWaitingRooms() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, r := range m.rooms {
		if r.Status == StatusWaiting && now.Sub(r.CreatedAt) > m.cfg.Room.TTLWaiting {
			delete(m.rooms, id)
		}
	}
}

// Create opens a new waiting room with hostID seated as team host.
func (m *Manager) Create(hostID, hostName string, difficulty game.Difficulty, aiSlot bool) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newRoomID()
	r := newRoom(id, rand.Int63(), difficulty, aiSlot)
	r.HostID = hostID
	r.addSeat(hostID, hostName, game.TeamHost)
	m.rooms[id] = r
	return r, nil
}

// Get returns a room by id, or an error if unknown (maps to a 404 at the
// REST boundary).
func (m *Manager) Get(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room: %q not found", roomID)
	}
	return r, nil
}

// List returns every room still accepting joins.
func (m *Manager) List() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Room
	for _, r := range m.rooms {
		if r.Status == StatusWaiting {
			out = append(out, r)
		}
	}
	return out
}

// Join seats playerID as guest iff the room is waiting and has room.
// Rejoin by the same id is idempotent.
func (m *Manager) Join(roomID, playerID, playerName string) (*Room, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return nil, err
	}

	r.Lock()
	defer r.Unlock()

	if _, already := r.Seats[playerID]; already {
		return r, nil
	}
	if r.Status != StatusWaiting {
		return nil, fmt.Errorf("room: %q is not accepting joins", roomID)
	}
	if len(r.Seats) >= r.MaxPlayers {
		return nil, fmt.Errorf("room: %q is full", roomID)
	}
	r.addSeat(playerID, playerName, game.TeamGuest)
	return r, nil
}

// Leave removes playerID from the room. In a waiting room this is an
// outright removal with host promotion if the host left; in a playing
// room it opens the grace window instead of removing the seat.
func (m *Manager) Leave(roomID, playerID string) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	seat, ok := r.Seats[playerID]
	if !ok {
		return fmt.Errorf("room: player %q not seated", playerID)
	}

	if r.Status == StatusPlaying || r.Status == StatusPaused {
		seat.Disconnected = true
		seat.DisconnectedAt = time.Now()
		return nil
	}

	r.removeSeat(playerID)
	if len(r.Seats) == 0 {
		m.mu.Lock()
		delete(m.rooms, roomID)
		m.mu.Unlock()
		return nil
	}
	if r.HostID == playerID {
		r.HostID = r.SeatOrder[0]
		r.Seats[r.HostID].Team = game.TeamHost
	}
	return nil
}

// SetReady toggles a seat's ready flag.
func (m *Manager) SetReady(roomID, playerID string, ready bool) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	r.Lock()
	defer r.Unlock()

	seat, ok := r.Seats[playerID]
	if !ok {
		return fmt.Errorf("room: player %q not seated", playerID)
	}
	seat.Ready = ready
	return nil
}

// Ping refreshes a seat's last-seen time and clears any disconnected
// state (a rejoin within the grace window).
func (m *Manager) Ping(roomID, playerID string) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	r.Lock()
	defer r.Unlock()

	seat, ok := r.Seats[playerID]
	if !ok {
		return fmt.Errorf("room: player %q not seated", playerID)
	}
	seat.LastPing = time.Now()
	seat.Disconnected = false
	return nil
}

// Start instantiates the engine and scheduler and transitions the room
// to playing. Only the host may start, and only once all seats are ready
// and the seat count satisfies canStart.
func (m *Manager) Start(roomID, requesterID string) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	r.Lock()
	defer r.Unlock()

	if r.HostID != requesterID {
		return fmt.Errorf("room: only the host may start the match")
	}
	if r.Status != StatusWaiting {
		return fmt.Errorf("room: %q already started", roomID)
	}
	if !r.canStart() {
		return fmt.Errorf("room: %q is not ready to start", roomID)
	}

	engine, err := game.NewEngine(m.cfg.Sim.MapWidth, m.cfg.Sim.MapHeight, m.cfg.Sim.TileSize, r.Seed, r.Difficulty)
	if err != nil {
		return fmt.Errorf("room: start: %w", err)
	}

	queues := make(map[string]*SPSCQueue[game.PendingAction], len(r.Seats)+1)
	inputs := make(map[string]scheduler.InputQueue, len(r.Seats)+1)
	for _, id := range r.SeatOrder {
		seat := r.Seats[id]
		engine.AddPlayer(seat.ID, seat.Name, seat.Team)
		q := NewSPSCQueue[game.PendingAction](256)
		queues[seat.ID] = q
		inputs[seat.ID] = q
	}
	if r.AISlot && len(r.Seats) == 1 {
		aiID := "ai-" + r.ID
		engine.AddAI(aiID, "AI", r.Difficulty)
	}
	engine.Initialize()

	sched := scheduler.New(engine, inputs)
	sched.OnSnapshot = func(snap game.Snapshot) {
		if m.Broadcast != nil {
			m.Broadcast(r.ID, snap)
		}
	}
	sched.OnGameOver = func(snap game.Snapshot) {
		r.Lock()
		r.Status = StatusEnded
		r.Winner = snap.Winner
		r.Reason = r.Engine.State().Reason
		r.Unlock()
		if m.GameOver != nil {
			m.GameOver(r.ID, snap)
		}
	}

	r.Engine = engine
	r.Scheduler = sched
	r.Status = StatusPlaying
	r.inputQueues = queues

	sched.Start()
	go m.superviseConnections(r)
	return nil
}

// Submit routes a validated action into the seated player's input queue
// for the scheduler to drain on its next tick. The caller (transport,
// after the Action Validator accepts) supplies the arrival timestamp used
// for cross-player tie-breaking.
func (m *Manager) Submit(roomID, playerID string, action game.Action, timestampMillis int64) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	r.Lock()
	q, ok := r.inputQueues[playerID]
	r.Unlock()
	if !ok {
		return fmt.Errorf("room: %q has no input queue for player %q", roomID, playerID)
	}

	action.Player = playerID
	pa := game.PendingAction{Action: action, Timestamp: timestampMillis, PlayerID: playerID}
	if !q.TryPush(pa) {
		return fmt.Errorf("room: %q input queue full for player %q", roomID, playerID)
	}
	return nil
}

// superviseConnections watches ping timeouts and grace-window expiry for
// a playing room's seats, forfeiting via InjectElimination when the
// window lapses.
func (m *Manager) superviseConnections(r *Room) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		r.Lock()
		status := r.Status
		if status != StatusPlaying && status != StatusPaused {
			r.Unlock()
			return
		}
		now := time.Now()
		for _, seat := range r.Seats {
			if !seat.Disconnected && now.Sub(seat.LastPing) > m.cfg.Room.PingTimeout {
				seat.Disconnected = true
				seat.DisconnectedAt = now
			}
			if seat.Disconnected && now.Sub(seat.DisconnectedAt) > m.cfg.Room.GraceWindow {
				r.Engine.InjectElimination(seat.ID)
			}
		}
		r.Unlock()
	}
}

func newRoomID() string {
	return uuid.NewString()
}
