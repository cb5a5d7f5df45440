// Package transport adapts the Room Manager and Game Engine to a
// bidirectional framed WebSocket connection per player, per spec.md
// §4.J. It owns nothing about simulation; it only decodes client frames,
// routes them to the Room Manager, and encodes outgoing frames.
package transport

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rts-arena-server/internal/anticheat"
	"rts-arena-server/internal/api"
	"rts-arena-server/internal/game"
	"rts-arena-server/internal/room"
	"rts-arena-server/internal/validate"
)

// MaxWSConnectionsPerIP bounds concurrent player connections from one
// address, independent of the IP-based HTTP rate limiter which only
// throttles request rate, not connection count.
const MaxWSConnectionsPerIP = 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if api.IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("transport: rejected connection from origin: %s", origin)
		api.RecordConnectionRejected("origin")
		return false
	},
}

// Vec2 is the wire shape for a position, matching spec.md §6's
// {x,y} target shape.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ActionPayload is the wire shape of one client-submitted action.
type ActionPayload struct {
	Type           string `json:"type"`
	UnitID         string `json:"unitId,omitempty"`
	BuildingID     string `json:"buildingId,omitempty"`
	Target         *Vec2  `json:"target,omitempty"`
	TargetEntity   string `json:"targetEntity,omitempty"`
	Patrol         *Vec2  `json:"patrol,omitempty"`
	BuildVariant   string `json:"buildVariant,omitempty"`
	ProduceVariant string `json:"produceVariant,omitempty"`
	UpgradeTrack   string `json:"upgradeTrack,omitempty"`
	CancelIndex    int    `json:"cancelIndex,omitempty"`
}

func (p ActionPayload) toGameAction(clientTick int64, timestamp int64) game.Action {
	a := game.Action{
		Type:           game.ActionType(p.Type),
		UnitID:         p.UnitID,
		BuildingID:     p.BuildingID,
		TargetEntity:   p.TargetEntity,
		BuildVariant:   game.BuildingVariant(p.BuildVariant),
		ProduceVariant: game.UnitVariant(p.ProduceVariant),
		UpgradeTrack:   p.UpgradeTrack,
		CancelIndex:    p.CancelIndex,
		ClientTick:     clientTick,
		Timestamp:      timestamp,
	}
	if p.Target != nil {
		a.TargetX, a.TargetY = p.Target.X, p.Target.Y
		a.HasTargetPos = true
	}
	if p.Patrol != nil {
		a.PatrolX, a.PatrolY = p.Patrol.X, p.Patrol.Y
	}
	return a
}

// ClientMessage is the envelope for every client->server frame.
type ClientMessage struct {
	Type       string         `json:"type"`
	RoomID     string         `json:"roomId"`
	PlayerID   string         `json:"playerId"`
	PlayerName string         `json:"playerName,omitempty"`
	Ready      bool           `json:"ready,omitempty"`
	Action     *ActionPayload `json:"action,omitempty"`
	ClientTick int64          `json:"clientTick,omitempty"`
}

// ServerMessage is the envelope for every server->client frame.
type ServerMessage struct {
	Type     string         `json:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Winner   string         `json:"winner,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type client struct {
	conn     *websocket.Conn
	roomID   string
	playerID string
	mu       sync.Mutex
}

func (c *client) send(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("transport: write to %s/%s failed: %v", c.roomID, c.playerID, err)
	}
}

// Hub fans room broadcasts out to every connected client and routes
// inbound frames to the Room Manager, Action Validator, and Anti-Cheat
// Monitor.
type Hub struct {
	manager   *room.Manager
	validator *validate.Validator
	monitor   *anticheat.Monitor
	wsLimiter *api.WebSocketRateLimiter

	mu      sync.RWMutex
	clients map[string]map[string]*client // roomID -> playerID -> client
}

// NewHub wires a Hub to an already-constructed Room Manager. manager's
// Broadcast/GameOver callbacks are set here.
func NewHub(manager *room.Manager) *Hub {
	h := &Hub{
		manager:   manager,
		validator: validate.New(),
		monitor:   anticheat.New(),
		wsLimiter: api.NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		clients:   make(map[string]map[string]*client),
	}
	manager.Broadcast = h.broadcastSnapshot
	manager.GameOver = h.broadcastGameOver
	return h
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.roomID] == nil {
		h.clients[c.roomID] = make(map[string]*client)
	}
	h.clients[c.roomID][c.playerID] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.clients[c.roomID]; ok {
		delete(peers, c.playerID)
		if len(peers) == 0 {
			delete(h.clients, c.roomID)
		}
	}
}

func (h *Hub) broadcastSnapshot(roomID string, snap game.Snapshot) {
	h.mu.RLock()
	peers := h.clients[roomID]
	h.mu.RUnlock()

	r, err := h.manager.Get(roomID)
	if err != nil {
		return
	}
	state := r.Engine.State()

	for playerID, c := range peers {
		filtered := snap.FilterForPlayer(playerID, state)
		c.send(ServerMessage{Type: "snapshot", Snapshot: &filtered})
	}
}

func (h *Hub) broadcastGameOver(roomID string, snap game.Snapshot) {
	h.mu.RLock()
	peers := h.clients[roomID]
	h.mu.RUnlock()
	for _, c := range peers {
		c.send(ServerMessage{Type: "gameOver", Winner: snap.Winner})
	}
}

// ServeWS upgrades the connection and runs its read loop until the
// client disconnects or sends a malformed frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ip := api.GetClientIP(r)
	if !h.wsLimiter.Allow(ip) {
		api.RecordConnectionRejected("ws_limit")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.wsLimiter.Release(ip)
		log.Printf("transport: upgrade failed: %v", err)
		return
	}

	var c *client
	defer func() {
		h.wsLimiter.Release(ip)
		if c != nil {
			h.unregister(c)
			h.manager.Leave(c.roomID, c.playerID)
		}
		conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return // malformed frame or closed connection: treat as disconnect
		}

		if c == nil {
			if msg.Type != "join" {
				conn.WriteJSON(ServerMessage{Type: "error", Error: "first frame must be join"})
				return
			}
			if _, err := h.manager.Join(msg.RoomID, msg.PlayerID, msg.PlayerName); err != nil {
				conn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				return
			}
			c = &client{conn: conn, roomID: msg.RoomID, playerID: msg.PlayerID}
			h.register(c)
			c.send(ServerMessage{Type: "gameStart"})
			continue
		}

		h.handle(c, msg)
	}
}

func (h *Hub) handle(c *client, msg ClientMessage) {
	switch msg.Type {
	case "leave":
		h.manager.Leave(c.roomID, c.playerID)

	case "ready":
		if err := h.manager.SetReady(c.roomID, c.playerID, msg.Ready); err != nil {
			c.send(ServerMessage{Type: "error", Error: err.Error()})
		}

	case "ping":
		h.manager.Ping(c.roomID, c.playerID)
		c.send(ServerMessage{Type: "pong"})

	case "action":
		h.handleAction(c, msg)

	default:
		c.send(ServerMessage{Type: "error", Error: "unknown message type"})
	}
}

func (h *Hub) handleAction(c *client, msg ClientMessage) {
	if msg.Action == nil {
		c.send(ServerMessage{Type: "actionRejected", Reason: "missing action payload"})
		return
	}

	r, err := h.manager.Get(c.roomID)
	if err != nil {
		c.send(ServerMessage{Type: "actionRejected", Reason: err.Error()})
		return
	}
	if r.Engine == nil {
		c.send(ServerMessage{Type: "actionRejected", Reason: "room has not started"})
		return
	}

	now := time.Now()
	action := msg.Action.toGameAction(msg.ClientTick, now.UnixMilli())

	result := h.validator.Validate(r.Engine.State(), c.playerID, action, now)
	if !result.Valid {
		api.RecordAction("rejected")
		c.send(ServerMessage{Type: "actionRejected", Reason: result.Reason})
		return
	}

	if finding := h.monitor.ObserveAction(c.playerID, now); finding != nil {
		log.Printf("transport: anticheat %s: %s: %s", finding.Severity, finding.PlayerID, finding.Reason)
		api.RecordAnticheatFinding(string(finding.Severity))
	}

	if err := h.manager.Submit(c.roomID, c.playerID, action, now.UnixMilli()); err != nil {
		api.RecordAction("rejected")
		c.send(ServerMessage{Type: "actionRejected", Reason: err.Error()})
		return
	}
	api.RecordAction("accepted")
	c.send(ServerMessage{Type: "actionAccepted"})
}
