// Package scheduler drives a room's tick and snapshot loops at fixed
// rates and is the only time source the engine trusts.
package scheduler

import (
	"log"
	"sort"
	"sync"
	"time"

	"rts-arena-server/internal/game"
)

// TickRate and SnapshotRate are the server's fixed simulation and
// broadcast cadences.
const (
	TickRate     = 60
	SnapshotRate = 10
)

// InputQueue is the per-player FIFO the scheduler drains each tick. Room
// wires this to a room.SPSCQueue[game.PendingAction]; the scheduler only
// needs DrainAll.
type InputQueue interface {
	DrainAll() []game.PendingAction
}

// Scheduler owns the two independent periodic drivers for one room's
// engine: a tick driver at TickRate and a snapshot driver at
// SnapshotRate. It never touches game state directly beyond calling the
// engine's own exported methods.
type Scheduler struct {
	mu     sync.Mutex
	engine *game.Engine
	inputs map[string]InputQueue

	tickTicker     *time.Ticker
	snapshotTicker *time.Ticker
	stopChan       chan struct{}

	// held buffers actions drained early whose declared ClientTick hasn't
	// arrived yet. Only touched from the tick driver goroutine.
	held []game.PendingAction

	running bool
	paused  bool

	// OnSnapshot is invoked from the snapshot driver's goroutine with each
	// freshly built snapshot, for the transport adapter to broadcast.
	OnSnapshot func(game.Snapshot)
	// OnGameOver is invoked once, from the tick driver's goroutine, the
	// first tick gameOver becomes true.
	OnGameOver func(game.Snapshot)
}

// New returns a scheduler bound to engine. inputs maps player id to that
// player's pending-action queue.
func New(engine *game.Engine, inputs map[string]InputQueue) *Scheduler {
	return &Scheduler{
		engine:   engine,
		inputs:   inputs,
		stopChan: make(chan struct{}),
	}
}

// Start launches both drivers. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.paused = false
	s.mu.Unlock()

	s.tickTicker = time.NewTicker(time.Second / TickRate)
	s.snapshotTicker = time.NewTicker(time.Second / SnapshotRate)

	go s.runTickDriver()
	go s.runSnapshotDriver()
}

// Stop halts both drivers and releases their timers. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.tickTicker.Stop()
	s.snapshotTicker.Stop()
	close(s.stopChan)
}

// Pause suspends both drivers without releasing their timers; Resume
// restores them. Neither driver advances state while paused.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume un-suspends the drivers.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *Scheduler) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) runTickDriver() {
	for {
		select {
		case <-s.tickTicker.C:
			if s.isPaused() {
				continue
			}
			s.drainAndTick()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) runSnapshotDriver() {
	for {
		select {
		case <-s.snapshotTicker.C:
			if s.isPaused() {
				continue
			}
			snap := s.engine.Snapshot(time.Now().UnixMilli())
			if s.OnSnapshot != nil {
				s.OnSnapshot(snap)
			}
		case <-s.stopChan:
			return
		}
	}
}

// drainAndTick performs one tick driver cycle: drain pending actions in
// the cross-player order spec.md §4.H requires (arrival timestamp, then
// player id lexicographically), hold back any action declared for a
// tick that hasn't arrived yet, submit the rest, advance the engine,
// and check for game-over.
func (s *Scheduler) drainAndTick() {
	currentTick := s.engine.State().Tick

	pending := s.drainPending()
	var ready []game.PendingAction
	var notYet []game.PendingAction
	for _, pa := range pending {
		if pa.Action.ClientTick > int64(currentTick) {
			notYet = append(notYet, pa)
			continue
		}
		ready = append(ready, pa)
	}
	s.held = notYet

	for _, pa := range ready {
		if err := s.engine.Submit(pa.PlayerID, pa.Action); err != nil {
			log.Printf("scheduler: submit rejected by engine: %v", err)
		}
	}

	s.engine.Tick()

	state := s.engine.State()
	if state.GameOver && s.OnGameOver != nil {
		s.OnGameOver(s.engine.Snapshot(time.Now().UnixMilli()))
		s.Stop()
	}
}

// drainPending collects this cycle's candidate actions: everything still
// held from a prior cycle plus whatever each player's queue has received
// since, sorted into the deterministic cross-player order spec.md §4.H
// requires (arrival timestamp, then player id lexicographically).
func (s *Scheduler) drainPending() []game.PendingAction {
	all := s.held
	s.held = nil
	for _, q := range s.inputs {
		all = append(all, q.DrainAll()...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].PlayerID < all[j].PlayerID
	})
	return all
}
