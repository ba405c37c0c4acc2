package rooms

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"quizwire/internal/identity"
	"quizwire/internal/metrics"
)

// Registry is the process-wide table of live rooms, keyed by code, with a
// reverse index from connection id to room. It owns room creation, lookup
// and removal; rooms themselves own everything inside them.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	byConn map[string]*Room

	catalog    Catalog
	recorder   Recorder // nil disables persistence
	newEmitter func(code string) Emitter
	logger     *slog.Logger
}

func NewRegistry(catalog Catalog, recorder Recorder, newEmitter func(code string) Emitter, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		byConn:     make(map[string]*Room),
		catalog:    catalog,
		recorder:   recorder,
		newEmitter: newEmitter,
		logger:     logger,
	}
}

// Create makes a new waiting room with the creator as sole member and host.
func (g *Registry) Create(connID string, id identity.Identity, settings Settings) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byConn[connID]; exists {
		return nil, ErrAlreadyInRoom
	}

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := g.rooms[code]; exists {
			continue
		}

		room := newRoom(code, connID, id, settings, g.newEmitter(code), g.catalog, g.recorder, g.logger)
		g.rooms[code] = room
		g.byConn[connID] = room
		metrics.RoomsLive.Inc()
		g.logger.Info("room created", "room", code, "host", id.DisplayName())
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

// Join adds a connection to an existing waiting room.
func (g *Registry) Join(code, connID string, id identity.Identity) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byConn[connID]; exists {
		return nil, ErrAlreadyInRoom
	}
	room := g.rooms[normalizeCode(code)]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := room.addMember(connID, id); err != nil {
		return nil, err
	}
	g.byConn[connID] = room
	return room, nil
}

// Leave removes a connection from whatever room it is in. When the last
// member leaves, the room is deregistered before its timers are cancelled,
// so nothing can resurrect it; Leave then returns nil.
func (g *Registry) Leave(connID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	room := g.byConn[connID]
	if room == nil {
		return nil
	}
	delete(g.byConn, connID)

	if room.removeMember(connID) == 0 {
		delete(g.rooms, room.Code)
		metrics.RoomsLive.Dec()
		room.Close()
		g.logger.Info("room removed", "room", room.Code)
		return nil
	}
	return room
}

// Get looks up a room by code. No mutation.
func (g *Registry) Get(code string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[normalizeCode(code)]
}

// RoomFor looks up the room a connection belongs to.
func (g *Registry) RoomFor(connID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.byConn[connID]
}

func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
