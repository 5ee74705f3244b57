package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/rs/zerolog"
)

// CodeGenerator produces candidate room codes. Collisions are retried by the
// registry, so generators need not be unique.
type CodeGenerator func() string

// RandomCode returns a 6-digit numeric code.
func RandomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "100000"
	}
	return fmt.Sprintf("%06d", 100000+n.Int64())
}

// Registry owns the live rooms keyed by code. Lock order is room before
// registry; the registry lock is never held while taking a room lock.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	newCode CodeGenerator
	log     zerolog.Logger
}

type RegistryOption func(*Registry)

func WithCodeGenerator(gen CodeGenerator) RegistryOption {
	return func(r *Registry) { r.newCode = gen }
}

func WithRegistryLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:   make(map[string]*Room),
		newCode: RandomCode,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom registers a room under a fresh code with hostID as its only
// player and host.
func (r *Registry) CreateRoom(hostID, username string, settings Settings) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	code := r.newCode()
	for {
		if _, taken := r.rooms[code]; !taken {
			break
		}
		r.log.Debug().Str("room", code).Msg("room code collision, regenerating")
		code = r.newCode()
	}
	// the room is unreachable until it is in the map, so no room lock yet
	room := newRoom(code, settings)
	room.addPlayerLocked(hostID, username)
	r.rooms[code] = room

	r.log.Info().Str("room", code).Str("host", username).Str("mode", settings.GameMode).Msg("🏠 room created")
	return room
}

func (r *Registry) Get(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// JoinRoom appends a non-host player to the room.
func (r *Registry) JoinRoom(code, playerID, username string) (*Room, error) {
	room, ok := r.Get(code)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	switch {
	case room.closed:
		return nil, ErrRoomNotFound
	case room.active:
		return nil, ErrGameInProgress
	case room.playerLocked(playerID) != nil:
		return nil, ErrAlreadyInRoom
	case room.usernameTakenLocked(username):
		return nil, ErrUsernameTaken
	}

	room.addPlayerLocked(playerID, username)
	r.log.Info().Str("room", code).Str("player", username).Int("players", len(room.players)).Msg("🔌 player joined")
	return room, nil
}

type RemoveResult struct {
	Removed Player
	NewHost string
	Emptied bool
}

// RemovePlayer drops playerID from the room. An emptied room is closed, its
// timer cancelled and the room forgotten.
func (r *Registry) RemovePlayer(code, playerID string) (RemoveResult, error) {
	room, ok := r.Get(code)
	if !ok {
		return RemoveResult{}, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return RemoveResult{}, ErrRoomNotFound
	}
	removed, newHost := room.removePlayerLocked(playerID)
	if removed == nil {
		room.mu.Unlock()
		return RemoveResult{}, ErrNotInRoom
	}

	res := RemoveResult{Removed: *removed}
	if newHost != nil {
		res.NewHost = newHost.Username
		r.log.Info().Str("room", code).Str("host", newHost.Username).Msg("👑 host migrated")
	}
	if len(room.players) == 0 {
		room.closed = true
		room.active = false
		room.stopTimerLocked()
		res.Emptied = true
	}
	room.mu.Unlock()

	r.log.Info().Str("room", code).Str("player", removed.Username).Msg("❌ player left")

	if res.Emptied {
		r.mu.Lock()
		if r.rooms[code] == room {
			delete(r.rooms, code)
		}
		r.mu.Unlock()
		r.log.Info().Str("room", code).Msg("🗑️ room deleted (empty)")
	}
	return res, nil
}
