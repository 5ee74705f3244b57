package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/game"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Rooms is the slice of the coordinator the gateway drives.
type Rooms interface {
	CreateRoom(playerID, username string, settings game.Settings) *game.Room
	JoinRoom(playerID, code, username string) (*game.Room, error)
	Rejoin(code, playerID string) error
	StartGame(code, playerID string) error
	RestartGame(code, playerID string) error
	SubmitGuess(code, playerID string, guess game.Guess) error
	SendLeaderboard(code, playerID string) error
	Leave(code, playerID string)
}

type Options struct {
	Defaults     Defaults
	EventRate    float64
	EventBurst   int
	PingInterval time.Duration
	Logger       zerolog.Logger
}

// Hub owns the open connections. It routes inbound events to Rooms and
// implements game.Emitter for the way back.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	rooms        Rooms
	defaults     Defaults
	limit        rate.Limit
	burst        int
	pingInterval time.Duration
	log          zerolog.Logger
}

func NewHub(opts Options) *Hub {
	limit := rate.Inf
	if opts.EventRate > 0 {
		limit = rate.Limit(opts.EventRate)
	}
	burst := opts.EventBurst
	if burst <= 0 {
		burst = 1
	}
	return &Hub{
		clients:      make(map[string]*Client),
		defaults:     opts.Defaults,
		limit:        limit,
		burst:        burst,
		pingInterval: opts.PingInterval,
		log:          opts.Logger,
	}
}

// Bind sets the room coordinator. The coordinator needs the hub as its
// emitter, so the two are wired after construction.
func (h *Hub) Bind(rooms Rooms) {
	h.rooms = rooms
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client. Each Serve loop then runs its normal
// leave path.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.shutdown()
	}
}

// Send implements game.Emitter. It is called with a room lock held and
// must not block.
func (h *Hub) Send(playerID string, msg game.Message) {
	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("event", msg.Type).Msg("failed to encode message")
		return
	}
	switch err := c.enqueue(data); {
	case errors.Is(err, errOutboxFull):
		// a dropped frame leaves the client out of sync
		h.log.Warn().Str("player", playerID).Str("event", msg.Type).Msg("outbox full, disconnecting client")
		c.shutdown()
	case err != nil:
		h.log.Debug().Str("player", playerID).Str("event", msg.Type).Msg("client already closed, message skipped")
	}
}

// Serve runs conn until it closes, then removes the player from any room.
func (h *Hub) Serve(conn Connection) {
	c := newClient(conn, h.limit, h.burst)
	h.register(c)
	go c.writePump(h.pingInterval)

	h.log.Info().Str("player", c.id).Msg("🔌 client connected")
	h.Send(c.id, game.Message{Type: game.EventConnected, Data: connectedData{ID: c.id}})

	for {
		data, err := conn.Read()
		if err != nil {
			break
		}
		if !c.limiter.Allow() {
			h.log.Debug().Str("player", c.id).Msg("event rate exceeded, dropping")
			continue
		}
		h.handle(c, data)
	}

	h.unregister(c)
	c.shutdown()
	if c.roomCode != "" {
		h.rooms.Leave(c.roomCode, c.id)
	}
	h.log.Info().Str("player", c.id).Str("room", c.roomCode).Msg("❌ client disconnected")
}

type connectedData struct {
	ID string `json:"id"`
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.id)
}

func (h *Hub) handle(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Debug().Err(err).Str("player", c.id).Msg("malformed frame")
		return
	}

	var err error
	switch env.Type {
	case game.EventCreateRoom:
		err = h.createRoom(c, env.Data)
	case game.EventJoinRoom:
		err = h.joinRoom(c, env.Data)
	case game.EventStartGame:
		err = h.inRoom(c, func(code string) error { return h.rooms.StartGame(code, c.id) })
	case game.EventSubmitGuess:
		guess := decodeGuess(env.Data)
		err = h.inRoom(c, func(code string) error { return h.rooms.SubmitGuess(code, c.id, guess) })
	case game.EventRestartGame:
		err = h.inRoom(c, func(code string) error { return h.rooms.RestartGame(code, c.id) })
	case game.EventRequestLeaderboard:
		err = h.inRoom(c, func(code string) error { return h.rooms.SendLeaderboard(code, c.id) })
	default:
		h.log.Debug().Str("player", c.id).Str("event", env.Type).Msg("unknown event")
		return
	}

	if err != nil {
		h.log.Debug().Err(err).Str("player", c.id).Str("event", env.Type).Msg("event rejected")
		h.Send(c.id, game.Message{Type: game.EventError, Data: game.ErrorData{Message: game.ClientMessage(err)}})
	}
}

func (h *Hub) createRoom(c *Client, data json.RawMessage) error {
	if c.roomCode != "" {
		return game.ErrAlreadyInRoom
	}
	req := decodeCreateRoom(data, h.defaults)
	room := h.rooms.CreateRoom(c.id, req.Username, req.Settings)
	c.roomCode = room.Code()
	return nil
}

func (h *Hub) joinRoom(c *Client, data json.RawMessage) error {
	req := decodeJoinRoom(data)
	if c.roomCode != "" {
		if c.roomCode == req.RoomCode {
			return h.rooms.Rejoin(c.roomCode, c.id)
		}
		return game.ErrAlreadyInRoom
	}
	room, err := h.rooms.JoinRoom(c.id, req.RoomCode, req.Username)
	if err != nil {
		return err
	}
	c.roomCode = room.Code()
	return nil
}

// inRoom runs fn against the bound room. Unbound clients are ignored.
func (h *Hub) inRoom(c *Client, fn func(code string) error) error {
	if c.roomCode == "" {
		h.log.Debug().Str("player", c.id).Msg("event from client outside any room")
		return nil
	}
	err := fn(c.roomCode)
	if errors.Is(err, game.ErrRoomNotFound) || errors.Is(err, game.ErrNotInRoom) {
		// the room went away underneath this connection
		c.roomCode = ""
	}
	return err
}
