package gateway

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/JakobPriesner/GeoGuesser/internal/game"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Rooms ---

type MockRooms struct {
	mock.Mock
}

func (m *MockRooms) CreateRoom(playerID, username string, settings game.Settings) *game.Room {
	args := m.Called(playerID, username, settings)
	return args.Get(0).(*game.Room)
}

func (m *MockRooms) JoinRoom(playerID, code, username string) (*game.Room, error) {
	args := m.Called(playerID, code, username)
	room, _ := args.Get(0).(*game.Room)
	return room, args.Error(1)
}

func (m *MockRooms) Rejoin(code, playerID string) error {
	return m.Called(code, playerID).Error(0)
}

func (m *MockRooms) StartGame(code, playerID string) error {
	return m.Called(code, playerID).Error(0)
}

func (m *MockRooms) RestartGame(code, playerID string) error {
	return m.Called(code, playerID).Error(0)
}

func (m *MockRooms) SubmitGuess(code, playerID string, guess game.Guess) error {
	return m.Called(code, playerID, guess).Error(0)
}

func (m *MockRooms) SendLeaderboard(code, playerID string) error {
	return m.Called(code, playerID).Error(0)
}

func (m *MockRooms) Leave(code, playerID string) {
	m.Called(code, playerID)
}

// --- Connection ---

type fakeConnection struct {
	reads chan []byte

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{reads: make(chan []byte, 16)}
}

func (f *fakeConnection) Read() ([]byte, error) {
	data, ok := <-f.reads
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (f *fakeConnection) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeConnection) Ping() error { return nil }

func (f *fakeConnection) Close(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConnection) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.writes...)
}

func (f *fakeConnection) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// --- helpers ---

type decoded struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": event, "data": data})
	require.NoError(t, err)
	return raw
}

// drain returns everything queued for c so far.
func drain(t *testing.T, c *Client) []decoded {
	t.Helper()
	var out []decoded
	for {
		select {
		case data := <-c.outbox:
			var d decoded
			require.NoError(t, json.Unmarshal(data, &d))
			out = append(out, d)
		default:
			return out
		}
	}
}

// roomWithCode builds a real room registered under code for mocks to return.
func roomWithCode(code, hostID string) *game.Room {
	reg := game.NewRegistry(game.WithCodeGenerator(func() string { return code }))
	return reg.CreateRoom(hostID, "Host", game.Settings{GameMode: "capitals", RoundDuration: 60, TotalRounds: 10, ResultDelay: 10})
}
