package gateway

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the transport a client talks through.
type Connection interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	Close(reason string)
}

const writeWait = 10 * time.Second

type websocketConnection struct {
	socket *websocket.Conn
}

// NewWebsocketConnection wraps conn; the read deadline is pushed out by
// pongWait on every pong.
func NewWebsocketConnection(conn *websocket.Conn, pongWait time.Duration) Connection {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &websocketConnection{socket: conn}
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Close(reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	wc.socket.Close()
}
