package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const outboxSize = 256

// Client is one open connection. Its room binding is only touched by the
// goroutine running Serve.
type Client struct {
	id       string
	conn     Connection
	outbox   chan []byte
	done     chan struct{}
	limiter  *rate.Limiter
	roomCode string

	closeOnce sync.Once
}

func newClient(conn Connection, limit rate.Limit, burst int) *Client {
	return &Client{
		id:      uuid.NewString(),
		conn:    conn,
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(limit, burst),
	}
}

var (
	errClientClosed = errors.New("client closed")
	errOutboxFull   = errors.New("outbox full")
)

// enqueue never blocks. A full outbox drops the frame and reports
// errOutboxFull.
func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return errOutboxFull
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) writePump(pingInterval time.Duration) {
	var ping <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer c.conn.Close("")

	for {
		select {
		case <-c.done:
			return
		case data := <-c.outbox:
			if err := c.conn.Write(data); err != nil {
				return
			}
		case <-ping:
			if err := c.conn.Ping(); err != nil {
				return
			}
		}
	}
}
