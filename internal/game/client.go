package game

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client is one live websocket connection. The ID is the connectionId the
// rest of the system refers to; Identity is the stable player identity the
// connection authenticated as on join.
type Client struct {
	ID       string
	Identity string
	Avatar   string
	RoomCode string

	conn       *websocket.Conn
	writeMu    sync.Mutex
	superseded atomic.Bool
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, conn: conn}
}

// SendJSON serializes writes onto the connection. gorilla/websocket allows
// only one concurrent writer, and broadcasts come from many goroutines.
func (c *Client) SendJSON(v any) error {
	if c == nil || c.conn == nil {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	_ = c.conn.Close()
}

func (c *Client) markSuperseded() {
	c.superseded.Store(true)
}

// Superseded reports whether a newer connection for the same identity took
// over; the read-loop teardown must then leave room state alone.
func (c *Client) Superseded() bool {
	return c.superseded.Load()
}
