package registry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"duel/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Client is the outbound side of one websocket connection. Frames are queued
// on a buffered channel and written by WritePump so senders never block on I/O.
type Client struct {
	Handle models.ConnectionHandle
	Conn   *websocket.Conn

	mu     sync.Mutex
	send   chan models.Frame
	closed bool
	hook   func(models.Frame)
}

func NewClient(handle models.ConnectionHandle, conn *websocket.Conn) *Client {
	return &Client{
		Handle: handle,
		Conn:   conn,
		send:   make(chan models.Frame, sendBuffer),
	}
}

// SetSendHook replaces the websocket writer (used in tests).
func (c *Client) SetSendHook(fn func(models.Frame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send queues a frame. It returns false when the client is closed or its
// buffer is full; the frame is dropped in that case.
func (c *Client) Send(frame models.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return true
	}
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops WritePump. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// PrepareRead applies read limits and the pong deadline handler.
func (c *Client) PrepareRead() {
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// WritePump drains the send queue to the connection and keeps it alive with pings.
func (c *Client) WritePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(frame); err != nil {
				logger.Warn("Error sending to connection",
					zap.String("connection", string(c.Handle)), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
