package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/1ureka/screencast/internal/util"
)

// Client is a connected chat participant.
type Client struct {
	conn *websocket.Conn
	ip   string
	log  *Log

	writeMu sync.Mutex
}

// Dial connects to the chat WebSocket at url. Outbound messages are signed
// with the local address of the socket.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chat server: %w", err)
	}

	ip := conn.LocalAddr().String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return &Client{conn: conn, ip: ip, log: &Log{}}, nil
}

// IP returns the address outbound messages carry.
func (c *Client) IP() string { return c.ip }

// Log returns the messages received so far.
func (c *Client) Log() *Log { return c.log }

// Send posts one line to the room.
func (c *Client) Send(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(Message{IP: c.ip, Message: text}); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}
	return nil
}

// Run reads frames until ctx ends or the server closes the socket. Every
// decoded message is appended to the log and then passed to fn, which may
// be nil. A normal closure returns nil.
func (c *Client) Run(ctx context.Context, fn func(Message)) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("chat connection lost: %w", err)
		}

		msgs, err := DecodeFrame(data)
		if err != nil {
			util.LogWarning("%v", err)
			continue
		}
		c.log.Append(msgs...)
		if fn != nil {
			for _, m := range msgs {
				fn(m)
			}
		}
	}
}

// Close says goodbye and closes the socket.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
