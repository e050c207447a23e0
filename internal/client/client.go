// Package client talks to a pokerkelly server over WebSocket.
//
// Every call sends one request and blocks until the reply carrying the
// same request ID arrives, so a Client can be shared between goroutines.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerkelly/internal/server" // Reuse message types
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// ErrClosed is returned for requests made after the connection went away.
var ErrClosed = errors.New("connection closed")

// ServerError is an error reply from the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client represents a WebSocket client for the advisor
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	readDone  chan struct{}
	writeDone chan struct{}

	mu      sync.Mutex
	pending map[string]chan *server.Message
	nextID  atomic.Uint64
}

// New creates a client for serverURL. http and https URLs are mapped to
// ws and wss, and an empty path becomes /ws.
func New(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 16),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
		pending:   make(map[string]chan *server.Message),
	}
}

func endpoint(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the server and starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	target, err := endpoint(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Debug("Connecting to server", "url", target)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()

	c.logger.Debug("Connected to server")
	return nil
}

// Close sends a close frame and waits for both pumps to stop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn == nil {
			return
		}
		<-c.writeDone
		if err = c.conn.Close(); errors.Is(err, net.ErrClosed) {
			err = nil
		}
		<-c.readDone
		c.logger.Debug("Disconnected from server")
	})
	return err
}

// Advise asks for advice on a spot. The server keeps it as the advice a
// later Apply uses.
func (c *Client) Advise(ctx context.Context, spot server.AdviseData) (server.AdviceData, error) {
	var out server.AdviceData
	err := c.call(ctx, server.MessageTypeAdvise, spot, server.MessageTypeAdvice, &out)
	return out, err
}

// Apply applies the last advice. A non-nil bet replaces the advised stake.
func (c *Client) Apply(ctx context.Context, bet *float64) (server.SessionData, error) {
	var out server.SessionData
	err := c.call(ctx, server.MessageTypeApply, server.ApplyData{Bet: bet}, server.MessageTypeSession, &out)
	return out, err
}

// Reset restarts the session. Zero uses the server's starting bankroll.
func (c *Client) Reset(ctx context.Context, bankroll float64) (server.SessionData, error) {
	var out server.SessionData
	err := c.call(ctx, server.MessageTypeReset, server.ResetData{Bankroll: bankroll}, server.MessageTypeSession, &out)
	return out, err
}

// State fetches the session.
func (c *Client) State(ctx context.Context) (server.SessionData, error) {
	var out server.SessionData
	err := c.call(ctx, server.MessageTypeState, nil, server.MessageTypeSession, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, t server.MessageType, data any, want server.MessageType, out any) error {
	msg, err := server.NewMessage(t, data)
	if err != nil {
		return err
	}
	msg.RequestID = strconv.FormatUint(c.nextID.Add(1), 10)

	reply := make(chan *server.Message, 1)
	c.mu.Lock()
	c.pending[msg.RequestID] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
	}()

	select {
	case c.send <- msg:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.readDone:
		return ErrClosed
	}

	var resp *server.Message
	select {
	case resp = <-reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.readDone:
		return ErrClosed
	}

	switch resp.Type {
	case want:
		return json.Unmarshal(resp.Data, out)
	case server.MessageTypeError:
		var e server.ErrorData
		if err := json.Unmarshal(resp.Data, &e); err != nil {
			return fmt.Errorf("failed to decode error reply: %w", err)
		}
		return &ServerError{Code: e.Code, Message: e.Error}
	default:
		return fmt.Errorf("unexpected %s reply to %s", resp.Type, t)
	}
}

// readPump routes replies to the calls waiting for them
func (c *Client) readPump() {
	defer close(c.readDone)

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			c.cancel()
			return
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping unsolicited message", "type", msg.Type, "request", msg.RequestID)
			continue
		}
		select {
		case reply <- &msg:
		default:
			c.logger.Warn("Dropping duplicate reply", "request", msg.RequestID)
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writeDone)
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				c.cancel()
				_ = c.conn.Close() // unblocks readPump
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
