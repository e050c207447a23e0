package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/poker"
	"github.com/lox/pokerkelly/session"
	"github.com/lox/pokerkelly/strategy"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one client and the session it owns. The session and the
// last advice are only touched by the read loop.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	advisor   *advisor.Advisor
	settings  Settings
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	state session.State
	last  *advisor.Advice
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, adv *advisor.Advisor, settings Settings, state session.State, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		advisor:  adv,
		settings: settings,
		logger:   logger.With().Str("session", state.ID).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		state:    state,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn().Msg("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
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

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug().Str("type", msg.Type.String()).Msg("Received message")

	switch msg.Type {
	case MessageTypeAdvise:
		var data AdviseData
		if err := decode(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse advise data")
			return
		}
		c.handleAdvise(msg, data)

	case MessageTypeApply:
		var data ApplyData
		if err := decode(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse apply data")
			return
		}
		c.handleApply(msg, data)

	case MessageTypeReset:
		var data ResetData
		if err := decode(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse reset data")
			return
		}
		c.handleReset(msg, data)

	case MessageTypeState:
		c.reply(msg, MessageTypeSession, newSessionData(c.state))

	default:
		c.sendError(msg, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// decode accepts an absent payload as the zero value.
func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (c *Connection) handleAdvise(msg *Message, data AdviseData) {
	spot, err := c.spot(data)
	if err != nil {
		c.sendError(msg, "invalid_spot", err.Error())
		return
	}

	adv, err := c.advisor.Advise(c.ctx, c.state, spot)
	if err != nil {
		c.sendError(msg, errorCode(err), err.Error())
		return
	}
	c.last = &adv
	c.reply(msg, MessageTypeAdvice, newAdviceData(adv, c.state.Bankroll))
}

func (c *Connection) spot(data AdviseData) (advisor.Spot, error) {
	hero, err := poker.ParseCards(data.Hero)
	if err != nil {
		return advisor.Spot{}, err
	}
	if len(hero) != 2 {
		return advisor.Spot{}, errors.New("hero needs exactly two cards")
	}
	var board []poker.Card
	if strings.TrimSpace(data.Board) != "" {
		if board, err = poker.ParseCards(data.Board); err != nil {
			return advisor.Spot{}, err
		}
	}

	spot := advisor.Spot{
		Hero:           [2]poker.Card{hero[0], hero[1]},
		Board:          board,
		Opponents:      data.Opponents,
		Trials:         data.Trials,
		Pot:            data.Pot,
		Call:           data.Call,
		HalfKelly:      c.settings.HalfKelly,
		Profile:        c.settings.Profile,
		OpponentRanges: data.Ranges,
	}
	if spot.Trials == 0 {
		spot.Trials = c.settings.Trials
	}
	if data.HalfKelly != nil {
		spot.HalfKelly = *data.HalfKelly
	}
	if data.Profile != "" {
		spot.Profile = data.Profile
	}
	return spot, nil
}

func (c *Connection) handleApply(msg *Message, data ApplyData) {
	if c.last == nil {
		c.sendError(msg, "no_advice", "Nothing to apply: request advice first")
		return
	}
	bet := c.last.Bet
	if data.Bet != nil {
		bet = *data.Bet
	}

	next, _, err := c.advisor.ApplyBet(c.ctx, c.state, bet, c.last.Equity())
	if err != nil {
		c.sendError(msg, errorCode(err), err.Error())
		return
	}
	c.state = next
	c.last = nil
	c.reply(msg, MessageTypeSession, newSessionData(c.state))
}

func (c *Connection) handleReset(msg *Message, data ResetData) {
	bankroll := data.Bankroll
	if bankroll == 0 {
		bankroll = c.settings.StartingBankroll
	}
	next, err := c.state.Reset(bankroll)
	if err != nil {
		c.sendError(msg, errorCode(err), err.Error())
		return
	}
	c.state = next
	c.last = nil
	c.logger.Info().Float64("bankroll", bankroll).Msg("Session reset")
	c.reply(msg, MessageTypeSession, newSessionData(c.state))
}

func (c *Connection) reply(req *Message, t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to create message")
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg) // Ignore send errors
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Error: message})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrInsufficientBankroll):
		return "insufficient_bankroll"
	case errors.Is(err, poker.ErrDeckExhausted):
		return "deck_exhausted"
	case errors.Is(err, strategy.ErrUnknownBoard):
		return "unknown_board"
	case errors.Is(err, poker.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal_error"
	}
}
