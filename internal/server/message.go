package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/session"
)

// MessageType represents a WebSocket message type.
type MessageType string

const (
	// Client to server messages
	MessageTypeAdvise MessageType = "advise"
	MessageTypeApply  MessageType = "apply"
	MessageTypeReset  MessageType = "reset"
	MessageTypeState  MessageType = "state"

	// Server to client messages
	MessageTypeAdvice  MessageType = "advice"
	MessageTypeSession MessageType = "session"
	MessageTypeError   MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// AdviseData describes a spot. Cards use two-character notation
// ("As Kd"); the board may be empty.
type AdviseData struct {
	Hero      string   `json:"hero"`
	Board     string   `json:"board,omitempty"`
	Opponents int      `json:"opponents"`
	Trials    int      `json:"trials,omitempty"`
	Pot       float64  `json:"pot"`
	Call      float64  `json:"call"`
	HalfKelly *bool    `json:"halfKelly,omitempty"`
	Profile   string   `json:"profile,omitempty"`
	Ranges    []string `json:"ranges,omitempty"`
}

// ApplyData applies the last advice. Bet, when set, replaces the advised
// stake.
type ApplyData struct {
	Bet *float64 `json:"bet,omitempty"`
}

// ResetData restarts the session's bankroll. Zero uses the server default.
type ResetData struct {
	Bankroll float64 `json:"bankroll"`
}

// Server → Client Messages

// AdviceData is the answer to an advise message.
type AdviceData struct {
	Equity    float64 `json:"equity"`
	WinRate   float64 `json:"winRate"`
	TieRate   float64 `json:"tieRate"`
	StdError  float64 `json:"stdError"`
	Trials    int     `json:"trials"`
	Seed      int64   `json:"seed"`
	Truncated bool    `json:"truncated,omitempty"`
	Stopped   string  `json:"stopped"`

	NetOdds  float64 `json:"netOdds"`
	PotOdds  float64 `json:"potOdds"`
	Fraction float64 `json:"fraction"`
	KellyBet float64 `json:"kellyBet"`
	Mode     string  `json:"mode"`

	Bet           float64 `json:"bet"`
	Overridden    bool    `json:"overridden,omitempty"`
	Notation      string  `json:"notation"`
	Street        string  `json:"street"`
	Preflop       string  `json:"preflop,omitempty"`
	BoardCategory string  `json:"boardCategory,omitempty"`
	HandClass     string  `json:"handClass,omitempty"`
	Postflop      string  `json:"postflop,omitempty"`

	Bankroll float64 `json:"bankroll"`
}

func newAdviceData(adv advisor.Advice, bankroll float64) AdviceData {
	d := AdviceData{
		Equity:        adv.Equity(),
		WinRate:       adv.Result.WinRate(),
		TieRate:       adv.Result.TieRate(),
		StdError:      adv.Result.StdError(),
		Trials:        adv.Result.Trials,
		Seed:          adv.Result.Seed,
		Truncated:     adv.Result.Truncated,
		Stopped:       string(adv.Result.Stopped),
		NetOdds:       adv.Kelly.NetOdds,
		PotOdds:       adv.Kelly.PotOdds,
		Fraction:      adv.Kelly.Fraction,
		KellyBet:      adv.Kelly.Bet,
		Mode:          string(adv.Kelly.Mode),
		Bet:           adv.Bet,
		Overridden:    adv.Overridden,
		Notation:      adv.Notation,
		Street:        adv.Street.String(),
		BoardCategory: adv.BoardCategory,
		HandClass:     adv.HandClass,
		Bankroll:      bankroll,
	}
	if adv.Preflop != nil {
		d.Preflop = adv.Preflop.String()
	}
	if adv.Postflop != nil {
		d.Postflop = adv.Postflop.String()
	}
	return d
}

// SessionData reports the connection's session after apply, reset or
// state.
type SessionData struct {
	ID          string          `json:"id"`
	Bankroll    float64         `json:"bankroll"`
	Pot         float64         `json:"pot"`
	HandsPlayed int             `json:"handsPlayed"`
	Last        *session.Record `json:"last,omitempty"`
}

func newSessionData(s session.State) SessionData {
	d := SessionData{
		ID:          s.ID,
		Bankroll:    s.Bankroll,
		Pot:         s.Pot,
		HandsPlayed: s.HandsPlayed,
	}
	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		d.Last = &last
	}
	return d
}

// ErrorData reports a rejected message.
type ErrorData struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
