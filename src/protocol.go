package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"coin-arena/instance"
)

// Server -> client message types.
const (
	MsgPlayerJoined = "PLAYER_JOINED"
	MsgSpectator    = "SPECTATOR"
	MsgGameState    = "GAME_STATE"
	MsgGameStart    = "GAME_START"
	MsgGameOver     = "GAME_OVER"
)

// Client -> server message types.
const (
	MsgStartGame = "START_GAME"
	MsgInput     = "INPUT"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

type PlayerJoinedMessage struct {
	Type    string            `json:"type"`
	Player  instance.Player   `json:"player"`
	Players []instance.Player `json:"players"`
}

type SpectatorMessage struct {
	Type    string            `json:"type"`
	Players []instance.Player `json:"players"`
}

type GameStateMessage struct {
	Type       string            `json:"type"`
	Players    []instance.Player `json:"players"`
	Coins      []instance.Coin   `json:"coins"`
	GameStatus instance.Status   `json:"gameStatus"`
	Timestamp  int64             `json:"timestamp"`
}

type GameStartMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type FinalScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type GameOverMessage struct {
	Type        string       `json:"type"`
	WinnerID    string       `json:"winnerId"`
	WinnerName  string       `json:"winnerName"`
	FinalScores []FinalScore `json:"finalScores"`
	Timestamp   int64        `json:"timestamp"`
}

func newGameState(snap instance.Snapshot) GameStateMessage {
	return GameStateMessage{
		Type:       MsgGameState,
		Players:    snap.Players,
		Coins:      snap.Coins,
		GameStatus: snap.Status,
		Timestamp:  snap.Timestamp.UnixMilli(),
	}
}

// Direction is a single-step movement request.
type Direction struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// normalize reduces each axis to -1, 0 or 1.
func (d Direction) normalize() Direction {
	return Direction{DX: unitStep(d.DX), DY: unitStep(d.DY)}
}

func unitStep(v float64) float64 {
	switch {
	case math.IsNaN(v), v == 0:
		return 0
	case v > 0:
		return 1
	default:
		return -1
	}
}

// ClientMessage is a decoded inbound message.
type ClientMessage struct {
	Type      string     `json:"type"`
	PlayerID  string     `json:"playerId,omitempty"`
	Direction *Direction `json:"direction,omitempty"`
	Timestamp float64    `json:"timestamp,omitempty"`
}

// DecodeClientMessage parses and validates a client frame.
func DecodeClientMessage(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return ClientMessage{}, fmt.Errorf("%w: empty frame", ErrMalformed)
	}
	var msg ClientMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch msg.Type {
	case MsgStartGame:
	case MsgInput:
		if msg.PlayerID == "" || msg.Direction == nil {
			return ClientMessage{}, fmt.Errorf("%w: INPUT needs playerId and direction", ErrMalformed)
		}
		d := msg.Direction.normalize()
		msg.Direction = &d
	case "":
		return ClientMessage{}, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }
