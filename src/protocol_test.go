package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"coin-arena/instance"
)

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		want    ClientMessage
	}{
		{name: "start", raw: `{"type":"START_GAME","timestamp":1700000000000}`,
			want: ClientMessage{Type: MsgStartGame, Timestamp: 1700000000000}},
		{name: "start without timestamp", raw: `{"type":"START_GAME"}`,
			want: ClientMessage{Type: MsgStartGame}},
		{name: "input", raw: `{"type":"INPUT","playerId":"p1","direction":{"dx":1,"dy":-1},"timestamp":5}`,
			want: ClientMessage{Type: MsgInput, PlayerID: "p1", Direction: &Direction{DX: 1, DY: -1}, Timestamp: 5}},
		{name: "input is normalized", raw: `{"type":"INPUT","playerId":"p1","direction":{"dx":7.5,"dy":-0.2}}`,
			want: ClientMessage{Type: MsgInput, PlayerID: "p1", Direction: &Direction{DX: 1, DY: -1}}},
		{name: "empty", raw: ``, wantErr: ErrMalformed},
		{name: "not json", raw: `hello`, wantErr: ErrMalformed},
		{name: "array", raw: `[1,2]`, wantErr: ErrMalformed},
		{name: "missing type", raw: `{"playerId":"p1"}`, wantErr: ErrMalformed},
		{name: "input without direction", raw: `{"type":"INPUT","playerId":"p1"}`, wantErr: ErrMalformed},
		{name: "input without player", raw: `{"type":"INPUT","direction":{"dx":1,"dy":0}}`, wantErr: ErrMalformed},
		{name: "wrong field type", raw: `{"type":"INPUT","playerId":3,"direction":{"dx":1,"dy":0}}`, wantErr: ErrMalformed},
		{name: "unknown type", raw: `{"type":"GAME_STATE"}`, wantErr: ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeClientMessage([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != tt.want.Type || got.PlayerID != tt.want.PlayerID || got.Timestamp != tt.want.Timestamp {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if (got.Direction == nil) != (tt.want.Direction == nil) {
				t.Fatalf("direction = %v, want %v", got.Direction, tt.want.Direction)
			}
			if got.Direction != nil && *got.Direction != *tt.want.Direction {
				t.Fatalf("direction = %+v, want %+v", *got.Direction, *tt.want.Direction)
			}
		})
	}
}

func TestGameStateWireShape(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	msg := newGameState(instance.Snapshot{
		Players:   []instance.Player{{ID: "a", X: 300, Y: 286, Color: "#FF6B6B", Name: "Player 1"}},
		Coins:     []instance.Coin{},
		Status:    instance.StatusPlaying,
		Timestamp: now,
	})
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	for _, want := range []string{
		`"type":"GAME_STATE"`,
		`"gameStatus":"PLAYING"`,
		`"coins":[]`,
		`"timestamp":1700000000123`,
		`"color":"#FF6B6B"`,
		`"name":"Player 1"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GAME_STATE %s missing %s", got, want)
		}
	}
	if strings.Contains(got, "Role") || strings.Contains(got, "role") {
		t.Errorf("GAME_STATE leaks role: %s", got)
	}
}
