// Package instance owns the canonical state of the single running match.
//
// A Match is not safe for concurrent use. The game server serializes every
// read and write under its own lock.
package instance

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPairExists        = errors.New("player pair already exists")
	ErrNoPair            = errors.New("no player pair")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Snapshot is an immutable copy of the match taken at broadcast time.
type Snapshot struct {
	Players   []Player  `json:"players"`
	Coins     []Coin    `json:"coins"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Match holds players (in join order), live coins, status and the last tick time.
type Match struct {
	field    Field
	maxCoins int

	players  map[string]*Player
	order    []string
	coins    []Coin
	status   Status
	lastTick time.Time
}

// NewMatch returns an empty match in WAITING.
func NewMatch(field Field, maxCoins int) *Match {
	return &Match{
		field:    field,
		maxCoins: maxCoins,
		players:  make(map[string]*Player),
		status:   StatusWaiting,
	}
}

// Field returns the playfield geometry.
func (m *Match) Field() Field { return m.field }

// CreatePair creates both players at their spawn points. The pair is created
// atomically so the match never holds exactly one player.
func (m *Match) CreatePair(primaryID, secondaryID string) ([]Player, error) {
	if len(m.players) > 0 {
		return nil, ErrPairExists
	}
	if primaryID == "" || secondaryID == "" || primaryID == secondaryID {
		return nil, fmt.Errorf("create pair: invalid ids %q/%q", primaryID, secondaryID)
	}
	for _, slot := range []struct {
		id   string
		role Role
	}{{primaryID, RolePrimary}, {secondaryID, RoleSecondary}} {
		x, y := slot.role.SpawnPoint(m.field)
		m.players[slot.id] = &Player{
			ID:    slot.id,
			X:     x,
			Y:     y,
			Color: slot.role.Color(),
			Name:  slot.role.Name(),
			Role:  slot.role,
		}
		m.order = append(m.order, slot.id)
	}
	return m.Players(), nil
}

// HasPair reports whether the player pair exists.
func (m *Match) HasPair() bool { return len(m.players) == 2 }

// Reset zeroes scores, respawns both players, clears coins and returns to WAITING.
func (m *Match) Reset(now time.Time) error {
	if !m.HasPair() {
		return ErrNoPair
	}
	for _, p := range m.players {
		p.Score = 0
		p.X, p.Y = p.Role.SpawnPoint(m.field)
	}
	m.coins = nil
	m.status = StatusWaiting
	m.lastTick = now
	return nil
}

// DestroyPair removes both players and all coins and returns to WAITING.
func (m *Match) DestroyPair() {
	m.players = make(map[string]*Player)
	m.order = nil
	m.coins = nil
	m.status = StatusWaiting
}

// ApplyMovement moves a player by (dx, dy) and clamps it to the field.
// It is a no-op unless the match is PLAYING and the player exists.
func (m *Match) ApplyMovement(id string, dx, dy float64) (Player, bool) {
	if m.status != StatusPlaying {
		return Player{}, false
	}
	p, ok := m.players[id]
	if !ok {
		return Player{}, false
	}
	p.X, p.Y = m.field.Clamp(p.X+dx, p.Y+dy)
	return *p, true
}

// SpawnCoin adds a coin if the match is PLAYING and under the cap.
func (m *Match) SpawnCoin(c Coin) bool {
	if m.status != StatusPlaying || len(m.coins) >= m.maxCoins {
		return false
	}
	m.coins = append(m.coins, c)
	return true
}

// RemoveCoin deletes a live coin by id.
func (m *Match) RemoveCoin(id string) bool {
	for i, c := range m.coins {
		if c.ID == id {
			m.coins = append(m.coins[:i], m.coins[i+1:]...)
			return true
		}
	}
	return false
}

// AddScore increases a player's score. Scores never decrease during a match.
func (m *Match) AddScore(id string, delta int) (int, error) {
	if delta < 0 {
		return 0, fmt.Errorf("add score %d: negative delta", delta)
	}
	p, ok := m.players[id]
	if !ok {
		return 0, ErrUnknownPlayer
	}
	p.Score += delta
	return p.Score, nil
}

// SetStatus applies a lifecycle transition. Legal transitions are
// WAITING->PLAYING (pair required), PLAYING->FINISHED and FINISHED->WAITING.
// Leaving PLAYING clears coins.
func (m *Match) SetStatus(next Status) error {
	switch {
	case m.status == StatusWaiting && next == StatusPlaying:
		if !m.HasPair() {
			return fmt.Errorf("%w: %s->%s without a pair", ErrIllegalTransition, m.status, next)
		}
	case m.status == StatusPlaying && next == StatusFinished:
		m.coins = nil
	case m.status == StatusFinished && next == StatusWaiting:
	default:
		return fmt.Errorf("%w: %s->%s", ErrIllegalTransition, m.status, next)
	}
	m.status = next
	return nil
}

// Status returns the current lifecycle state.
func (m *Match) Status() Status { return m.status }

// Player returns a copy of one player.
func (m *Match) Player(id string) (Player, bool) {
	p, ok := m.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of all players in join order.
func (m *Match) Players() []Player {
	out := make([]Player, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.players[id])
	}
	return out
}

// Coins returns a copy of the live coins.
func (m *Match) Coins() []Coin {
	out := make([]Coin, len(m.coins))
	copy(out, m.coins)
	return out
}

// PlayerCount returns 0 or 2.
func (m *Match) PlayerCount() int { return len(m.players) }

// CoinCount returns the number of live coins.
func (m *Match) CoinCount() int { return len(m.coins) }

// Touch records the time of the latest tick.
func (m *Match) Touch(now time.Time) { m.lastTick = now }

// LastTick returns the time recorded by the latest Touch or Reset.
func (m *Match) LastTick() time.Time { return m.lastTick }

// Snapshot copies the match for broadcasting.
func (m *Match) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Players:   m.Players(),
		Coins:     m.Coins(),
		Status:    m.status,
		Timestamp: now,
	}
}
