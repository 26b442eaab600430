package instance

import (
	"math"

	"coin-arena/config"
)

// Status is the match lifecycle state.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Role is one of the two fixed player slots. The display name is derived from it.
type Role int

const (
	RolePrimary   Role = iota // "Player 1"
	RoleSecondary             // "Player 2"
)

// Name returns the display name shown to clients.
func (r Role) Name() string {
	if r == RoleSecondary {
		return "Player 2"
	}
	return "Player 1"
}

// Color returns the role's visual color tag.
func (r Role) Color() string {
	if r == RoleSecondary {
		return config.SecondaryColor
	}
	return config.PrimaryColor
}

// SpawnPoint returns the fixed, pixel-rounded spawn position for the role.
func (r Role) SpawnPoint(f Field) (float64, float64) {
	fx := config.PRIMARY_SPAWN_X
	if r == RoleSecondary {
		fx = config.SECONDARY_SPAWN_X
	}
	return math.Round(fx * f.Width), math.Round(config.SPAWN_Y * f.Height)
}

// Field describes the playfield geometry shared with clients.
type Field struct {
	Width        float64
	Height       float64
	PlayerRadius float64
	CoinRadius   float64
}

// DefaultField returns the configured arena geometry.
func DefaultField() Field {
	return Field{
		Width:        config.FIELD_WIDTH,
		Height:       config.FIELD_HEIGHT,
		PlayerRadius: config.PLAYER_RADIUS,
		CoinRadius:   config.COIN_RADIUS,
	}
}

// Clamp keeps a player center at least one radius away from every edge.
func (f Field) Clamp(x, y float64) (float64, float64) {
	return clamp(x, f.PlayerRadius, f.Width-f.PlayerRadius),
		clamp(y, f.PlayerRadius, f.Height-f.PlayerRadius)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Player is a controllable avatar. Field names and tags match the wire shape.
type Player struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
	Color string  `json:"color"`
	Name  string  `json:"name"`
	Role  Role    `json:"-"`
}

// Coin is a collectible on the field.
type Coin struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Distance returns the Euclidean distance between a player center and a coin center.
func (p Player) Distance(c Coin) float64 {
	return math.Hypot(p.X-c.X, p.Y-c.Y)
}
