package config

import "time"

// Arena Dimensions and Object Sizes
const (
	FIELD_WIDTH   = 960.0 // Playfield width in pixels, must match the client canvas
	FIELD_HEIGHT  = 520.0 // Playfield height in pixels
	PLAYER_RADIUS = 18.0  // Player collision and drawing radius
	COIN_RADIUS   = 10.0  // Coin collision and drawing radius
)

// Gameplay Rules
const (
	PLAYER_SPEED = 5.0 // Pixels moved per INPUT step on each axis
	COIN_VALUE   = 10  // Score awarded per collected coin
	WIN_SCORE    = 100 // Score that ends the match
	MAX_COINS    = 5   // Live coin cap while PLAYING
)

// Spawn points as fractions of the field, rounded to whole pixels.
const (
	PRIMARY_SPAWN_X   = 0.3125 // ~300 for a 960 wide field
	SECONDARY_SPAWN_X = 0.6875 // ~660 for a 960 wide field
	SPAWN_Y           = 0.55   // ~286 for a 520 high field
)

// Player colors by role.
const (
	PrimaryColor   = "#FF6B6B"
	SecondaryColor = "#4ECDC4"
)

// Timing
const (
	TICK_INTERVAL  = 50 * time.Millisecond   // GAME_STATE broadcast period (20Hz)
	SPAWN_INTERVAL = 1000 * time.Millisecond // Coin spawner period
	FLUSH_INTERVAL = 10 * time.Millisecond   // Delivery queue flush period
	LATENCY        = 200 * time.Millisecond  // Artificial delay applied in both directions
)

// DefaultAddr is the single listening endpoint.
const DefaultAddr = ":8080"
