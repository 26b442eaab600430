package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"coin-arena/config"
	"coin-arena/delivery"
	"coin-arena/instance"
	"coin-arena/logging"
	"coin-arena/results"
)

// Conn is the transport behind one session.
type Conn interface {
	Send([]byte) error
	Close() error
}

// pinger is implemented by transports that need keepalive frames.
type pinger interface {
	Ping() error
}

// SessionRole distinguishes the connection that owns the player pair.
type SessionRole int

const (
	RoleSpectator SessionRole = iota
	RoleController
)

func (r SessionRole) String() string {
	if r == RoleController {
		return "controller"
	}
	return "spectator"
}

// Session is one live connection with its delayed outbound queue.
type Session struct {
	ID   string
	Role SessionRole

	conn     Conn
	outbound *delivery.Queue[[]byte]
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

// inboundEvent is a decoded client message held for the inbound delay.
type inboundEvent struct {
	sessionID string
	msg       ClientMessage
}

// Options tune the simulation. DefaultOptions mirrors the config constants.
type Options struct {
	Field     instance.Field
	MaxCoins  int
	CoinValue int
	WinScore  int
	Speed     float64

	Latency       time.Duration
	TickInterval  time.Duration
	SpawnInterval time.Duration
	FlushInterval time.Duration
	PingInterval  time.Duration
	SendBuffer    int

	Now      func() time.Time
	Rand     *rand.Rand
	NewID    func() string
	Recorder results.Recorder
	Logger   *logrus.Entry
}

// DefaultOptions returns the standard arena rules.
func DefaultOptions() Options {
	return Options{
		Field:         instance.DefaultField(),
		MaxCoins:      config.MAX_COINS,
		CoinValue:     config.COIN_VALUE,
		WinScore:      config.WIN_SCORE,
		Speed:         config.PLAYER_SPEED,
		Latency:       config.LATENCY,
		TickInterval:  config.TICK_INTERVAL,
		SpawnInterval: config.SPAWN_INTERVAL,
		FlushInterval: config.FLUSH_INTERVAL,
		PingInterval:  30 * time.Second,
		SendBuffer:    256,
	}
}

func (o *Options) fillDefaults() {
	def := DefaultOptions()
	if o.Field == (instance.Field{}) {
		o.Field = def.Field
	}
	if o.MaxCoins <= 0 {
		o.MaxCoins = def.MaxCoins
	}
	if o.CoinValue <= 0 {
		o.CoinValue = def.CoinValue
	}
	if o.WinScore <= 0 {
		o.WinScore = def.WinScore
	}
	if o.Speed <= 0 {
		o.Speed = def.Speed
	}
	if o.Latency < 0 {
		o.Latency = 0
	}
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.SpawnInterval <= 0 {
		o.SpawnInterval = def.SpawnInterval
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = def.FlushInterval
	}
	if o.PingInterval <= 0 {
		o.PingInterval = def.PingInterval
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = def.SendBuffer
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// counters are guarded by GameServer.mu.
type counters struct {
	delivered       uint64
	dropped         uint64
	malformed       uint64
	matchesStarted  uint64
	matchesFinished uint64
	coinsCollected  uint64
}

// Stats is a point-in-time view for the operations API.
type Stats struct {
	Sessions            int             `json:"sessions"`
	ControllerConnected bool            `json:"controller_connected"`
	Spectators          int             `json:"spectators"`
	Status              instance.Status `json:"status"`
	Players             int             `json:"players"`
	Coins               int             `json:"coins"`
	Delivered           uint64          `json:"messages_delivered"`
	Dropped             uint64          `json:"messages_dropped"`
	Malformed           uint64          `json:"malformed_inbound"`
	MatchesStarted      uint64          `json:"matches_started"`
	MatchesFinished     uint64          `json:"matches_finished"`
	CoinsCollected      uint64          `json:"coins_collected"`
	UptimeSec           int64           `json:"uptime_sec"`
	LatencyMs           int64           `json:"latency_ms"`
}

// GameServer is the authoritative simulation. Every access to the match,
// the session registry and the queues happens under mu.
type GameServer struct {
	mu           sync.Mutex
	opts         Options
	log          *logrus.Entry
	match        *instance.Match
	sessions     map[string]*Session
	controllerID string
	inbound      *delivery.Queue[inboundEvent]

	matchID   string
	startedAt time.Time
	stats     counters
	startTime time.Time

	upgrader websocket.Upgrader
}
