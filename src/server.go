package game

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"coin-arena/delivery"
	"coin-arena/instance"
)

// NewGameServer creates a game server with an empty match in WAITING.
func NewGameServer(opts Options) *GameServer {
	opts.fillDefaults()
	s := &GameServer{
		opts:      opts,
		log:       opts.Logger,
		match:     instance.NewMatch(opts.Field, opts.MaxCoins),
		sessions:  make(map[string]*Session),
		inbound:   delivery.New[inboundEvent](),
		startTime: opts.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	return s
}

// Run drives the broadcast tick, the coin spawner and the queue flush on one
// goroutine until ctx is cancelled, then closes every session.
func (s *GameServer) Run(ctx context.Context) {
	tick := time.NewTicker(s.opts.TickInterval)
	spawn := time.NewTicker(s.opts.SpawnInterval)
	flush := time.NewTicker(s.opts.FlushInterval)
	defer func() {
		tick.Stop()
		spawn.Stop()
		flush.Stop()
	}()

	s.log.WithFields(logrus.Fields{
		"tick":    s.opts.TickInterval,
		"spawn":   s.opts.SpawnInterval,
		"flush":   s.opts.FlushInterval,
		"latency": s.opts.Latency,
	}).Info("game loop started")

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			s.log.Info("game loop stopped")
			return
		case <-tick.C:
			s.tick(s.opts.Now())
		case <-spawn.C:
			s.spawnCoin(s.opts.Now())
		case <-flush.C:
			s.flush(s.opts.Now())
		}
	}
}

// tick enqueues a GAME_STATE snapshot to every session while players exist.
func (s *GameServer) tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.PlayerCount() == 0 {
		return
	}
	s.broadcast(newGameState(s.match.Snapshot(now)), now)
}

// spawnCoin adds one coin at a random reachable position while PLAYING and under the cap.
func (s *GameServer) spawnCoin(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Status() != instance.StatusPlaying || s.match.CoinCount() >= s.opts.MaxCoins {
		return
	}
	f := s.opts.Field
	coin := instance.Coin{
		ID: s.opts.NewID(),
		X:  f.PlayerRadius + s.opts.Rand.Float64()*(f.Width-2*f.PlayerRadius),
		Y:  f.PlayerRadius + s.opts.Rand.Float64()*(f.Height-2*f.PlayerRadius),
	}
	if s.match.SpawnCoin(coin) {
		s.log.WithFields(logrus.Fields{"coin": coin.ID, "x": int(coin.X), "y": int(coin.Y)}).Debug("coin spawned")
	}
}

// flush applies inbound messages whose delay has elapsed, then hands every due
// outbound message to its session's writer. A full send buffer drops the message.
func (s *GameServer) flush(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.inbound.PopDue(now) {
		if _, ok := s.sessions[ev.sessionID]; !ok {
			continue
		}
		s.apply(ev, now)
	}

	for _, sess := range s.sessions {
		for _, msg := range sess.outbound.PopDue(now) {
			select {
			case sess.send <- msg:
				s.stats.delivered++
			default:
				s.stats.dropped++
				s.log.WithField("session", sess.ID).Debug("send buffer full, message dropped")
			}
		}
	}
}

// enqueue marshals msg and schedules it for one session after the outbound delay.
func (s *GameServer) enqueue(sess *Session, msg any, now time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.WithError(err).Error("marshal outbound message")
		return
	}
	sess.outbound.Enqueue(data, now, s.opts.Latency)
}

// broadcast marshals msg once and schedules it for every session.
func (s *GameServer) broadcast(msg any, now time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.WithError(err).Error("marshal broadcast")
		return
	}
	for _, sess := range s.sessions {
		sess.outbound.Enqueue(data, now, s.opts.Latency)
	}
}

func (s *GameServer) closeAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sessions = append(sessions, sess)
		delete(s.sessions, id)
	}
	s.controllerID = ""
	s.match.DestroyPair()
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.stop()
	}
}

// Snapshot returns the current match state.
func (s *GameServer) Snapshot() instance.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Snapshot(s.opts.Now())
}

// Stats returns counters and registry sizes for the operations API.
func (s *GameServer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	spectators := len(s.sessions)
	if s.controllerID != "" {
		spectators--
	}
	return Stats{
		Sessions:            len(s.sessions),
		ControllerConnected: s.controllerID != "",
		Spectators:          spectators,
		Status:              s.match.Status(),
		Players:             s.match.PlayerCount(),
		Coins:               s.match.CoinCount(),
		Delivered:           s.stats.delivered,
		Dropped:             s.stats.dropped,
		Malformed:           s.stats.malformed,
		MatchesStarted:      s.stats.matchesStarted,
		MatchesFinished:     s.stats.matchesFinished,
		CoinsCollected:      s.stats.coinsCollected,
		UptimeSec:           int64(s.opts.Now().Sub(s.startTime).Seconds()),
		LatencyMs:           s.opts.Latency.Milliseconds(),
	}
}

// ResetMatch performs the reset half of START_GAME on behalf of an operator.
func (s *GameServer) ResetMatch() (instance.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	if err := s.match.Reset(now); err != nil {
		return instance.Snapshot{}, err
	}
	s.matchID = ""
	s.log.Info("match reset by operator")
	return s.match.Snapshot(now), nil
}
