package game

import (
	"time"

	"github.com/sirupsen/logrus"

	"coin-arena/delivery"
)

func newSession(id string, role SessionRole, conn Conn, buffer int) *Session {
	return &Session{
		ID:       id,
		Role:     role,
		conn:     conn,
		outbound: delivery.New[[]byte](),
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

// Connect registers a connection. The first connection of an empty match
// becomes the controller and creates the player pair; later ones spectate.
func (s *GameServer) Connect(conn Conn) *Session {
	s.mu.Lock()
	now := s.opts.Now()

	role := RoleSpectator
	if s.controllerID == "" {
		role = RoleController
	}
	sess := newSession(s.opts.NewID(), role, conn, s.opts.SendBuffer)
	s.sessions[sess.ID] = sess
	log := s.log.WithFields(logrus.Fields{"session": sess.ID, "role": role})

	if role == RoleController {
		s.controllerID = sess.ID
		if !s.match.HasPair() {
			if _, err := s.match.CreatePair(s.opts.NewID(), s.opts.NewID()); err != nil {
				log.WithError(err).Error("create player pair")
			}
		}
		players := s.match.Players()
		msg := PlayerJoinedMessage{Type: MsgPlayerJoined, Players: players}
		if len(players) > 0 {
			msg.Player = players[0]
			log = log.WithFields(logrus.Fields{"player1": players[0].ID, "player2": players[1].ID})
		}
		s.enqueue(sess, msg, now)
		log.Info("controller connected, player pair created")
	} else {
		s.enqueue(sess, SpectatorMessage{Type: MsgSpectator, Players: s.match.Players()}, now)
		log.Info("spectator connected")
	}
	s.mu.Unlock()

	go sess.writePump(s.opts.PingInterval, log)
	return sess
}

// Disconnect removes a session and its pending messages. Losing the controller
// destroys the player pair and returns the match to WAITING.
func (s *GameServer) Disconnect(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sessionID)
	sess.outbound.Clear()
	log := s.log.WithFields(logrus.Fields{"session": sessionID, "role": sess.Role})
	if sessionID == s.controllerID {
		s.controllerID = ""
		s.matchID = ""
		s.match.DestroyPair()
		log.Info("controller disconnected, match reset")
	} else {
		log.Info("spectator disconnected")
	}
	s.mu.Unlock()

	sess.stop()
}

// Receive decodes a client frame and holds it for the inbound delay.
// Malformed or unknown frames are logged and dropped.
func (s *GameServer) Receive(sessionID string, frame []byte) {
	msg, err := DecodeClientMessage(frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.malformed++
		s.log.WithFields(logrus.Fields{"session": sessionID, "frame": truncate(frame, 128)}).
			WithError(err).Warn("discarding inbound message")
		return
	}
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	s.inbound.Enqueue(inboundEvent{sessionID: sessionID, msg: msg}, s.opts.Now(), s.opts.Latency)
}

func (sess *Session) writePump(pingInterval time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	p, canPing := sess.conn.(pinger)
	for {
		select {
		case <-sess.done:
			return
		case msg := <-sess.send:
			if err := sess.conn.Send(msg); err != nil {
				log.WithError(err).Debug("send failed")
			}
		case <-ticker.C:
			if !canPing {
				continue
			}
			if err := p.Ping(); err != nil {
				log.WithError(err).Debug("ping failed")
			}
		}
	}
}

func (sess *Session) stop() {
	sess.stopOnce.Do(func() {
		close(sess.done)
		_ = sess.conn.Close()
	})
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
