package game

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	maxFrameSize = 4096
)

// wsConn adapts a websocket connection to Conn. Only the session's writePump
// calls Send and Ping.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return c.conn.Close()
}

// HandleConnections upgrades the request and runs the session until the peer goes away.
func (s *GameServer) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	sess := s.Connect(&wsConn{conn: conn})
	s.readPump(sess.ID, conn)
}

// readPump forwards frames to Receive and disconnects on the first read error.
func (s *GameServer) readPump(sessionID string, conn *websocket.Conn) {
	defer s.Disconnect(sessionID)

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithField("session", sessionID).WithError(err).Warn("unexpected close")
			}
			return
		}
		s.Receive(sessionID, frame)
	}
}
