package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"coin-arena/instance"
	"coin-arena/results"
)

// apply routes one delayed client message. Caller holds s.mu.
func (s *GameServer) apply(ev inboundEvent, now time.Time) {
	switch ev.msg.Type {
	case MsgStartGame:
		s.handleStart(now)
	case MsgInput:
		s.handleInput(ev.msg.PlayerID, *ev.msg.Direction, now)
	}
}

// handleStart resets the match and starts it when the pair is present.
// A request while PLAYING or FINISHED restarts the match.
func (s *GameServer) handleStart(now time.Time) {
	if err := s.match.Reset(now); err != nil {
		s.log.WithError(err).Debug("start ignored")
		return
	}
	s.matchID = ""
	if s.match.PlayerCount() != 2 || s.match.Status() != instance.StatusWaiting {
		return
	}
	if err := s.match.SetStatus(instance.StatusPlaying); err != nil {
		s.log.WithError(err).Debug("start rejected")
		return
	}
	s.matchID = s.opts.NewID()
	s.startedAt = now
	s.stats.matchesStarted++
	s.log.WithField("match", s.matchID).Info("match started")
	s.broadcast(GameStartMessage{Type: MsgGameStart, Timestamp: millis(now)}, now)
}

// handleInput moves a player one step, collects every overlapping coin and
// finishes the match the moment a score reaches the win threshold.
func (s *GameServer) handleInput(playerID string, dir Direction, now time.Time) {
	if s.match.Status() != instance.StatusPlaying {
		return
	}
	p, ok := s.match.ApplyMovement(playerID, dir.DX*s.opts.Speed, dir.DY*s.opts.Speed)
	if !ok {
		return
	}
	reach := s.opts.Field.PlayerRadius + s.opts.Field.CoinRadius
	for _, c := range s.match.Coins() {
		if p.Distance(c) >= reach {
			continue
		}
		if !s.match.RemoveCoin(c.ID) {
			continue
		}
		score, err := s.match.AddScore(playerID, s.opts.CoinValue)
		if err != nil {
			continue
		}
		s.stats.coinsCollected++
		s.log.WithFields(logrus.Fields{"player": p.Name, "coin": c.ID, "score": score}).Debug("coin collected")

		if score >= s.opts.WinScore && s.match.Status() == instance.StatusPlaying {
			s.finish(playerID, now)
		}
	}
}

// finish transitions to FINISHED, broadcasts GAME_OVER and records the result.
func (s *GameServer) finish(winnerID string, now time.Time) {
	if err := s.match.SetStatus(instance.StatusFinished); err != nil {
		s.log.WithError(err).Warn("finish rejected")
		return
	}
	winner, _ := s.match.Player(winnerID)
	players := s.match.Players()
	scores := make([]FinalScore, 0, len(players))
	recorded := make([]results.Score, 0, len(players))
	for _, p := range players {
		scores = append(scores, FinalScore{ID: p.ID, Name: p.Name, Score: p.Score})
		recorded = append(recorded, results.Score{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	s.stats.matchesFinished++
	s.log.WithFields(logrus.Fields{"match": s.matchID, "winner": winner.Name, "score": winner.Score}).Info("match finished")

	s.broadcast(GameOverMessage{
		Type:        MsgGameOver,
		WinnerID:    winner.ID,
		WinnerName:  winner.Name,
		FinalScores: scores,
		Timestamp:   millis(now),
	}, now)

	s.record(results.MatchResult{
		MatchID:     s.matchID,
		WinnerID:    winner.ID,
		WinnerName:  winner.Name,
		FinalScores: recorded,
		StartedAt:   s.startedAt,
		FinishedAt:  now,
		DurationMs:  now.Sub(s.startedAt).Milliseconds(),
	})
}

// record hands the result to the recorder without holding up the simulation.
func (s *GameServer) record(r results.MatchResult) {
	rec := s.opts.Recorder
	if rec == nil {
		return
	}
	log := s.log.WithField("match", r.MatchID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rec.Record(ctx, r); err != nil {
			log.WithError(err).Warn("record match result")
		}
	}()
}
