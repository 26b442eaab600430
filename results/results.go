// Package results records finished matches for operators and downstream consumers.
package results

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Score is one player's final score.
type Score struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Score int    `json:"score" bson:"score"`
}

// MatchResult describes a finished match.
type MatchResult struct {
	MatchID     string    `json:"matchId" bson:"match_id"`
	WinnerID    string    `json:"winnerId" bson:"winner_id"`
	WinnerName  string    `json:"winnerName" bson:"winner_name"`
	FinalScores []Score   `json:"finalScores" bson:"final_scores"`
	StartedAt   time.Time `json:"startedAt" bson:"started_at"`
	FinishedAt  time.Time `json:"finishedAt" bson:"finished_at"`
	DurationMs  int64     `json:"durationMs" bson:"duration_ms"`
}

// Recorder stores or forwards a match result.
type Recorder interface {
	Record(ctx context.Context, r MatchResult) error
	Close(ctx context.Context) error
}

// Lister returns recently recorded results, newest first.
type Lister interface {
	Recent(limit int) []MatchResult
}

// Memory keeps the most recent results in a bounded ring.
type Memory struct {
	mu    sync.RWMutex
	items []MatchResult
	next  int
	full  bool
}

// NewMemory returns a ring holding at most capacity results.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 100
	}
	return &Memory{items: make([]MatchResult, capacity)}
}

func (m *Memory) Record(_ context.Context, r MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[m.next] = r
	m.next = (m.next + 1) % len(m.items)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *Memory) Recent(limit int) []MatchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := m.next
	if m.full {
		n = len(m.items)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]MatchResult, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.items)) % len(m.items)
		out = append(out, m.items[idx])
	}
	return out
}

func (m *Memory) Close(context.Context) error { return nil }

// Multi fans a result out to every recorder.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, r MatchResult) error {
	var errs []error
	for _, rec := range m {
		if err := rec.Record(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
