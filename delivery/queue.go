// Package delivery holds messages until their due time to simulate network latency.
//
// A Queue is not safe for concurrent use; callers serialize access the same way
// they serialize the state the queued messages describe.
package delivery

import (
	"container/heap"
	"time"
)

type entry[T any] struct {
	payload T
	due     time.Time
	seq     uint64
}

// entries orders by due time, then by enqueue order so equal due times stay FIFO.
type entries[T any] []entry[T]

func (e entries[T]) Len() int { return len(e) }
func (e entries[T]) Less(i, j int) bool {
	if e[i].due.Equal(e[j].due) {
		return e[i].seq < e[j].seq
	}
	return e[i].due.Before(e[j].due)
}
func (e entries[T]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *entries[T]) Push(x any) { *e = append(*e, x.(entry[T])) }
func (e *entries[T]) Pop() any {
	old := *e
	n := len(old)
	item := old[n-1]
	var zero entry[T]
	old[n-1] = zero
	*e = old[:n-1]
	return item
}

// Queue is an ordered buffer of payloads, each with its own due time.
type Queue[T any] struct {
	items entries[T]
	seq   uint64
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue schedules payload for now+delay and returns the due time.
func (q *Queue[T]) Enqueue(payload T, now time.Time, delay time.Duration) time.Time {
	due := now.Add(delay)
	q.Push(payload, due)
	return due
}

// Push schedules payload for an explicit due time.
func (q *Queue[T]) Push(payload T, due time.Time) {
	q.seq++
	heap.Push(&q.items, entry[T]{payload: payload, due: due, seq: q.seq})
}

// PopDue removes and returns every payload due at or before now, earliest first.
// Payloads not yet due stay queued.
func (q *Queue[T]) PopDue(now time.Time) []T {
	var out []T
	for len(q.items) > 0 && !q.items[0].due.After(now) {
		out = append(out, heap.Pop(&q.items).(entry[T]).payload)
	}
	return out
}

// NextDue reports the earliest pending due time.
func (q *Queue[T]) NextDue() (time.Time, bool) {
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].due, true
}

// Len returns the number of pending payloads.
func (q *Queue[T]) Len() int { return len(q.items) }

// Clear drops every pending payload.
func (q *Queue[T]) Clear() {
	q.items = nil
}
