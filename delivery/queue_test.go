package delivery

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEqualDelayIsFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Enqueue(i, epoch, 200*time.Millisecond)
	}
	got := q.PopDue(epoch.Add(200 * time.Millisecond))
	if len(got) != 10 {
		t.Fatalf("popped %d, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d = %d, want FIFO order", i, v)
		}
	}
}

func TestNeverDeliveredEarly(t *testing.T) {
	q := New[string]()
	due := q.Enqueue("hello", epoch, 200*time.Millisecond)
	if !due.Equal(epoch.Add(200 * time.Millisecond)) {
		t.Fatalf("due = %v", due)
	}

	for ms := 0; ms < 200; ms += 10 {
		if got := q.PopDue(epoch.Add(time.Duration(ms) * time.Millisecond)); len(got) != 0 {
			t.Fatalf("delivered at +%dms, before due", ms)
		}
	}
	if got := q.PopDue(epoch.Add(200 * time.Millisecond)); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("PopDue at due = %v", got)
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d after delivery", q.Len())
	}
}

func TestVariableDelaysOrderByDueTime(t *testing.T) {
	q := New[string]()
	q.Enqueue("slow", epoch, 300*time.Millisecond)
	q.Enqueue("fast", epoch, 100*time.Millisecond)
	q.Enqueue("mid", epoch, 200*time.Millisecond)
	q.Enqueue("fast-2", epoch, 100*time.Millisecond)

	got := q.PopDue(epoch.Add(250 * time.Millisecond))
	want := []string{"fast", "fast-2", "mid"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	next, ok := q.NextDue()
	if !ok || !next.Equal(epoch.Add(300*time.Millisecond)) {
		t.Fatalf("NextDue = %v, %v", next, ok)
	}
}

func TestNotYetDueRemainQueued(t *testing.T) {
	q := New[int]()
	q.Enqueue(1, epoch, 200*time.Millisecond)
	q.Enqueue(2, epoch.Add(50*time.Millisecond), 200*time.Millisecond)

	if got := q.PopDue(epoch.Add(210 * time.Millisecond)); len(got) != 1 || got[0] != 1 {
		t.Fatalf("first flush = %v", got)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
	if got := q.PopDue(epoch.Add(260 * time.Millisecond)); len(got) != 1 || got[0] != 2 {
		t.Fatalf("second flush = %v", got)
	}
}

func TestClear(t *testing.T) {
	q := New[int]()
	q.Enqueue(1, epoch, time.Millisecond)
	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("Len = %d after Clear", q.Len())
	}
	if _, ok := q.NextDue(); ok {
		t.Fatalf("NextDue reported an entry after Clear")
	}
	if got := q.PopDue(epoch.Add(time.Second)); len(got) != 0 {
		t.Fatalf("PopDue after Clear = %v", got)
	}
}
