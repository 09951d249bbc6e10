package sat

import "testing"

func TestBoundedQueueAvg(t *testing.T) {
	q := NewBoundedQueue(3)

	if q.IsFull() {
		t.Error("empty queue should not be full")
	}

	q.Push(2)
	q.Push(4)
	if got, want := q.Avg(), 3.0; got != want {
		t.Errorf("Avg(): got %f, want %f", got, want)
	}
	if q.IsFull() {
		t.Error("queue with 2/3 elements should not be full")
	}

	q.Push(6)
	if !q.IsFull() {
		t.Error("queue with 3/3 elements should be full")
	}
	if got, want := q.Avg(), 4.0; got != want {
		t.Errorf("Avg(): got %f, want %f", got, want)
	}
}

func TestBoundedQueueEvicts(t *testing.T) {
	q := NewBoundedQueue(2)
	q.Push(10)
	q.Push(20)
	q.Push(30) // evicts 10

	if got, want := q.Avg(), 25.0; got != want {
		t.Errorf("Avg(): got %f, want %f", got, want)
	}
}

func TestBoundedQueueClear(t *testing.T) {
	q := NewBoundedQueue(2)
	q.Push(10)
	q.Push(20)
	q.Clear()

	if q.IsFull() {
		t.Error("cleared queue should not be full")
	}

	q.Push(6)
	if got, want := q.Avg(), 6.0; got != want {
		t.Errorf("Avg(): got %f, want %f", got, want)
	}
}

func TestResetSet(t *testing.T) {
	rs := &ResetSet{}
	for i := 0; i < 4; i++ {
		rs.Expand()
	}
	rs.Clear()

	rs.Add(1)
	rs.Add(3)
	if !rs.Contains(1) || !rs.Contains(3) || rs.Contains(0) {
		t.Error("unexpected membership after Add")
	}

	rs.Remove(3)
	if rs.Contains(3) {
		t.Error("3 should have been removed")
	}

	rs.Clear()
	if rs.Contains(1) {
		t.Error("1 should be gone after Clear")
	}
}
