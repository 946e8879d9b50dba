package match

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	var q waitQueue
	q.enqueue("a")
	q.enqueue("b")
	q.enqueue("c")

	if q.len() != 3 {
		t.Fatalf("expected len 3, got %d", q.len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.dequeueOldest()
		if !ok {
			t.Fatalf("expected dequeue to succeed")
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
	if _, ok := q.dequeueOldest(); ok {
		t.Error("expected empty queue")
	}
}

func TestQueueRemoveMiddle(t *testing.T) {
	var q waitQueue
	q.enqueue("a")
	q.enqueue("b")
	q.enqueue("c")

	q.remove("b")

	if q.len() != 2 {
		t.Fatalf("expected len 2, got %d", q.len())
	}
	first, _ := q.dequeueOldest()
	second, _ := q.dequeueOldest()
	if first != "a" || second != "c" {
		t.Errorf("expected a, c after removing b, got %q, %q", first, second)
	}
}

func TestQueueRemoveAbsentIsNoop(t *testing.T) {
	var q waitQueue
	q.enqueue("a")

	q.remove("missing")

	if q.len() != 1 {
		t.Errorf("expected len 1, got %d", q.len())
	}
}
