package match

// waitQueue is the FIFO sequence of request ids awaiting a partner. The
// engine keeps it in lockstep with the request registry: an id is in the
// queue iff its request is in StateWaiting.
type waitQueue struct {
	ids []string
}

// enqueue appends id to the tail.
func (q *waitQueue) enqueue(id string) {
	q.ids = append(q.ids, id)
}

// dequeueOldest removes and returns the head, or ("", false) when empty.
func (q *waitQueue) dequeueOldest() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// remove deletes id from the queue, preserving order. No-op if absent.
func (q *waitQueue) remove(id string) {
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			return
		}
	}
}

// len returns the number of queued ids.
func (q *waitQueue) len() int {
	return len(q.ids)
}
