package lineproto

import "sync"

// Queue carries response chunks from a connection's reader to its writer in
// order. With limit 0 it is unbounded; otherwise Push blocks while full.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []string
	limit  int
	closed bool
}

func NewQueue(limit int) *Queue {
	q := &Queue{limit: limit}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends s. It returns false once the queue is closed.
func (q *Queue) Push(s string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.limit > 0 && len(q.items) >= q.limit && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return false
	}

	q.items = append(q.items, s)
	q.cond.Broadcast()
	return true
}

// Pop blocks until a chunk is available. After Close it keeps returning the
// remaining chunks and then reports false.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return "", false
	}

	s := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	q.cond.Broadcast()
	return s, true
}

// Close stops further pushes; queued chunks are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Abort closes the queue and drops whatever was still pending.
func (q *Queue) Abort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
