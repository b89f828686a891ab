package subscription

import "go.viam.com/viz/wire"

// messageQueue is a bounded FIFO of received payloads. Pushing past the
// limit evicts the oldest entry; reading the latest entry is O(1).
type messageQueue struct {
	entries []wire.Envelope
	limit   int
}

func newMessageQueue(limit int) *messageQueue {
	if limit <= 0 {
		limit = 1
	}
	return &messageQueue{limit: limit}
}

func (q *messageQueue) push(env wire.Envelope) {
	if len(q.entries) == q.limit {
		copy(q.entries, q.entries[1:])
		q.entries = q.entries[:len(q.entries)-1]
	}
	q.entries = append(q.entries, env)
}

func (q *messageQueue) latest() (wire.Envelope, bool) {
	if len(q.entries) == 0 {
		return wire.Envelope{}, false
	}
	return q.entries[len(q.entries)-1], true
}

func (q *messageQueue) len() int {
	return len(q.entries)
}

// all returns the retained envelopes oldest first. Test helper.
func (q *messageQueue) all() []wire.Envelope {
	return q.entries
}
