// Package notify holds the transient user-facing messages produced by workspace actions.
package notify

import (
	"sync"
	"time"

	"github.com/damacus/iron-drive/internal/metrics"
)

// DefaultTTL is how long a notification stays visible
const DefaultTTL = 3 * time.Second

// Severity of a notification
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Notification is a single queued message. ID is the creation time in
// milliseconds, bumped when two messages share a millisecond.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Queue is a FIFO of notifications where every entry removes itself after the TTL.
// There is no cap, no coalescing and no deduplication.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	items  []Notification
	timers map[int64]*time.Timer
	lastID int64
	closed bool
}

// Option configures a Queue
type Option func(*Queue)

// WithClock replaces time.Now for expiry bookkeeping
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a queue whose entries live for ttl
func New(ttl time.Duration, opts ...Option) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{
		ttl:    ttl,
		now:    time.Now,
		timers: make(map[int64]*time.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends a message and schedules its removal
func (q *Queue) Push(message string, severity Severity) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	id := now.UnixMilli()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id

	n := Notification{
		ID:        id,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}
	if q.closed {
		return n
	}
	q.items = append(q.items, n)
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	metrics.RecordNotification(string(severity))
	return n
}

// Success queues a success message
func (q *Queue) Success(message string) Notification { return q.Push(message, Success) }

// Error queues an error message
func (q *Queue) Error(message string) Notification { return q.Push(message, Error) }

// Info queues an informational message
func (q *Queue) Info(message string) Notification { return q.Push(message, Info) }

// List returns the live notifications in arrival order. Entries past their
// expiry are dropped here too, so a poll never sees a stale message even if
// its timer has not fired yet.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked(q.now())
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Len reports the number of live notifications
func (q *Queue) Len() int {
	return len(q.List())
}

// Dismiss removes a notification early. It reports whether it was present.
func (q *Queue) Dismiss(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Close stops all pending timers and drops every message
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.items = nil
	q.closed = true
}

func (q *Queue) pruneLocked(now time.Time) {
	kept := q.items[:0]
	for _, n := range q.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
			continue
		}
		if t, ok := q.timers[n.ID]; ok {
			t.Stop()
			delete(q.timers, n.ID)
		}
	}
	q.items = kept
}
