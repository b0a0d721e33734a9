// Package notify implements the dashboard's toast queue: transient messages,
// at most one per severity, each expiring on its own timer.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/clusterboard/internal/watch"
)

// Severity categorises a toast. It is both the styling key and the dedup key.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultTTL is how long a toast stays visible unless dismissed.
const DefaultTTL = 4000 * time.Millisecond

// ParseSeverity converts a case-insensitive name into a Severity.
func ParseSeverity(value string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(value))); sev {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q", value)
	}
}

// Toast is a single user-facing message.
type Toast struct {
	ID        string
	Text      string
	Severity  Severity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Timer is the handle returned by a Scheduler. Stop may be called repeatedly.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d elapses.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Queue.
type Option func(*Queue)

// WithScheduler replaces time.AfterFunc, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(q *Queue) {
		if s != nil {
			q.schedule = s
		}
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

// WithClock overrides time.Now for CreatedAt/ExpiresAt stamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithIDGenerator overrides the uuid-based toast IDs.
func WithIDGenerator(gen func() string) Option {
	return func(q *Queue) {
		if gen != nil {
			q.newID = gen
		}
	}
}

type entry struct {
	toast Toast
	timer Timer
}

// Queue holds the visible toasts. It is the only writer of its list.
type Queue struct {
	ttl      time.Duration
	schedule Scheduler
	now      func() time.Time
	newID    func() string

	mu      sync.Mutex
	entries []entry
	closed  bool

	changes watch.Hub
}

// New returns an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		ttl:      DefaultTTL,
		schedule: afterFunc,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue inserts a toast with a fresh ID. Any toast already holding the same
// severity is removed first, so the newest message of each category wins.
func (q *Queue) Enqueue(text string, sev Severity) Toast {
	now := q.now()
	toast := Toast{
		ID:        q.newID(),
		Text:      text,
		Severity:  sev,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return toast
	}
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.toast.Severity == sev {
			e.timer.Stop()
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept

	id := toast.ID
	timer := q.schedule(q.ttl, func() { q.Dismiss(id) })
	q.entries = append(q.entries, entry{toast: toast, timer: timer})
	q.mu.Unlock()

	q.changes.Notify()
	return toast
}

// Success, Error, Warning and Info are shorthands for Enqueue.
func (q *Queue) Success(text string) Toast { return q.Enqueue(text, SeveritySuccess) }
func (q *Queue) Error(text string) Toast   { return q.Enqueue(text, SeverityError) }
func (q *Queue) Warning(text string) Toast { return q.Enqueue(text, SeverityWarning) }
func (q *Queue) Info(text string) Toast    { return q.Enqueue(text, SeverityInfo) }

// Dismiss removes the toast with id and cancels its timer. Expiry goes through
// the same path. Unknown or already-removed ids are a no-op returning false.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	idx := -1
	for i, e := range q.entries {
		if e.toast.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return false
	}
	q.entries[idx].timer.Stop()
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	q.mu.Unlock()

	q.changes.Notify()
	return true
}

// DismissAll removes every toast.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	had := len(q.entries) > 0
	q.entries = nil
	q.mu.Unlock()

	if had {
		q.changes.Notify()
	}
}

// List returns the visible toasts in insertion order.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	out := make([]Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.toast
	}
	return out
}

// Len reports the number of visible toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Subscribe returns a channel signalled after every insert or removal.
func (q *Queue) Subscribe() (<-chan struct{}, func()) {
	return q.changes.Subscribe()
}

// Close stops all timers and ignores further Enqueue calls.
func (q *Queue) Close() {
	q.DismissAll()
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
