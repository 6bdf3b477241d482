package eventqueue

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Queue is a FIFO event channel with a monotonic id generator. The channel
// itself provides the concurrency safety: any number of goroutines may call
// the Push* methods, and exactly one consumer should range over Events().
type Queue struct {
	ch      chan Event
	counter int64
}

// New returns a Queue buffered to capacity. A webhook handler facing a full
// queue should treat that as backpressure (spec.md §9's open improvement)
// rather than block indefinitely — see TryPush.
func New(capacity int) *Queue {
	return &Queue{ch: make(chan Event, capacity)}
}

func (q *Queue) nextID() int64 {
	return atomic.AddInt64(&q.counter, 1)
}

func (q *Queue) newEvent(kind Kind, cause string) Event {
	return Event{
		ID:            q.nextID(),
		CorrelationID: uuid.New(),
		Cause:         cause,
		Kind:          kind,
	}
}

// Push enqueues ev, blocking until there is room or ctx is cancelled.
func (q *Queue) Push(ctx context.Context, ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues ev without blocking. It returns false if the queue is
// full, so a caller like the webhook receiver can report backpressure (HTTP
// 503) instead of stalling the request.
func (q *Queue) TryPush(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Events returns the channel the dispatcher loop ranges over.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Close closes the underlying channel. Callers must not Push after Close.
func (q *Queue) Close() {
	close(q.ch)
}

// Initialize builds an Initialize event.
func (q *Queue) Initialize(cause string) Event {
	return q.newEvent(KindInitialize, cause)
}

// Ping builds a Ping event.
func (q *Queue) Ping(cause string) Event {
	return q.newEvent(KindPing, cause)
}

// Stop builds a Stop event.
func (q *Queue) Stop(cause string) Event {
	return q.newEvent(KindStop, cause)
}

// PrComment builds a PrComment event for repo.
func (q *Queue) PrComment(repo string, prNumber int, commentID int64, body, cause string) (Event, error) {
	if repo == "" {
		return Event{}, errors.New("repo is required")
	}
	ev := q.newEvent(KindPrComment, cause)
	ev.Repo = repo
	ev.PRNumber = prNumber
	ev.CommentID = commentID
	ev.Body = body
	return ev, nil
}

// CheckCompleted builds a CheckCompleted event for repo.
func (q *Queue) CheckCompleted(repo, commit string, good bool, cause string) (Event, error) {
	if repo == "" {
		return Event{}, errors.New("repo is required")
	}
	ev := q.newEvent(KindCheckCompleted, cause)
	ev.Repo = repo
	ev.Commit = commit
	ev.Good = good
	return ev, nil
}
