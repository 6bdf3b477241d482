// Package eventqueue defines the events the Event Dispatcher consumes and a
// FIFO queue safe for concurrent producers (webhook handlers) and a single
// consumer (the dispatcher loop), per spec.md §4.4.
package eventqueue

import "github.com/google/uuid"

// Kind discriminates the event variants spec.md §4.4 lists.
type Kind int

const (
	// KindInitialize triggers a (re-)clone of every repository the provider
	// installation can see.
	KindInitialize Kind = iota
	// KindPing is a liveness check; the dispatcher just logs a reply.
	KindPing
	// KindStop drains the queue and ends the dispatcher loop.
	KindStop
	// KindPrComment is posted when a comment lands on a PR.
	KindPrComment
	// KindCheckCompleted is posted when CI reports a verdict for a commit.
	KindCheckCompleted
)

func (k Kind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindPing:
		return "ping"
	case KindStop:
		return "stop"
	case KindPrComment:
		return "pr_comment"
	case KindCheckCompleted:
		return "check_completed"
	default:
		return "unknown"
	}
}

// Event is the single variant type carrying every event kind's payload.
// Fields not relevant to Kind are left zero.
type Event struct {
	// ID is a monotonically increasing id assigned at creation, for log
	// correlation (spec.md §4.4).
	ID int64
	// CorrelationID is a random UUID generated for each event and logged by
	// the dispatcher. It is not derived from the webhook delivery ID.
	CorrelationID uuid.UUID
	// Cause is a free-form string explaining the event's origin.
	Cause string

	Kind Kind

	// Repo is the "owner/repo" full name. Empty for Initialize, Ping and Stop.
	Repo string

	// PrComment fields.
	PRNumber  int
	CommentID int64
	Body      string

	// CheckCompleted fields.
	Commit string
	Good   bool
}
