// Package webhook classifies inbound GitHub webhook deliveries into
// eventqueue.Event values and hands them to the Dispatcher, per spec.md
// §4.4/§4.6.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v52/github"
	"github.com/jlewi/qline/pkg/eventqueue"
	"github.com/jlewi/qline/pkg/provider"
	"github.com/pkg/errors"
)

// TriggerPhrase is the comment prefix (after trimming whitespace) that
// enqueues a PrComment event.
const TriggerPhrase = "!qline go"

// ReactionContent is posted on every newly created, non-bot pull request
// comment, independent of whether the comment matched TriggerPhrase. Edited
// or deleted comments, bot comments and comments on plain issues get none.
const ReactionContent = "eyes"

// ErrQueueFull is returned by Handle when the event queue has no room; the
// caller's error callback maps this to an HTTP 503 so GitHub retries the
// delivery.
var ErrQueueFull = errors.New("event queue is full")

// Handler implements github.com/palantir/go-githubapp/githubapp.EventHandler
// for the two event types the Flow Engine cares about.
type Handler struct {
	queue    *eventqueue.Queue
	provider provider.Provider
	log      logr.Logger
}

// NewHandler returns a Handler that enqueues onto queue and reacts to
// comments through provider.
func NewHandler(queue *eventqueue.Queue, p provider.Provider, log logr.Logger) *Handler {
	return &Handler{queue: queue, provider: p, log: log}
}

// Handles lists the webhook event types this handler is registered for.
func (h *Handler) Handles() []string {
	return []string{"issue_comment", "check_suite"}
}

// Handle decodes and classifies a single webhook delivery.
func (h *Handler) Handle(ctx context.Context, eventType, deliveryID string, payload []byte) error {
	log := h.log.WithValues("eventType", eventType, "deliveryID", deliveryID)

	switch eventType {
	case "issue_comment":
		return h.handleIssueComment(ctx, log, payload)
	case "check_suite":
		return h.handleCheckSuite(log, payload)
	default:
		log.Info("ignoring unhandled event type")
		return nil
	}
}

func (h *Handler) handleIssueComment(ctx context.Context, log logr.Logger, payload []byte) error {
	event := &github.IssueCommentEvent{}
	if err := decode(payload, event); err != nil {
		return errors.Wrap(err, "failed to decode IssueCommentEvent")
	}

	if event.GetAction() != "created" {
		return nil
	}
	if event.GetSender().GetType() == "Bot" {
		return nil
	}
	if !event.GetIssue().IsPullRequest() {
		return nil
	}

	repo := event.GetRepo().GetFullName()
	owner := event.GetRepo().GetOwner().GetLogin()
	name := event.GetRepo().GetName()
	commentID := event.GetComment().GetID()
	prNumber := event.GetIssue().GetNumber()
	body := event.GetComment().GetBody()

	// A reaction is recorded regardless of whether the comment matched the
	// trigger phrase; it's an acknowledgement, not an approval.
	if err := h.provider.PostReaction(ctx, owner, name, commentID, ReactionContent); err != nil {
		log.Error(err, "failed to post reaction", "repo", repo, "commentID", commentID)
	}

	if !strings.HasPrefix(strings.TrimSpace(body), TriggerPhrase) {
		return nil
	}

	ev, err := h.queue.PrComment(repo, prNumber, commentID, body, "webhook")
	if err != nil {
		return errors.Wrap(err, "failed to build PrComment event")
	}
	if !h.queue.TryPush(ev) {
		return ErrQueueFull
	}
	return nil
}

func (h *Handler) handleCheckSuite(log logr.Logger, payload []byte) error {
	event := &github.CheckSuiteEvent{}
	if err := decode(payload, event); err != nil {
		return errors.Wrap(err, "failed to decode CheckSuiteEvent")
	}

	if event.GetCheckSuite().GetStatus() != "completed" {
		return nil
	}

	conclusion := event.GetCheckSuite().GetConclusion()
	if conclusion != "success" && conclusion != "failure" {
		// neutral, cancelled, timed_out, etc. carry no good/bad verdict for
		// staging purposes.
		return nil
	}

	repo := event.GetRepo().GetFullName()
	commit := event.GetCheckSuite().GetHeadSHA()

	ev, err := h.queue.CheckCompleted(repo, commit, conclusion == "success", "webhook")
	if err != nil {
		return errors.Wrap(err, "failed to build CheckCompleted event")
	}
	if !h.queue.TryPush(ev) {
		return ErrQueueFull
	}
	return nil
}

func decode(payload []byte, v interface{}) error {
	return json.NewDecoder(bytes.NewReader(payload)).Decode(v)
}
