// Package provider defines the capability interface the Flow Engine and
// Dispatcher consume from a source-code hosting provider. Concrete
// implementations (pkg/provider/github) are injected at the boundary;
// neither the Flow Engine nor the Dispatcher depends on a concrete provider.
package provider

import "context"

// Author identifies the PR author as the provider reports it.
type Author struct {
	Username string
	// ID is the provider's numeric user id. A zero value means the provider
	// didn't expose one, in which case commit author addresses fall back to
	// the username-only form (see pkg/stageflow).
	ID int64
}

// PullRequest is the subset of PR metadata the Flow Engine needs to stage
// and render a merge commit.
type PullRequest struct {
	Number     int
	Title      string
	Body       string
	BranchHead string
	Author     Author
}

// Provider is the capability bundle spec.md §6 calls "capability injection,
// not inheritance": every method the core needs from a hosting provider,
// bundled as one interface rather than baked into a base class.
type Provider interface {
	// GetPR fetches PR metadata by number.
	GetPR(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// RepoCloneURL returns a clone URL with an embedded access token for
	// full name "owner/repo".
	RepoCloneURL(ctx context.Context, fullName string) (string, error)
	// ListRepositories lists every repository the provider installation can
	// see, as "owner/repo" full names.
	ListRepositories(ctx context.Context) ([]string, error)
	// PostReaction reacts to a comment. Side-effect only — the Flow Engine
	// never depends on its outcome (spec.md §6).
	PostReaction(ctx context.Context, owner, repo string, commentID int64, content string) error
}
