// Package stageflow is the Flow Engine: prepare, mark, shake and the
// internal promotion step described in spec.md §4.3, operating purely
// against branch ref markers as durable state.
package stageflow

import (
	"context"
	"fmt"

	"github.com/jlewi/qline/pkg/branchref"
	"github.com/jlewi/qline/pkg/gitdriver"
	"github.com/jlewi/qline/pkg/provider"
)

// GitDriver is the subset of *gitdriver.Driver the Flow Engine needs. Taking
// an interface rather than the concrete type keeps stageflow testable
// against a fake without touching a real working copy.
type GitDriver interface {
	BranchExists(name string) bool
	NewBranch(name, at string, force bool) error
	DeleteBranch(names []string, force bool) error
	SwitchedBranch(name, source string, anew bool, fn func() error) error
	Rebase(onto string) error
	Merge(what, message string, author, committer gitdriver.Signature) (string, error)
	Push(ctx context.Context, name string, force bool) error
	BranchesAtRef(ref string) ([]string, error)
	FirstParentLog(head, until string) ([]gitdriver.Commit, error)
}

// MessageFormatter renders the merge commit message for a staged PR. The
// concrete implementation (pkg/repoconfig) owns the per-repository template;
// the Flow Engine only needs the rendered result.
type MessageFormatter interface {
	Format(pr *provider.PullRequest) (string, error)
}

// Engine runs the staging operations against one repository.
type Engine struct {
	git       GitDriver
	gh        provider.Provider
	owner     string
	repo      string
	branches  *branchref.Formatter
	messages  MessageFormatter
	committer gitdriver.Signature
}

// New returns an Engine for one repository.
func New(
	git GitDriver,
	gh provider.Provider,
	owner, repo string,
	branching branchref.Config,
	messages MessageFormatter,
	committer gitdriver.Signature,
) *Engine {
	return &Engine{
		git:       git,
		gh:        gh,
		owner:     owner,
		repo:      repo,
		branches:  branchref.New(branching),
		messages:  messages,
		committer: committer,
	}
}

func (e *Engine) fullName() string {
	return fmt.Sprintf("%s/%s", e.owner, e.repo)
}

// formatAuthorSignature derives the merge commit's author identity from the
// PR author, using GitHub's noreply-address convention so the commit
// attributes correctly without needing the author's real email.
func formatAuthorSignature(author provider.Author) gitdriver.Signature {
	email := fmt.Sprintf("%s@users.noreply.github.com", author.Username)
	if author.ID != 0 {
		email = fmt.Sprintf("%d+%s", author.ID, email)
	}
	return gitdriver.Signature{Name: author.Username, Email: email}
}
