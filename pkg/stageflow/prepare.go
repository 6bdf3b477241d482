package stageflow

import (
	"context"

	"github.com/pkg/errors"
)

// Prepare stages PR number prNum onto the queue: it rebases the PR's head
// onto the current queue tip and folds the result in with a merge commit,
// per spec.md §4.3.1. Any existing good/bad marker from a previous staging
// attempt is cleared, since it no longer corresponds to the rebased commit.
func (e *Engine) Prepare(ctx context.Context, prNum int) error {
	pr, err := e.gh.GetPR(ctx, e.owner, e.repo, prNum)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch PR #%d", prNum)
	}
	marks := e.branches.PR(prNum)

	// Remember where the PR branch was before any rebase, so later rebases
	// (after an eviction) always start from the author's true intent rather
	// than a previously-rebased commit.
	if !e.git.BranchExists(marks.Source()) {
		if err := e.git.NewBranch(marks.Source(), pr.BranchHead, false); err != nil {
			return errors.Wrapf(err, "failed to remember source for PR #%d", prNum)
		}
	}

	if !e.git.BranchExists(e.branches.Queue()) {
		if err := e.git.NewBranch(e.branches.Queue(), e.branches.Target(), false); err != nil {
			return errors.Wrap(err, "failed to create queue branch")
		}
	}

	// Drop whatever the local head branch currently holds and reset it to
	// the remembered source, so the rebase below always starts clean.
	if err := e.git.NewBranch(pr.BranchHead, marks.Source(), true); err != nil {
		return errors.Wrapf(err, "failed to reset head branch for PR #%d", prNum)
	}

	err = e.git.SwitchedBranch(pr.BranchHead, "", false, func() error {
		if err := e.git.NewBranch(marks.RebaseTarget(), e.branches.Queue(), true); err != nil {
			return errors.Wrap(err, "failed to mark rebase target")
		}
		return e.git.Rebase(marks.RebaseTarget())
	})
	if err != nil {
		return errors.Wrapf(err, "failed to rebase PR #%d onto queue", prNum)
	}

	err = e.git.SwitchedBranch(e.branches.Queue(), "", false, func() error {
		message, err := e.messages.Format(pr)
		if err != nil {
			return errors.Wrap(err, "failed to render merge message")
		}
		if _, err := e.git.Merge(pr.BranchHead, message, formatAuthorSignature(pr.Author), e.committer); err != nil {
			return err
		}
		return e.git.NewBranch(marks.Merge(), "HEAD", true)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to merge PR #%d into queue", prNum)
	}

	if err := e.git.Push(ctx, e.branches.Queue(), true); err != nil {
		return errors.Wrap(err, "failed to push queue")
	}

	// Once (re-)enqueued, the PR has no CI verdict yet.
	var toDelete []string
	if e.git.BranchExists(marks.Bad()) {
		toDelete = append(toDelete, marks.Bad())
	}
	if e.git.BranchExists(marks.Good()) {
		toDelete = append(toDelete, marks.Good())
	}
	if len(toDelete) > 0 {
		if err := e.git.DeleteBranch(toDelete, true); err != nil {
			return errors.Wrapf(err, "failed to clear stale CI markers for PR #%d", prNum)
		}
	}
	return nil
}

// Mark records a CI verdict for the PR's current merge marker, per
// spec.md §4.3.2. A bad verdict followed later by a good one (or vice
// versa) simply overwrites the marker — Shake only ever looks at whichever
// one is present when it runs.
func (e *Engine) Mark(prNum int, ok bool) error {
	marks := e.branches.PR(prNum)
	add, remove := marks.Good(), marks.Bad()
	if !ok {
		add, remove = marks.Bad(), marks.Good()
	}

	if err := e.git.NewBranch(add, marks.Merge(), true); err != nil {
		return errors.Wrapf(err, "failed to mark PR #%d", prNum)
	}
	if e.git.BranchExists(remove) {
		if err := e.git.DeleteBranch([]string{remove}, true); err != nil {
			return errors.Wrapf(err, "failed to clear opposite marker for PR #%d", prNum)
		}
	}
	return nil
}
