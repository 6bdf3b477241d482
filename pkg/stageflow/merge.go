package stageflow

import (
	"context"

	"github.com/jlewi/qline/pkg/branchref"
	"github.com/pkg/errors"
)

// stagedCommit is one queue commit carrying a PR's merge marker.
type stagedCommit struct {
	hash  string
	prNum int
}

// collectStaging walks the first-parent chain from head down to (excluding)
// until, returning the PRs staged along the way in head-to-target order —
// i.e. most recently staged first. Only commits carrying a merge marker are
// returned; intermediate non-marker commits (there shouldn't be any, since
// every staged PR produces exactly one merge commit, but a hand-edited
// history could) are skipped rather than treated as an error. Shake and the
// obstacle check in merge both walk the queue through this function, so
// neither rejects a queue commit that carries no merge marker.
func collectStaging(git GitDriver, head, until string) ([]stagedCommit, error) {
	commits, err := git.FirstParentLog(head, until)
	if err != nil {
		return nil, err
	}

	var staged []stagedCommit
	for _, c := range commits {
		if prNum, ok := prNumFromDecorations(c.Decorations); ok {
			staged = append(staged, stagedCommit{hash: c.Hash, prNum: prNum})
		}
	}
	return staged, nil
}

func prNumFromDecorations(decorations []string) (int, bool) {
	for _, d := range decorations {
		if n, ok := branchref.ParseSlot(d); ok {
			return n, true
		}
	}
	return 0, false
}

// Merge exposes the internal promotion step directly, for an operator who
// wants to bypass Shake's head-of-queue walk. The precondition checks below
// still apply and fail loudly if they don't hold; it's the caller's
// responsibility to know the PR is actually first in line.
func (e *Engine) Merge(ctx context.Context, prNum int) error {
	return e.merge(ctx, prNum)
}

// merge promotes a staged, CI-approved PR to the target branch (spec.md
// §4.3.3). It is never called directly by the Dispatcher: Shake invokes it
// for each good slot in queue order, and the exported Merge exposes it to
// the CLI. Whether the PR's slot is first in line is checked here.
func (e *Engine) merge(ctx context.Context, prNum int) error {
	pr, err := e.gh.GetPR(ctx, e.owner, e.repo, prNum)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch PR #%d", prNum)
	}
	marks := e.branches.PR(prNum)

	if !e.git.BranchExists(marks.Merge()) {
		return &PreconditionError{Kind: KindNotPrepared, PRNum: prNum, Detail: "has not been prepared yet"}
	}
	if !e.git.BranchExists(marks.Good()) {
		return &PreconditionError{Kind: KindNotGood, PRNum: prNum, Detail: "is not marked as good"}
	}
	if e.git.BranchExists(marks.Bad()) {
		return &PreconditionError{Kind: KindMarkedBad, PRNum: prNum, Detail: "is marked as bad"}
	}

	obstacles, err := collectStaging(e.git, marks.Merge()+"~1", e.branches.Target())
	if err != nil {
		return errors.Wrapf(err, "failed to inspect queue below PR #%d", prNum)
	}
	if len(obstacles) > 0 {
		return &PreconditionError{
			Kind:   KindObstaclesInQueue,
			PRNum:  prNum,
			Detail: "other PRs are still staged ahead of the target branch",
		}
	}

	if err := e.git.SwitchedBranch(marks.Merge(), "", false, func() error {
		return e.git.NewBranch(e.branches.Target(), "HEAD", true)
	}); err != nil {
		return errors.Wrapf(err, "failed to advance target for PR #%d", prNum)
	}

	// Push the PR branch first, then the target — in that order — so GitHub
	// never observes the target pointing past commits the PR branch hasn't
	// caught up with yet.
	if err := e.git.Push(ctx, pr.BranchHead, true); err != nil {
		return errors.Wrapf(err, "failed to push head for PR #%d", prNum)
	}
	if err := e.git.Push(ctx, e.branches.Target(), false); err != nil {
		return errors.Wrapf(err, "failed to push target for PR #%d", prNum)
	}

	return e.git.DeleteBranch([]string{
		marks.Merge(),
		marks.Source(),
		marks.RebaseTarget(),
		marks.Good(),
		pr.BranchHead,
	}, true)
}
