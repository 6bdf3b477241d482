package stageflow

import (
	"context"

	"github.com/jlewi/qline/pkg/util"
	"github.com/pkg/errors"
)

// Shake walks the queue from the target branch upward and promotes or
// evicts PRs based on their CI verdict, per spec.md §4.3.4. It stops at the
// first slot that is neither good nor bad — the walk never looks past an
// unresolved verdict, since nothing downstream can be trusted to still
// apply until that slot is settled.
func (e *Engine) Shake(ctx context.Context) error {
	staged, err := collectStaging(e.git, e.branches.Queue(), e.branches.Target())
	if err != nil {
		return errors.Wrap(err, "failed to collect queue")
	}
	// collectStaging walks head-to-target (newest first); Shake processes
	// oldest-first, the order PRs will actually land in.
	stage := reverseStaged(staged)

	for idx, s := range stage {
		marks := e.branches.PR(s.prNum)
		decorations, err := e.git.BranchesAtRef(s.hash)
		if err != nil {
			return errors.Wrapf(err, "failed to inspect commit for PR #%d", s.prNum)
		}

		isGood := containsBranch(decorations, marks.Good())
		isBad := containsBranch(decorations, marks.Bad())
		if isGood && isBad {
			return &PreconditionError{
				Kind:   KindConflictingMarkers,
				PRNum:  s.prNum,
				Detail: "both good and bad markers are present on the same commit",
			}
		}

		switch {
		case isGood:
			if err := e.merge(ctx, s.prNum); err != nil {
				return err
			}
		case isBad:
			remaining := stage[idx+1:]
			if err := e.rebaseQueueOnto(ctx, e.branches.Target(), remaining); err != nil {
				return err
			}
			return nil
		default:
			// Unresolved verdict: stop here, leave the rest of the queue untouched.
			return nil
		}
	}
	return nil
}

// rebaseQueueOnto rebuilds the queue branch from target, re-staging every
// remaining PR except the ones marked bad (spec.md §4.3.4's eviction path).
// Re-staging failures for individual PRs are accumulated rather than
// aborting the whole rebuild, so one bad rebase doesn't strand every PR
// behind it in limbo.
func (e *Engine) rebaseQueueOnto(ctx context.Context, target string, remaining []stagedCommit) error {
	if err := e.git.NewBranch(e.branches.Queue(), target, true); err != nil {
		return errors.Wrap(err, "failed to reset queue to target")
	}

	var failures []error
	for _, s := range remaining {
		marks := e.branches.PR(s.prNum)
		decorations, err := e.git.BranchesAtRef(s.hash)
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "PR #%d: failed to inspect commit", s.prNum))
			continue
		}
		if containsBranch(decorations, marks.Good()) && containsBranch(decorations, marks.Bad()) {
			failures = append(failures, &PreconditionError{
				Kind:   KindConflictingMarkers,
				PRNum:  s.prNum,
				Detail: "both good and bad markers are present on the same commit",
			})
			continue
		}
		if containsBranch(decorations, marks.Bad()) {
			continue
		}
		if err := e.Prepare(ctx, s.prNum); err != nil {
			failures = append(failures, errors.Wrapf(err, "PR #%d: failed to re-stage", s.prNum))
		}
	}

	if len(failures) > 0 {
		return &util.ListOfErrors{Final: errors.New("failed to rebuild queue after eviction"), Causes: failures}
	}
	return nil
}

func reverseStaged(in []stagedCommit) []stagedCommit {
	out := make([]stagedCommit, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

func containsBranch(haystack []string, needle string) bool {
	for _, b := range haystack {
		if b == needle {
			return true
		}
	}
	return false
}
