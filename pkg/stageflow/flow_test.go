package stageflow

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jlewi/qline/pkg/branchref"
	"github.com/jlewi/qline/pkg/gitdriver"
	"github.com/stretchr/testify/require"
)

func newTestEngine(git GitDriver, gh *fakeProvider) *Engine {
	return New(git, gh, "acme", "widgets",
		branchref.Config{TargetBranch: "main", BranchFolder: "mq"},
		fakeMessages{},
		gitdriver.Signature{Name: "qline", Email: "qline@example.com"},
	)
}

func Test_SuccessfulFlow_SinglePRMerges(t *testing.T) {
	ctx := context.Background()
	git := newFakeGit("main")
	require.NoError(t, git.addPRBranch("pr1-branch", "main", "pr1 work"))

	gh := newFakeProvider()
	gh.addPR(1, "pr1-branch")

	e := newTestEngine(git, gh)

	require.NoError(t, e.Prepare(ctx, 1))
	marks := e.branches.PR(1)
	require.True(t, git.BranchExists(marks.Merge()))
	require.False(t, git.BranchExists(marks.Good()))
	require.False(t, git.BranchExists(marks.Bad()))

	require.NoError(t, e.Mark(1, true))
	require.True(t, git.BranchExists(marks.Good()))

	require.NoError(t, e.Shake(ctx))

	require.False(t, git.BranchExists(marks.Merge()), "merge marker should be cleaned up after promotion")
	require.False(t, git.BranchExists(marks.Good()))
	require.False(t, git.BranchExists("pr1-branch"), "local head copy should be cleaned up after promotion")
	require.Contains(t, git.pushed, "pr1-branch")
	require.Contains(t, git.pushed, "main")
}

func Test_SuccessfulFlow_PrecheckRejectsUnmarkedPR(t *testing.T) {
	ctx := context.Background()
	git := newFakeGit("main")
	require.NoError(t, git.addPRBranch("pr1-branch", "main", "pr1 work"))

	gh := newFakeProvider()
	gh.addPR(1, "pr1-branch")
	e := newTestEngine(git, gh)

	require.NoError(t, e.Prepare(ctx, 1))

	err := e.merge(ctx, 1)
	require.Error(t, err)
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	require.Equal(t, KindNotGood, precondition.Kind)
}

func Test_BadFlow_EvictionRebasesRemainingQueue(t *testing.T) {
	ctx := context.Background()
	git := newFakeGit("main")
	require.NoError(t, git.addPRBranch("pr1-branch", "main", "pr1 work"))
	require.NoError(t, git.addPRBranch("pr2-branch", "main", "pr2 work"))

	gh := newFakeProvider()
	gh.addPR(1, "pr1-branch")
	gh.addPR(2, "pr2-branch")
	e := newTestEngine(git, gh)

	originalTarget := git.hashOf("main")

	require.NoError(t, e.Prepare(ctx, 1))
	require.NoError(t, e.Prepare(ctx, 2))

	require.NoError(t, e.Mark(1, false))

	require.NoError(t, e.Shake(ctx))

	marks1 := e.branches.PR(1)
	marks2 := e.branches.PR(2)

	// PR #1 was evicted: it never reaches merge, so target never advances
	// past its original commit. Its stale merge/bad markers are left as-is —
	// only a re-prepare of PR #1 itself moves the merge marker and clears the
	// bad one.
	require.True(t, git.BranchExists(marks1.Merge()))
	require.True(t, git.BranchExists(marks1.Bad()))
	require.Equal(t, originalTarget, git.hashOf("main"))

	// PR #2 was re-staged directly on top of target, since PR #1 never made it in.
	require.True(t, git.BranchExists(marks2.Merge()))
	queueParent := git.parent[git.hashOf(e.branches.Queue())]
	require.Equal(t, git.hashOf("main"), queueParent)
}

func Test_Prepare_SourceMarkerSurvivesReEnqueue(t *testing.T) {
	// spec.md §8: "After prepare(N), hash_of(source(N)) is unchanged from its
	// pre-call value if it existed" — I4. The only ref the fake's unconditional
	// rebase/merge commit creation doesn't perturb on a repeat Prepare is the
	// source marker itself, so that's what this pins down with go-cmp rather
	// than testify's simpler Equal, to get a structured diff on failure.
	ctx := context.Background()
	git := newFakeGit("main")
	require.NoError(t, git.addPRBranch("pr1-branch", "main", "pr1 work"))

	gh := newFakeProvider()
	gh.addPR(1, "pr1-branch")
	e := newTestEngine(git, gh)

	require.NoError(t, e.Prepare(ctx, 1))
	marks := e.branches.PR(1)
	wantSource := struct{ Source string }{git.hashOf(marks.Source())}

	// Re-enqueue as if the author pushed a new commit: the PR branch moves,
	// but the source marker must not follow it (I4).
	require.NoError(t, git.addPRBranch("pr1-branch", "pr1-branch", "pr1 fixup"))
	require.NoError(t, e.Prepare(ctx, 1))
	gotSource := struct{ Source string }{git.hashOf(marks.Source())}

	if diff := cmp.Diff(wantSource, gotSource); diff != "" {
		t.Fatalf("source marker moved across re-enqueue, violating I4 (-want +got):\n%s", diff)
	}
}

func Test_BadFlow_CannotMergeWhileMarkedBad(t *testing.T) {
	ctx := context.Background()
	git := newFakeGit("main")
	require.NoError(t, git.addPRBranch("pr1-branch", "main", "pr1 work"))

	gh := newFakeProvider()
	gh.addPR(1, "pr1-branch")
	e := newTestEngine(git, gh)

	require.NoError(t, e.Prepare(ctx, 1))
	require.NoError(t, e.Mark(1, false))

	// Mark checks itself off good/bad only, not merge eligibility — merge
	// still refuses to promote, and it reports the absence of a good marker
	// before it would ever report the presence of a bad one.
	err := e.merge(ctx, 1)
	require.Error(t, err)
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	require.Equal(t, KindNotGood, precondition.Kind)
}
