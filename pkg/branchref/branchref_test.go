package branchref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Formatter(t *testing.T) {
	f := New(Config{TargetBranch: "main", BranchFolder: "mq/"})

	require.Equal(t, "main", f.Target())
	require.Equal(t, "mq/queue", f.Queue())

	pr := f.PR(7)
	require.Equal(t, "mq/pr7/source", pr.Source())
	require.Equal(t, "mq/pr7/rebase-target", pr.RebaseTarget())
	require.Equal(t, "mq/pr7/merge-after-rebase", pr.Merge())
	require.Equal(t, "mq/pr7/good", pr.Good())
	require.Equal(t, "mq/pr7/bad", pr.Bad())
}

func Test_FolderTrailingSlashStripped(t *testing.T) {
	cases := []string{"mq", "mq/", "mq///"}
	for _, folder := range cases {
		f := New(Config{TargetBranch: "main", BranchFolder: folder})
		require.Equal(t, "mq/queue", f.Queue(), "folder=%q", folder)
	}
}

func Test_ParseSlot(t *testing.T) {
	type testCase struct {
		name   string
		ref    string
		number int
		ok     bool
	}

	cases := []testCase{
		{name: "valid", ref: "mq/pr42/merge-after-rebase", number: 42, ok: true},
		{name: "nested folder", ref: "a/b/pr1/merge-after-rebase", number: 1, ok: true},
		{name: "not a merge marker", ref: "mq/pr42/good", ok: false},
		{name: "not numeric", ref: "mq/prabc/merge-after-rebase", ok: false},
		{name: "unrelated ref", ref: "refs/heads/main", ok: false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, ok := ParseSlot(c.ref)
			require.Equal(t, c.ok, ok)
			if c.ok {
				require.Equal(t, c.number, n)
			}
		})
	}
}
