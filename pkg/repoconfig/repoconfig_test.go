package repoconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jlewi/qline/pkg/provider"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644))
}

func Test_Load_MissingFileErrors(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func Test_Load_EmptyFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func Test_Load_OverridesMergeOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
branching:
  target_branch: release
merge_template:
  author:
    name: bot
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "release", cfg.Branching.TargetBranch)
	require.Equal(t, "mq", cfg.Branching.BranchFolder, "unset fields should still inherit the default")
	require.Equal(t, "bot", cfg.MergeTemplate.Author.Name)
	require.Equal(t, "qline@no.email", cfg.MergeTemplate.Author.Email)
	require.Equal(t, defaultCommitMessage, cfg.MergeTemplate.CommitMessage)
}

func Test_Load_StripsTrailingSlashFromBranchFolder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
branching:
  branch_folder: queue/
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "queue", cfg.Branching.BranchFolder)
}

func Test_MessageFormatter_RendersTemplate(t *testing.T) {
	cfg := Default()
	cfg.MergeTemplate.CommitMessage = "PR #{{ .Number }}: {{ .Title | upper }}"

	formatter, err := NewMessageFormatter(cfg)
	require.NoError(t, err)

	msg, err := formatter.Format(&provider.PullRequest{Number: 42, Title: "fix the thing"})
	require.NoError(t, err)
	require.Equal(t, "PR #42: FIX THE THING", msg)
}

func Test_MessageFormatter_RejectsBadTemplate(t *testing.T) {
	cfg := Default()
	cfg.MergeTemplate.CommitMessage = "{{ .Nope"

	_, err := NewMessageFormatter(cfg)
	require.Error(t, err)
}
