package gitdriver

import (
	"os/exec"

	"github.com/jlewi/qline/pkg/util"
	"github.com/pkg/errors"
)

// Signature is a commit author or committer identity.
type Signature struct {
	Name  string
	Email string
}

// Rebase replays the commits on the current branch onto onto, using the git
// binary directly — go-git has no rebase plumbing. git rebase itself is not
// transactional, so a failed rebase is aborted before the error is
// returned, leaving the working copy where it started rather than
// mid-conflict.
func (d *Driver) Rebase(onto string) error {
	cmd := exec.Command("git", "rebase", onto)
	cmd.Dir = d.workDir
	if err := d.exec.Run(cmd); err != nil {
		abort := exec.Command("git", "rebase", "--abort")
		abort.Dir = d.workDir
		util.IgnoreError(d.exec.Run(abort))
		return errors.Wrapf(err, "failed to rebase onto %v", onto)
	}
	return nil
}

// Merge merges what into the current branch with --no-ff, then commits with
// an explicit author and committer — something go-git cannot express (it
// has no merge plumbing at all). A conflicting merge is
// aborted before the error is returned, same as Rebase.
func (d *Driver) Merge(what, message string, author Signature, committer Signature) (string, error) {
	merge := exec.Command("git", "merge", "--no-ff", "--no-commit", what)
	merge.Dir = d.workDir
	if err := d.exec.Run(merge); err != nil {
		abort := exec.Command("git", "merge", "--abort")
		abort.Dir = d.workDir
		util.IgnoreError(d.exec.Run(abort))
		return "", errors.Wrapf(err, "failed to merge %v", what)
	}

	commit := exec.Command("git",
		"-c", "user.name="+committer.Name,
		"-c", "user.email="+committer.Email,
		"commit",
		"--author", author.Name+" <"+author.Email+">",
		"-m", message,
	)
	commit.Dir = d.workDir
	if err := d.exec.Run(commit); err != nil {
		return "", errors.Wrapf(err, "failed to commit merge of %v", what)
	}

	hash, err := d.HashOf("HEAD")
	if err != nil {
		return "", errors.Wrap(err, "merge committed but failed to resolve new HEAD")
	}
	return hash, nil
}
