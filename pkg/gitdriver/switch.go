package gitdriver

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
)

// SwitchedBranch checks out name (creating it at source if anew is true),
// runs fn, then restores whichever branch was checked out before the call —
// regardless of whether fn succeeded. Every Flow Engine operation that needs
// a scratch checkout (preparing a PR slot, running a rebase) goes through
// this so it never leaves the working copy on the wrong branch.
func (d *Driver) SwitchedBranch(name, source string, anew bool, fn func() error) error {
	prev, err := d.CurrentBranch()
	if err != nil {
		return errors.Wrap(err, "failed to determine current branch before switch")
	}

	wt, err := d.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "failed to open worktree")
	}

	opts := &git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)}
	if anew {
		if d.BranchExists(name) {
			if err := d.DeleteBranch([]string{name}, true); err != nil {
				return errors.Wrapf(err, "failed to clear existing branch %v before re-creating it", name)
			}
		}
		hash, err := d.repo.ResolveRevision(plumbing.Revision(source))
		if err != nil {
			return errors.Wrapf(err, "failed to resolve source %v", source)
		}
		opts.Create = true
		opts.Hash = *hash
	}

	if err := wt.Checkout(opts); err != nil {
		return errors.Wrapf(err, "failed to checkout branch %v", name)
	}

	fnErr := fn()

	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(prev)}); err != nil {
		if fnErr != nil {
			return errors.Wrapf(fnErr, "also failed to restore branch %v: %v", prev, err)
		}
		return errors.Wrapf(err, "failed to restore branch %v", prev)
	}

	return fnErr
}
