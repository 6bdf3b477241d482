package gitutil

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"github.com/pkg/errors"
)

// LocateRoot locates the root of the git repository at path.
// Returns empty string if not a git repo.
func LocateRoot(origPath string) (string, error) {
	// If we don't get the absolute path then for a relative path such as "image.yaml" we end up returning "." as the
	// dir and the loop never terminates
	path, err := filepath.Abs(origPath)
	if err != nil {
		return "", errors.Wrapf(err, "Could not locate git root for %v because the absolute path could not be obtained", origPath)

	}
	fInfo, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "Error stating path %v", path)
	}
	if !fInfo.IsDir() {
		path = filepath.Dir(path)
	}
	for {
		gDir := filepath.Join(path, ".git")
		_, err := os.Stat(gDir)
		if err == nil {
			return path, nil
		}

		if os.IsNotExist(err) {
			path = filepath.Dir(path)
			if path == string(os.PathSeparator) {
				return "", nil
			}
			continue
		}
		return "", errors.Wrapf(err, "Error checking for directory %v", gDir)
	}
}

type User struct {
	Name  string
	Email string
}

// LoadUser gets the user information for the repository.
func LoadUser(r *git.Repository) (*User, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
	}

	if user.Name != "" && user.Email != "" {
		return user, nil
	}

	// Since Name and/or Email aren't set in the local scope. Try the global scope
	gCfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return user, errors.Wrapf(err, "Failed to load GlobalConfig")
	}

	if user.Name == "" {
		user.Name = gCfg.User.Name
	}
	if user.Email == "" {
		user.Email = gCfg.User.Email
	}

	// N.B it doesn't make sense to check the system configuration because that would apply to all users
	// so why would you set the name and email their?
	return user, nil
}

// TrackedIsClean returns true if the repository is clean except for untracked files.
// git.IsClean doesn't work because it doesn't ignore untracked files.
func TrackedIsClean(gitStatus git.Status) bool {
	for _, s := range gitStatus {
		if s.Staging == git.Untracked || s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			return false
		}
	}

	return true
}
