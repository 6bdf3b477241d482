// Package commands implements the qline CLI surface: prepare, merge, bad,
// generate and serve, per spec.md §9's CLI entrypoints.
package commands

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	"github.com/jlewi/qline/pkg/appconfig"
	"github.com/jlewi/qline/pkg/branchref"
	"github.com/jlewi/qline/pkg/gitdriver"
	"github.com/jlewi/qline/pkg/gitutil"
	ghprovider "github.com/jlewi/qline/pkg/provider/github"
	"github.com/jlewi/qline/pkg/repoconfig"
	"github.com/jlewi/qline/pkg/stageflow"
	"github.com/pkg/errors"
)

// buildEngine opens the working copy containing the current directory and
// wires up the Flow Engine against it, reading installation credentials
// from the environment (appconfig) and repository settings from qline.yml
// (repoconfig). It's what prepare/merge/bad share: each is a one-shot
// operator command against whatever repository the operator is standing in.
func buildEngine(ctx context.Context, log logr.Logger) (*stageflow.Engine, error) {
	root, err := gitutil.LocateRoot(".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to locate the git repository root")
	}
	if root == "" {
		return nil, errors.New("not inside a git repository")
	}

	appCfg, err := appconfig.Load(os.Getenv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load app configuration")
	}

	adapter, err := ghprovider.New(appCfg.AppID, appCfg.InstallationID, appCfg.PrivateKey, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build GitHub provider")
	}

	driver, err := gitdriver.Open(root, adapter.Token, log)
	if err != nil {
		return nil, err
	}
	clean, err := driver.IsClean()
	if err != nil {
		return nil, err
	}
	if !clean {
		return nil, errors.New("working copy has uncommitted changes to tracked files; commit or stash them first")
	}
	if err := driver.Fetch(ctx); err != nil {
		return nil, err
	}

	cfg, err := repoconfig.Load(root)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		log.Info("no qline.yml found, using defaults")
		cfg = repoconfig.Default()
	}

	formatter, err := repoconfig.NewMessageFormatter(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build message formatter")
	}

	owner, repo, err := driver.OwnerRepo()
	if err != nil {
		return nil, err
	}

	branching := branchref.Config{
		TargetBranch: cfg.Branching.TargetBranch,
		BranchFolder: cfg.Branching.BranchFolder,
	}
	committer := gitdriver.Signature{
		Name:  cfg.MergeTemplate.Author.Name,
		Email: cfg.MergeTemplate.Author.Email,
	}

	return stageflow.New(driver, adapter, owner, repo, branching, formatter, committer), nil
}
