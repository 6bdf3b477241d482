// Package controller wires the Provider Adapter, per-repository working
// copies, and the Flow Engine together behind the Dispatcher's Handler
// interface — the glue spec.md doesn't name as its own component but that
// every operation ultimately runs through.
package controller

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/jlewi/qline/pkg/branchref"
	"github.com/jlewi/qline/pkg/eventqueue"
	"github.com/jlewi/qline/pkg/gitdriver"
	"github.com/jlewi/qline/pkg/provider"
	"github.com/jlewi/qline/pkg/repoconfig"
	"github.com/jlewi/qline/pkg/stageflow"
	"github.com/jlewi/qline/pkg/util"
	"github.com/pkg/errors"
)

// Controller implements pkg/dispatcher.Handler, giving every event kind a
// concrete action against a real provider and real working copies.
type Controller struct {
	log     logr.Logger
	gh      provider.Provider
	token   gitdriver.TokenFunc
	baseDir string

	mu    sync.Mutex
	repos map[string]*repoState
}

type repoState struct {
	driver *gitdriver.Driver
	engine *stageflow.Engine
}

// New returns a Controller that clones repositories under baseDir and
// authenticates over HTTPS using token.
func New(gh provider.Provider, token gitdriver.TokenFunc, baseDir string, log logr.Logger) *Controller {
	return &Controller{
		log:     log,
		gh:      gh,
		token:   token,
		baseDir: baseDir,
		repos:   map[string]*repoState{},
	}
}

// HandleInitialize clones every repository the installation can see, so the
// controller has a working copy ready before the first real event arrives.
func (c *Controller) HandleInitialize(ctx context.Context) error {
	names, err := c.gh.ListRepositories(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list installation repositories")
	}
	for _, fullName := range names {
		if _, err := c.ensureRepo(ctx, fullName); err != nil {
			c.log.Error(err, "failed to prepare working copy", "repo", fullName)
		}
	}
	return nil
}

// HandlePing just confirms the dispatcher loop is alive; there's nothing to
// do beyond logging.
func (c *Controller) HandlePing() {
	c.log.V(1).Info("ping")
}

// HandleStop is a hook for any shutdown bookkeeping. Working copies are left
// on disk; they're reused across restarts.
func (c *Controller) HandleStop() {
	c.log.Info("stopping")
}

// HandlePrComment runs Prepare for the commented-on PR. The webhook layer
// has already confirmed the comment matched the trigger phrase.
func (c *Controller) HandlePrComment(ctx context.Context, ev eventqueue.Event) error {
	st, err := c.ensureRepo(ctx, ev.Repo)
	if err != nil {
		return err
	}
	return st.engine.Prepare(ctx, ev.PRNumber)
}

// HandleCheckCompleted maps the reported commit back to the PR staged at
// that merge marker, records the verdict, and re-runs the promotion walk.
func (c *Controller) HandleCheckCompleted(ctx context.Context, ev eventqueue.Event) error {
	st, err := c.ensureRepo(ctx, ev.Repo)
	if err != nil {
		return err
	}
	if err := st.driver.Fetch(ctx); err != nil {
		return errors.Wrapf(err, "failed to fetch %v before resolving check verdict", ev.Repo)
	}

	prNum, ok, err := findStagedPR(st.driver, ev.Commit)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Info("no staged PR found for commit, ignoring verdict", "repo", ev.Repo, "commit", ev.Commit)
		return nil
	}

	if err := st.engine.Mark(prNum, ev.Good); err != nil {
		return err
	}
	return st.engine.Shake(ctx)
}

// findStagedPR recovers the PR number staged at commit, if any, from the
// merge-marker ref pointing at it.
func findStagedPR(driver *gitdriver.Driver, commit string) (int, bool, error) {
	refs, err := driver.BranchesAtRef(commit)
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to list branches at %v", commit)
	}
	for _, ref := range refs {
		if n, ok := branchref.ParseSlot(ref); ok {
			return n, true, nil
		}
	}
	return 0, false, nil
}

// ensureRepo returns the cached repoState for fullName, cloning or opening
// its working copy and constructing its Flow Engine on first use.
func (c *Controller) ensureRepo(ctx context.Context, fullName string) (*repoState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.repos[fullName]; ok {
		return st, nil
	}

	owner, name, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(c.baseDir, fullName)
	driver, err := c.openOrClone(ctx, workDir, fullName)
	if err != nil {
		return nil, err
	}
	if err := driver.Fetch(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %v", fullName)
	}

	cfg, err := repoconfig.Load(workDir)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		c.log.Info("no qline.yml found, using defaults", "repo", fullName)
		cfg = repoconfig.Default()
	}

	formatter, err := repoconfig.NewMessageFormatter(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build message formatter for %v", fullName)
	}

	branching := branchref.Config{
		TargetBranch: cfg.Branching.TargetBranch,
		BranchFolder: cfg.Branching.BranchFolder,
	}
	committer := gitdriver.Signature{
		Name:  cfg.MergeTemplate.Author.Name,
		Email: cfg.MergeTemplate.Author.Email,
	}

	st := &repoState{
		driver: driver,
		engine: stageflow.New(driver, c.gh, owner, name, branching, formatter, committer),
	}
	c.repos[fullName] = st
	return st, nil
}

func (c *Controller) openOrClone(ctx context.Context, workDir, fullName string) (*gitdriver.Driver, error) {
	if _, err := os.Stat(filepath.Join(workDir, ".git")); err == nil {
		return gitdriver.Open(workDir, c.token, c.log)
	}

	if err := os.MkdirAll(filepath.Dir(workDir), util.FilePermUserGroup); err != nil {
		return nil, errors.Wrapf(err, "failed to create %v", filepath.Dir(workDir))
	}
	url, err := c.gh.RepoCloneURL(ctx, fullName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve clone URL for %v", fullName)
	}
	return gitdriver.Clone(ctx, url, workDir, c.token, c.log)
}

func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid repository full name %q, expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
