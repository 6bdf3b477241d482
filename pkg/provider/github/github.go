// Package github implements pkg/provider.Provider against the GitHub REST
// API, authenticated as a single GitHub App installation.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ghinstallation "github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/go-logr/logr"
	"github.com/google/go-github/v52/github"
	"github.com/gregjones/httpcache"
	"github.com/jlewi/qline/pkg/provider"
	"github.com/pkg/errors"
)

// Adapter is the GitHub-backed provider.Provider. One Adapter corresponds
// to one GitHub App installation, matching spec.md's single-writer-per-
// repository assumption: a single installation typically covers every
// repository in one org, which is the unit this engine manages.
type Adapter struct {
	log    logr.Logger
	tr     *ghinstallation.Transport
	client *github.Client
}

// New returns an Adapter authenticated as installationID under GitHub App
// appID, using privateKey (PEM-encoded) to mint installation tokens.
func New(appID, installationID int64, privateKey []byte, log logr.Logger) (*Adapter, error) {
	tr, err := newTransport(appID, installationID, privateKey)
	if err != nil {
		return nil, err
	}

	// Cache HTTP responses in front of the installation transport so
	// repeated PR/reaction lookups within a dispatcher tick don't all pay a
	// full round trip — mirrors the teacher's client-creator wiring.
	cached := &httpcache.Transport{Transport: tr, Cache: httpcache.NewMemoryCache()}

	return &Adapter{
		log:    log,
		tr:     tr,
		client: github.NewClient(&http.Client{Transport: cached}),
	}, nil
}

func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid repository full name %q, expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// GetPR implements provider.Provider.
func (a *Adapter) GetPR(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	pr, _, err := a.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch PR %v/%v#%v", owner, repo, number)
	}

	var author provider.Author
	if u := pr.GetUser(); u != nil {
		author = provider.Author{Username: u.GetLogin(), ID: u.GetID()}
	}

	return &provider.PullRequest{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		BranchHead: pr.GetHead().GetRef(),
		Author:     author,
	}, nil
}

// RepoCloneURL implements provider.Provider.
func (a *Adapter) RepoCloneURL(ctx context.Context, fullName string) (string, error) {
	if _, _, err := splitFullName(fullName); err != nil {
		return "", err
	}
	token, err := a.tr.Token(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "failed to mint installation token for %v", fullName)
	}
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", token, fullName), nil
}

// Token mints a fresh installation access token, for callers (pkg/gitdriver,
// via its TokenFunc) that need to authenticate their own HTTP requests rather
// than use a URL with the token already embedded.
func (a *Adapter) Token(ctx context.Context) (string, error) {
	return a.tr.Token(ctx)
}

// ListRepositories implements provider.Provider.
func (a *Adapter) ListRepositories(ctx context.Context) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		repos, resp, err := a.client.Apps.ListRepos(ctx, opts)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list installation repositories")
		}
		for _, r := range repos.Repositories {
			names = append(names, r.GetFullName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// PostReaction implements provider.Provider.
func (a *Adapter) PostReaction(ctx context.Context, owner, repo string, commentID int64, content string) error {
	if _, _, err := a.client.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, content); err != nil {
		return errors.Wrapf(err, "failed to react to comment %v on %v/%v", commentID, owner, repo)
	}
	return nil
}
