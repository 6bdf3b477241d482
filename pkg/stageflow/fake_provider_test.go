package stageflow

import (
	"context"
	"fmt"

	"github.com/jlewi/qline/pkg/provider"
)

// fakeProvider serves a fixed set of PRs from memory.
type fakeProvider struct {
	prs map[int]*provider.PullRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{prs: map[int]*provider.PullRequest{}}
}

func (p *fakeProvider) addPR(number int, branchHead string) {
	p.prs[number] = &provider.PullRequest{
		Number:     number,
		Title:      fmt.Sprintf("PR #%d", number),
		BranchHead: branchHead,
		Author:     provider.Author{Username: "alice", ID: 42},
	}
}

func (p *fakeProvider) GetPR(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	pr, ok := p.prs[number]
	if !ok {
		return nil, fmt.Errorf("no such PR #%d", number)
	}
	return pr, nil
}

func (p *fakeProvider) RepoCloneURL(ctx context.Context, fullName string) (string, error) {
	return "https://example.com/" + fullName + ".git", nil
}

func (p *fakeProvider) ListRepositories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (p *fakeProvider) PostReaction(ctx context.Context, owner, repo string, commentID int64, content string) error {
	return nil
}

// fakeMessages renders a deterministic merge message so tests can assert on
// it without caring about template rendering.
type fakeMessages struct{}

func (fakeMessages) Format(pr *provider.PullRequest) (string, error) {
	return fmt.Sprintf("Merge PR #%d: %s", pr.Number, pr.Title), nil
}
