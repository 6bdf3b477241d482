// Package branchref derives the canonical branch ref names the staging engine
// uses as its only durable state. It is pure: no I/O, no mutation.
package branchref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Wire-level constants. These strings are load-bearing: the queue scans ref
// names for them to recover PR identity, so they must never change once a
// repository has PRs staged against them.
const (
	source           = "source"
	rebaseTarget     = "rebase-target"
	mergeAfterRebase = "merge-after-rebase"
	good             = "good"
	bad              = "bad"
	queueBranchName  = "queue"
)

// slotPattern extracts the PR number from a merge-marker ref name of the form
// "<folder>/pr<N>/merge-after-rebase".
var slotPattern = regexp.MustCompile(`^(.+)/pr(\d+)/` + regexp.QuoteMeta(mergeAfterRebase) + `$`)

// Config is the subset of repository configuration the Formatter needs.
type Config struct {
	// TargetBranch is the branch PRs are ultimately promoted to, e.g. "main".
	TargetBranch string
	// BranchFolder namespaces every ref this engine manages, e.g. "mq".
	BranchFolder string
}

// Formatter derives ref names for a repository configuration.
type Formatter struct {
	folder string
	target string
}

// New returns a Formatter for cfg, stripping any trailing slash from the
// branch folder so names never contain an empty path segment.
func New(cfg Config) *Formatter {
	return &Formatter{
		folder: strings.TrimRight(cfg.BranchFolder, "/"),
		target: cfg.TargetBranch,
	}
}

// Target is the configured target branch name.
func (f *Formatter) Target() string {
	return f.target
}

// Queue is the name of the speculative staging branch.
func (f *Formatter) Queue() string {
	return fmt.Sprintf("%s/%s", f.folder, queueBranchName)
}

// PrFormatter derives the per-PR marker ref names for a single PR number.
type PrFormatter struct {
	folder string
	number int
}

// PR returns a PrFormatter scoped to PR number n.
func (f *Formatter) PR(n int) *PrFormatter {
	return &PrFormatter{folder: f.folder, number: n}
}

func (p *PrFormatter) prefix() string {
	return fmt.Sprintf("%s/pr%d", p.folder, p.number)
}

// Source is the untouched pre-rebase tip of the PR's head branch (I4).
func (p *PrFormatter) Source() string {
	return fmt.Sprintf("%s/%s", p.prefix(), source)
}

// RebaseTarget is the queue tip the PR was rebased onto.
func (p *PrFormatter) RebaseTarget() string {
	return fmt.Sprintf("%s/%s", p.prefix(), rebaseTarget)
}

// Merge is the merge commit produced for this PR on the queue; its name is
// the key the queue walk uses to recover PR identity (see ParseSlot).
func (p *PrFormatter) Merge() string {
	return fmt.Sprintf("%s/%s", p.prefix(), mergeAfterRebase)
}

// Good marks that CI succeeded on Merge().
func (p *PrFormatter) Good() string {
	return fmt.Sprintf("%s/%s", p.prefix(), good)
}

// Bad marks that CI failed on Merge().
func (p *PrFormatter) Bad() string {
	return fmt.Sprintf("%s/%s", p.prefix(), bad)
}

// ParseSlot extracts the PR number from a merge-marker ref name. ok is false
// if ref does not match the "<folder>/pr<N>/merge-after-rebase" shape.
func ParseSlot(ref string) (number int, ok bool) {
	m := slotPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}
