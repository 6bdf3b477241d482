package repoconfig

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jlewi/qline/pkg/provider"
	"github.com/pkg/errors"
)

// MessageFormatter renders merge_template.commit_message for a PR. It
// implements stageflow.MessageFormatter.
type MessageFormatter struct {
	tmpl *template.Template
}

// NewMessageFormatter parses cfg's commit message template once, up front,
// so a malformed template fails at construction rather than mid-merge.
func NewMessageFormatter(cfg Config) (*MessageFormatter, error) {
	tmpl, err := template.New("commit_message").Funcs(sprig.TxtFuncMap()).Parse(cfg.MergeTemplate.CommitMessage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse merge_template.commit_message")
	}
	return &MessageFormatter{tmpl: tmpl}, nil
}

// Format renders the commit message for pr.
func (f *MessageFormatter) Format(pr *provider.PullRequest) (string, error) {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, pr); err != nil {
		return "", errors.Wrapf(err, "failed to render commit message for PR #%v", pr.Number)
	}
	return buf.String(), nil
}
