// Package repoconfig loads and renders the per-repository settings read
// from qline.yml at the root of a working copy, per spec.md §4.7.
package repoconfig

import (
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the config file's name at the root of a working copy.
const FileName = "qline.yml"

// defaultCommitMessage mirrors the teacher's convention of a sensible
// built-in default that most repositories never need to override.
const defaultCommitMessage = `Merge pull request #{{ .Number }}: {{ .Title }}

{{ .Body }}
`

// Config is the full qline.yml shape.
type Config struct {
	Branching     Branching     `yaml:"branching"`
	MergeTemplate MergeTemplate `yaml:"merge_template"`
}

// Branching controls where the queue lives and where it promotes to.
type Branching struct {
	TargetBranch string `yaml:"target_branch"`
	BranchFolder string `yaml:"branch_folder"`
}

// MergeTemplate controls the rendered merge commit.
type MergeTemplate struct {
	CommitMessage string `yaml:"commit_message"`
	Author        Author `yaml:"author"`
}

// Author is the committer identity used for merge commits (spec.md §4.3.1's
// "config.merge_template.author").
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Default returns the in-code defaults every repository inherits from.
func Default() Config {
	return Config{
		Branching: Branching{
			TargetBranch: "main",
			BranchFolder: "mq",
		},
		MergeTemplate: MergeTemplate{
			CommitMessage: defaultCommitMessage,
			Author: Author{
				Name:  "qline",
				Email: "qline@no.email",
			},
		},
	}
}

// Load reads qline.yml from workDir, merging it over Default() with
// dario.cat/mergo so a repository only has to specify what it overrides.
func Load(workDir string) (Config, error) {
	path := filepath.Join(workDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read %v", path)
	}

	cfg := Default()
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse %v", path)
	}
	if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
		return Config{}, errors.Wrapf(err, "failed to merge %v over defaults", path)
	}

	cfg.Branching.BranchFolder = strings.TrimRight(cfg.Branching.BranchFolder, "/")
	return cfg, nil
}

// Marshal renders cfg back to YAML, used by `qline generate` to emit a
// starter file.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}
