package commands

import (
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-logr/zapr"
	"github.com/jlewi/qline/pkg/gitutil"
	"github.com/jlewi/qline/pkg/repoconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewGenerateCmd emits a starter qline.yml, the in-code defaults marshaled
// back to YAML, for bootstrapping a new repository (spec.md §4.7). When run
// inside a git repository whose local or global config has a user name and
// email set, those replace the generic "qline" committer identity.
func NewGenerateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit a starter qline.yml",
		Run: func(cmd *cobra.Command, args []string) {
			log := zapr.NewLogger(zap.L())

			cfg := repoconfig.Default()
			if root, err := gitutil.LocateRoot("."); err == nil && root != "" {
				if repo, err := git.PlainOpen(root); err == nil {
					if user, err := gitutil.LoadUser(repo); err == nil && user.Name != "" && user.Email != "" {
						cfg.MergeTemplate.Author.Name = user.Name
						cfg.MergeTemplate.Author.Email = user.Email
					}
				}
			}

			data, err := repoconfig.Marshal(cfg)
			if err != nil {
				log.Error(err, "failed to marshal default config")
				os.Exit(1)
			}

			if output == "" {
				os.Stdout.Write(data)
				return
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				log.Error(err, "failed to write config", "path", output)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to write qline.yml to; defaults to stdout")
	return cmd
}
