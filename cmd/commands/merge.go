package commands

import (
	"context"
	"os"
	"strconv"

	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMergeCmd invokes the Flow Engine's internal promotion step directly,
// bypassing Shake's head-of-queue walk (spec.md §4.3.3). It's the
// operator's responsibility to know the PR is actually first in line; the
// precondition checks still run and fail loudly if they don't hold.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge PR_NUMBER",
		Short: "Promote a staged, CI-approved pull request to the target branch",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			log := zapr.NewLogger(zap.L())
			prNum, err := strconv.Atoi(args[0])
			if err != nil {
				log.Error(err, "PR_NUMBER must be an integer", "value", args[0])
				os.Exit(1)
			}

			ctx := context.TODO()
			engine, err := buildEngine(ctx, log)
			if err != nil {
				log.Error(err, "failed to set up")
				os.Exit(1)
			}
			if err := engine.Merge(ctx, prNum); err != nil {
				log.Error(errors.Wrapf(err, "failed to merge PR #%d", prNum), "merge failed")
				os.Exit(1)
			}
		},
	}
	return cmd
}
