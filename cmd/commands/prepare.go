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

// NewPrepareCmd stages a PR: rebases its source onto the current queue tip
// and appends it to the queue (spec.md §4.3.2), for an operator nudging CI
// state manually rather than waiting on a webhook.
func NewPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare PR_NUMBER",
		Short: "Stage a pull request at the tail of the merge queue",
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
			if err := engine.Prepare(ctx, prNum); err != nil {
				log.Error(errors.Wrapf(err, "failed to prepare PR #%d", prNum), "prepare failed")
				os.Exit(1)
			}
		},
	}
	return cmd
}
