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

// NewBadCmd is shorthand for marking a PR bad (spec.md §4.3's mark(N,
// ok=false)), for an operator who wants to evict a PR without waiting for
// a failing check_suite to arrive.
func NewBadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bad PR_NUMBER",
		Short: "Mark a staged pull request as bad",
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
			if err := engine.Mark(prNum, false); err != nil {
				log.Error(errors.Wrapf(err, "failed to mark PR #%d bad", prNum), "mark failed")
				os.Exit(1)
			}
		},
	}
	return cmd
}
