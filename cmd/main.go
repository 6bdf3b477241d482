package main

import (
	"fmt"
	"os"

	"github.com/jlewi/qline/cmd/commands"
	"github.com/jlewi/qline/pkg/util"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// N.B these will get set by goreleaser
// https://goreleaser.com/cookbooks/using-main.version
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

type globalOptions struct {
	devLogger bool
	level     string
}

var (
	log      logr.Logger
	gOptions = globalOptions{}

	rootCmd = &cobra.Command{
		Short: "qline runs a merge queue controller backed entirely by git branch refs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = util.SetupLogger(gOptions.level, gOptions.devLogger)
		},
	}
)

func init() {
	rootCmd.AddCommand(commands.NewPrepareCmd())
	rootCmd.AddCommand(commands.NewMergeCmd())
	rootCmd.AddCommand(commands.NewBadCmd())
	rootCmd.AddCommand(commands.NewGenerateCmd())
	rootCmd.AddCommand(commands.NewServeCmd())
	rootCmd.AddCommand(newVersionCmd(os.Stdout))

	rootCmd.PersistentFlags().BoolVar(&gOptions.devLogger, "dev-logger", false, "If true configure the logger for development; i.e. non-json output")
	rootCmd.PersistentFlags().StringVarP(&gOptions.level, "level", "", "info", "Log level: error info or debug ("+util.VerbosityDescription()+")")
}

func newVersionCmd(w *os.File) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Return version",
		Example: `qline version`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(w, "qline %s, commit %s, built at %s by %s\n", version, commit, date, builtBy)
		},
	}
	return cmd
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err, "main failed")
		os.Exit(1)
	}
}
