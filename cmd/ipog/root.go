package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/combinatorics/pkg/version"
)

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "ipog",
		Short:        "Generates combinatorial test suites with isolated negative tests",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			if debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			logger.Debugf("log level %s", logger.Level)
		},
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "use debug log level")

	cmd.AddCommand(
		newGenerateCmd(logger),
		newDiagnoseCmd(logger),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the ipog version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}
