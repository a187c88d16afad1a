package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "cofoundr",
		Short:         "CoFoundr AI workflow client",
		Long:          "Submit a startup idea to the CoFoundr service and run the analysis, simulation, brochure, report and LinkedIn steps.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.syncLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.baseURL, "base-url", "", "Co-founder service origin (default http://127.0.0.1:8000)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout (default 60s)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newTUICommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	for _, cmd := range newStepCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}
