package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var logLevelFlag string
	var projectsDirFlag string

	ctx := newCommandContext(&logLevelFlag, &projectsDirFlag)

	rootCmd := &cobra.Command{
		Use:           "studio",
		Short:         "Heimdex Studio project tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&projectsDirFlag, "projects-dir", "", "Directory holding named projects")

	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newProjectsCommand(ctx))

	return rootCmd
}
