package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for usertool.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "usertool",
		Short:         "Operator utilities for the user service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}
