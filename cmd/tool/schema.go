package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baechuer/user-service/internal/infrastructure/db/postgres"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the Postgres table layout the service expects",
		Long: `Print the DDL for the users table. The service never migrates on its own;
apply this with psql before starting with STORE_DRIVER=postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(postgres.Schema))
			return nil
		},
	}
}
