package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baechuer/user-service/internal/infrastructure/security"
)

type hashConfig struct {
	cost   int
	verify string
}

func newHashPasswordCmd() *cobra.Command {
	cfg := &hashConfig{}

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Long: `Print the bcrypt hash of a password, as the service would store it.
With --verify, compare the password against an existing hash instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHashPassword(cmd, cfg, args[0])
		},
	}

	cmd.Flags().IntVar(&cfg.cost, "cost", security.DefaultBcryptCost, "bcrypt cost (4-31)")
	cmd.Flags().StringVar(&cfg.verify, "verify", "", "existing hash to compare against")

	return cmd
}

func runHashPassword(cmd *cobra.Command, cfg *hashConfig, password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	h := security.NewBcryptHasher(cfg.cost)

	if cfg.verify != "" {
		if err := h.Compare(cfg.verify, password); err != nil {
			return errors.New("password does not match hash")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "match")
		return nil
	}

	if cfg.cost < 4 || cfg.cost > 31 {
		return errors.New("cost must be between 4 and 31")
	}
	hash, err := h.Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
