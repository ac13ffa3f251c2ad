package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/infrastructure/security"
)

// tokenConfig holds flags shared by the token subcommands.
type tokenConfig struct {
	secret  string
	issuer  string
	userID  string
	email   string
	purpose string
	ttl     time.Duration
	compare string
}

func newTokenCmd() *cobra.Command {
	cfg := &tokenConfig{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue, verify and fingerprint service tokens",
	}

	cmd.PersistentFlags().StringVar(&cfg.secret, "secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to $JWT_SECRET)")
	cmd.PersistentFlags().StringVar(&cfg.issuer, "issuer", envOr("JWT_ISSUER", "user-service"), "token issuer")

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTokenIssue(cmd, cfg)
		},
	}
	issue.Flags().StringVar(&cfg.userID, "user-id", "", "subject user id (session tokens)")
	issue.Flags().StringVar(&cfg.email, "email", "", "email claim")
	issue.Flags().StringVar(&cfg.purpose, "purpose", string(auth.PurposeSession), "session or password_reset")
	issue.Flags().DurationVar(&cfg.ttl, "ttl", time.Hour, "token lifetime")

	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenVerify(cmd, cfg, args[0])
		},
	}

	fingerprint := &cobra.Command{
		Use:   "fingerprint <token>",
		Short: "Print the stored fingerprint of a reset token",
		Long: `Print the fingerprint the service persists for a reset token.
With --compare, check it against a stored fingerprint instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenFingerprint(cmd, cfg, args[0])
		},
	}
	fingerprint.Flags().StringVar(&cfg.compare, "compare", "", "stored fingerprint to compare against")

	cmd.AddCommand(issue, verify, fingerprint)
	return cmd
}

func runTokenIssue(cmd *cobra.Command, cfg *tokenConfig) error {
	svc, err := security.NewJWTService(cfg.secret, cfg.issuer)
	if err != nil {
		return err
	}

	claims := auth.TokenClaims{
		ID:      uuid.NewString(),
		UserID:  cfg.userID,
		Email:   cfg.email,
		Purpose: auth.TokenPurpose(cfg.purpose),
	}
	switch claims.Purpose {
	case auth.PurposeSession:
		if claims.UserID == "" {
			return errors.New("--user-id is required for session tokens")
		}
	case auth.PurposePasswordReset:
		if claims.Email == "" {
			return errors.New("--email is required for password_reset tokens")
		}
	default:
		return fmt.Errorf("unknown purpose %q", cfg.purpose)
	}

	tok, err := svc.Issue(claims, cfg.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}

type claimsView struct {
	ID        string    `json:"jti,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

func runTokenVerify(cmd *cobra.Command, cfg *tokenConfig, token string) error {
	svc, err := security.NewJWTService(cfg.secret, cfg.issuer, security.WithDistinguishExpired(true))
	if err != nil {
		return err
	}
	c, err := svc.Verify(token)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(claimsView{
		ID:        c.ID,
		UserID:    c.UserID,
		Email:     c.Email,
		Purpose:   string(c.Purpose),
		ExpiresAt: c.Exp.UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runTokenFingerprint(cmd *cobra.Command, cfg *tokenConfig, token string) error {
	fp := security.Fingerprint(token)
	if cfg.compare == "" {
		fmt.Fprintln(cmd.OutOrStdout(), fp)
		return nil
	}
	if !security.FingerprintEqual(fp, cfg.compare) {
		return errors.New("fingerprint mismatch")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "match")
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
