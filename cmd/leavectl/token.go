package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an upload token for the API",
	Long:  `Signs a bearer token with JWT_SECRET_KEY that allows calling the upload, import and preview routes.`,
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "leavectl", "token subject recorded in the sub claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_UPLOAD_EXPIRATION_TIME)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.AuthEnabled() {
		return fmt.Errorf("JWT_SECRET_KEY is not set, upload routes are unauthenticated")
	}

	svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.UploadExpiration)
	token, expiresAt, err := svc.GenerateUploadToken(tokenSubject, tokenTTL)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
