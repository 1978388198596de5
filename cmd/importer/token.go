package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agromarket-backend/pkg/jwt"
)

var (
	tokenSupplier string
	tokenRole     string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local testing of the supplier API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(tokenSupplier); err != nil {
			return fmt.Errorf("invalid --supplier: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.App.Environment == "production" {
			return fmt.Errorf("token minting is disabled in production")
		}

		token, err := jwt.NewManager(cfg.JWT.Secret, tokenTTL).GenerateAccessToken(tokenSupplier, "", tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSupplier, "supplier", "s", "", "supplier id (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "supplier", "token role")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("supplier")
	rootCmd.AddCommand(tokenCmd)
}
