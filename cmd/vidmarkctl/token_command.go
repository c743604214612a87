package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vidmark/vidmark/internal/auth"
	"github.com/vidmark/vidmark/internal/config"
)

func newTokenCommand() *cobra.Command {
	var secret string
	var clientName string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Mint an API token signed with the server secret",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = config.GetEnv("API_TOKEN_SECRET", "")
			}
			token, err := auth.GenerateToken(secret, clientName, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default $API_TOKEN_SECRET)")
	cmd.Flags().StringVar(&clientName, "client", "cli", "Client name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenDuration, "Token lifetime")
	return cmd
}
