package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var (
		identifier string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials and issue a session token",
		Long: `Verify a username or email address against the stored password hash.
On success a session token is printed as JSON with its expiry as epoch
seconds. Identifiers containing a well-formed email address are looked
up by email, everything else by username.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			app, err := newApp(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(ctx) }()

			session, err := app.Auth.Login(ctx, identifier, password)
			if err != nil {
				return err
			}

			out, err := json.Marshal(session)
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "username or email address")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
