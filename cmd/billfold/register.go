package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/auth"
)

// NewRegisterCmd creates the register subcommand.
func NewRegisterCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Long: `Create a user account with a username, email address and password.
The password is hashed before it is stored; the plaintext never leaves
the process.`,
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

			id, err := app.Accounts.Register(ctx, auth.NewUserParams{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			cmd.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
