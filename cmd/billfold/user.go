package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/auth"
	"github.com/billfold/billfold/internal/config"
)

// NewUserCmd creates the user subcommand group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Read, update or delete user accounts",
	}

	cmd.AddCommand(newUserReadCmd())
	cmd.AddCommand(newUserUpdateCmd())
	cmd.AddCommand(newUserDeleteCmd())

	return cmd
}

// withApp loads config, connects the store and runs fn with the wired
// services. Shared by the user and invoice subcommands.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, app *App) error) error {
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

	return fn(ctx, cfg, app)
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func newUserReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Print a user account as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				user, err := app.Accounts.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, user)
			})
		},
	}
}

func newUserUpdateCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a user account",
		Long: `Update any of username, email or password of a user account.
Unset flags leave the stored value untouched. A new password is hashed
before it is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				modified, err := app.Accounts.Update(ctx, args[0], auth.UpdateAccountParams{
					Username: username,
					Email:    email,
					Password: password,
				})
				if err != nil {
					return err
				}
				if modified {
					cmd.Println("updated")
				} else {
					cmd.Println("no change")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&password, "password", "", "new password")

	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account",
		Long: `Delete a user account. Session tokens already issued to the account
stay valid until they expire; there is no revocation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				deleted, err := app.Accounts.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if deleted {
					cmd.Println("deleted")
				} else {
					cmd.Println("not found")
				}
				return nil
			})
		},
	}
}
