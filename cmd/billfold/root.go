package main

import (
	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the billfold CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billfold",
		Short: "Billfold - account and invoice service",
		Long: `Billfold manages user accounts, credential verification and
invoices on top of a document store. Sessions are issued as opaque
tokens and held in process memory.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("mongo.uri", "", "document store connection URI")
	cmd.PersistentFlags().String("mongo.database", "", "document store database name")
	cmd.PersistentFlags().String("log.level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log.format", "", "log format (json or text)")

	// Add subcommands
	cmd.AddCommand(NewRegisterCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewInvoiceCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

// loadConfig resolves configuration for a subcommand, folding in the root
// command's persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("billfold", version, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
