// Package commands implements the budgetctl operator CLI.
package commands

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetflow/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Operator tooling for the BudgetFlow API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newSyncCommand())

	return rootCmd
}

// loadConfig reads an optional .env file and then the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return config.Load()
}
