package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetflow/internal/database"
)

func newMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), database.Schema())
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.New(cfg.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", cfg.DB.Name)

			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")

	return cmd
}
