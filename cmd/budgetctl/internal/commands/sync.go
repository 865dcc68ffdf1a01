package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	bankStore "github.com/MrJamesThe3rd/budgetflow/internal/bank/store"
	"github.com/MrJamesThe3rd/budgetflow/internal/database"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run every due bank sync schedule once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.New(cfg.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			runner := bank.NewRunner(bankStore.New(db), bank.RunnerOptions{Workers: cfg.Sync.Workers})

			n, err := runner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced %d schedule(s)\n", n)

			return nil
		},
	}
}
