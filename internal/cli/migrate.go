package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applies database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBaseApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.migrate(); err != nil {
			return err
		}
		a.logger.Info("Migrations applied")
		return nil
	},
}
