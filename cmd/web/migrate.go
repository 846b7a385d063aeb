// cmd/web/migrate.go
//
// `web migrate` – apply component migrations.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/adept-rest/internal/component"
	"github.com/yanizio/adept-rest/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending component migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot(cmd, false)
			if err != nil {
				return err
			}
			defer a.shutdown()

			for _, c := range component.All() {
				if only != "" && c.Name() != only {
					continue
				}
				n, err := database.Migrate(cmd.Context(), a.state.DB, c.Name(), c.Migrations())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d applied\n", c.Name(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "component", "", "migrate a single component")
	return cmd
}
