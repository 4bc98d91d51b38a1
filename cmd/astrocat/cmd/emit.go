package cmd

import (
	"fmt"

	"astrocat/cmd/astrocat/globals"
	"astrocat/cmd/astrocat/utils"
	"astrocat/internal/store"
	"astrocat/internal/tabular"

	"github.com/spf13/cobra"
)

// emit prints table and, when --db is set, saves it as name.
func emit(cmd *cobra.Command, name, source string, table tabular.Table) error {
	ctx := globals.Get(cmd.Context())

	err := utils.Render(cmd.OutOrStdout(), table, ctx.Format)
	if err != nil {
		return err
	}
	if ctx.DB == "" {
		return nil
	}

	db, err := store.Open(cmd.Context(), ctx.DB, nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", ctx.DB, err)
	}
	defer db.Close()

	err = db.WriteTable(cmd.Context(), name, source, table)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	ctx.Tel.ReportDebug("saved table", name, table.Len(), ctx.DB)
	return nil
}
