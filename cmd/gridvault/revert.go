package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newRevertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert <table>",
		Short: "Discard a table's staged records",
		Long:  "Delete the records staged for the next commit. Committed versions are never touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := context.Background()
			uc := usecase.NewTable(dbCtx, config.GetCSVFormat())

			count, err := uc.Revert(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Discarded %d staged record(s) of table '%s'\n", count, args[0])
			return nil
		},
	}

	return cmd
}
