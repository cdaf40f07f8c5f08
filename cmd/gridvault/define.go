package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newDefineCmd() *cobra.Command {
	var (
		model       string
		fields      []string
		value       string
		columnField string
	)

	cmd := &cobra.Command{
		Use:   "define <table>",
		Short: "Define a new table",
		Long:  "Define a table schema: its index fields (each bound to an item domain), its value field, and the default column axis.",
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

			if _, err := uc.Define(ctx, usecase.DefineOptions{
				Name:        args[0],
				Model:       model,
				Fields:      fields,
				Value:       value,
				ColumnField: columnField,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Defined table '%s'\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "data", "Table model: data, mappings, or item")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Index field as name:domain (repeatable, declaration order matters)")
	cmd.Flags().StringVar(&value, "value", "", "Value field as name:type[:domain], e.g. amount:decimal or owner:item:people")
	cmd.Flags().StringVar(&columnField, "column", "", "Default column axis (last declared field if omitted)")

	return cmd
}
