package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newShowCmd() *cobra.Command {
	var (
		version     string
		columnField string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "show <table>",
		Short: "Show one stage of a table",
		Long:  "Show the pivoted view of a table at a version stage: current, proposed, or a numeric version id.",
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

			input := usecase.ShowInput{
				Table:       args[0],
				ColumnField: columnField,
				Version:     version,
			}

			switch format {
			case "csv":
				out, err := uc.Export(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			case "json":
				result, err := uc.Show(ctx, input)
				if err != nil {
					return err
				}
				return outputJSON(cmd, result.Rows)
			case "table":
				result, err := uc.Show(ctx, input)
				if err != nil {
					return err
				}
				renderPivot(cmd, result)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, csv, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Version stage: current, proposed, or a version id (current if omitted)")
	cmd.Flags().StringVar(&columnField, "column", "", "Field to pivot into columns (table default if omitted)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv, or json")

	return cmd
}
