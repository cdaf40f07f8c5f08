package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newExportCmd() *cobra.Command {
	var (
		version     string
		columnField string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Export one stage of a table as CSV",
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

			out, err := uc.Export(ctx, usecase.ShowInput{
				Table:       args[0],
				ColumnField: columnField,
				Version:     version,
			})
			if err != nil {
				return err
			}

			if outputPath != "" {
				return os.WriteFile(outputPath, []byte(out), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Version stage: current, proposed, or a version id (current if omitted)")
	cmd.Flags().StringVar(&columnField, "column", "", "Field to pivot into columns (table default if omitted)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
