package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newTablesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List defined tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := context.Background()
			uc := usecase.NewTable(dbCtx, config.GetCSVFormat())

			defs, err := uc.List(ctx)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				type tableEntry struct {
					Name        string `json:"name"`
					Model       string `json:"model"`
					ValueField  string `json:"valueField"`
					ValueType   string `json:"valueType"`
					ColumnField string `json:"columnField"`
				}
				output := make([]tableEntry, 0, len(defs))
				for _, def := range defs {
					output = append(output, tableEntry{
						Name:        def.Name,
						Model:       string(def.Model),
						ValueField:  def.ValueField,
						ValueType:   string(def.ValueType),
						ColumnField: def.ColumnField,
					})
				}
				return outputJSON(cmd, output)
			case "table":
				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Name", "Model", "Value Field", "Value Type", "Column"})
				for _, def := range defs {
					t.AppendRow(table.Row{def.Name, string(def.Model), def.ValueField, string(def.ValueType), def.ColumnField})
				}
				t.Render()
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}
