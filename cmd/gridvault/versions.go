package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newVersionsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "versions <table>",
		Short: "List a table's commit history",
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

			versions, err := uc.Versions(ctx, args[0])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				type versionEntry struct {
					ID        int64   `json:"id"`
					Label     string  `json:"label"`
					Author    string  `json:"author"`
					Note      *string `json:"note,omitempty"`
					Dimension string  `json:"dimension"`
					Size      int64   `json:"size"`
					Cells     int64   `json:"cells"`
					Changes   int64   `json:"changes"`
					Metric    string  `json:"metric"`
					Created   string  `json:"created"`
				}
				output := make([]versionEntry, 0, len(versions))
				for _, v := range versions {
					output = append(output, versionEntry{
						ID:        v.ID,
						Label:     v.Label,
						Author:    v.Author,
						Note:      v.Note,
						Dimension: v.Dimension,
						Size:      v.Size,
						Cells:     v.Cells,
						Changes:   v.Changes,
						Metric:    v.Metric,
						Created:   v.CreatedAt.Format(time.RFC3339),
					})
				}
				return outputJSON(cmd, output)
			case "table":
				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"ID", "Label", "Author", "Dimension", "Cells", "Changes", "Metric", "Created"})
				for _, v := range versions {
					t.AppendRow(table.Row{
						v.ID,
						truncateCell(v.Label, 30),
						v.Author,
						v.Dimension,
						v.Cells,
						v.Changes,
						v.Metric,
						v.CreatedAt.Format("2006-01-02 15:04:05"),
					})
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
