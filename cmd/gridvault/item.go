package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage item catalogs",
		Long:  "Manage the item catalogs that back the tables' index domains.",
	}

	cmd.AddCommand(newItemAddCmd())
	cmd.AddCommand(newItemListCmd())
	cmd.AddCommand(newItemArchiveCmd())

	return cmd
}

func newItemAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <domain> <label>",
		Short: "Add an item to a domain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := context.Background()
			uc := usecase.NewItem(dbCtx)

			if _, err := uc.Add(ctx, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added item '%s' to domain '%s'\n", args[1], args[0])
			return nil
		},
	}

	return cmd
}

func newItemListCmd() *cobra.Command {
	var (
		includeArchived bool
		format          string
	)

	cmd := &cobra.Command{
		Use:   "list <domain>",
		Short: "List the items of a domain",
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
			uc := usecase.NewItem(dbCtx)

			items, err := uc.List(ctx, args[0], includeArchived)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				type itemEntry struct {
					Label    string `json:"label"`
					Created  string `json:"created"`
					Archived bool   `json:"archived,omitempty"`
				}
				output := make([]itemEntry, 0, len(items))
				for _, item := range items {
					output = append(output, itemEntry{
						Label:    item.Label,
						Created:  item.CreatedAt.Format(time.RFC3339),
						Archived: item.VersionLast != nil,
					})
				}
				return outputJSON(cmd, output)
			case "table":
				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				if includeArchived {
					t.AppendHeader(table.Row{"Label", "Created", "Archived"})
				} else {
					t.AppendHeader(table.Row{"Label", "Created"})
				}
				for _, item := range items {
					created := item.CreatedAt.Format("2006-01-02 15:04:05")
					if includeArchived {
						t.AppendRow(table.Row{item.Label, created, item.VersionLast != nil})
					} else {
						t.AppendRow(table.Row{item.Label, created})
					}
				}
				t.Render()
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().BoolVar(&includeArchived, "include-archived", false, "Include archived items")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func newItemArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <domain> <label>",
		Short: "Archive an item",
		Long:  "Archive an item so future catalogs no longer include it. Historical versions keep resolving it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := context.Background()
			uc := usecase.NewItem(dbCtx)

			archived, err := uc.Archive(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !archived {
				return fmt.Errorf("item '%s' not found in domain '%s' (or already archived)", args[1], args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived item '%s' of domain '%s'\n", args[1], args[0])
			return nil
		},
	}

	return cmd
}
