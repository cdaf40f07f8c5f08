package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/services"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newCommitCmd() *cobra.Command {
	var (
		label  string
		author string
		note   string
	)

	cmd := &cobra.Command{
		Use:   "commit <table>",
		Short: "Commit a table's staged records as a new version",
		Long:  "Promote the staged records to current under a fresh version id, archiving the records they supersede. The version row records the table's size, cell count, change count, and summary metric.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" {
				return fmt.Errorf("--label is required")
			}
			if author == "" {
				author = os.Getenv("USER")
			}
			if author == "" {
				return fmt.Errorf("--author is required when $USER is unset")
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := context.Background()
			uc := usecase.NewTable(dbCtx, config.GetCSVFormat())

			result, err := uc.Commit(ctx, args[0], services.CommitInfo{
				Label:  label,
				Author: author,
				Note:   note,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Committed version %d of table '%s' (%d cell(s), %d change(s), dimension %s)\n",
				result.VersionID, args[0], result.Cells, result.Changes, result.Dimension)
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Human-readable label for the version")
	cmd.Flags().StringVar(&author, "author", "", "Author of the version (defaults to $USER)")
	cmd.Flags().StringVarP(&note, "note", "m", "", "Optional free-form note")

	return cmd
}
