package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/usecase"
)

func newUploadCmd() *cobra.Command {
	var (
		filePath    string
		columnField string
	)

	cmd := &cobra.Command{
		Use:   "upload <table>",
		Short: "Upload a CSV document into a table",
		Long:  "Parse a CSV document against a table's schema and stage the changed records for the next commit. A document with any error is rejected whole.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, filePath)
			if err != nil {
				return err
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

			result, err := uc.Upload(ctx, usecase.UploadInput{
				Table:       args[0],
				Input:       content,
				ColumnField: columnField,
			})
			if err != nil {
				return err
			}
			if result.Errors.HasErrors() {
				for _, e := range result.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
				}
				return fmt.Errorf("upload rejected with %d error(s)", len(result.Errors))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Staged %d record(s) for table '%s'\n", result.Written, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read CSV from file instead of stdin")
	cmd.Flags().StringVar(&columnField, "column", "", "Field pivoted into columns in the document (table default if omitted)")

	return cmd
}

func readContent(cmd *cobra.Command, filePath string) (string, error) {
	if filePath != "" {
		bytes, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Enter CSV (Ctrl-D when done):")
	}

	bytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
