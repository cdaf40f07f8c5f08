package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gridvault",
	Short: "gridvault - A versioned store for multi-dimensional fact tables",
	Long:  "gridvault stores versioned lookup and fact tables keyed by item catalogs, with CSV upload and pivoted display.",
}

func init() {
	rootCmd.AddCommand(newDefineCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newItemCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newRevertCmd())
	rootCmd.AddCommand(newVersionsCmd())
	rootCmd.AddCommand(newMCPCmd())
}
