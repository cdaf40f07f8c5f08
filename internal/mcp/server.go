package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/services"
	"github.com/grid-vault/gridvault/internal/tabular"
	"github.com/grid-vault/gridvault/internal/usecase"
)

// Server wraps the MCP server with gridvault-specific functionality
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	format config.CSVFormat
}

// NewServer creates a new MCP server instance
func NewServer() (*Server, error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "gridvault",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
		format: config.GetCSVFormat(),
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	// grid_list_tables
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_list_tables",
		Description: "List all defined tables",
	}, s.handleListTables)

	// grid_show
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_show",
		Description: "Show one stage of a table as CSV",
	}, s.handleShow)

	// grid_upload
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_upload",
		Description: "Upload a CSV document and stage its changed records",
	}, s.handleUpload)

	// grid_commit
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_commit",
		Description: "Commit a table's staged records as a new version",
	}, s.handleCommit)

	// grid_revert
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_revert",
		Description: "Discard a table's staged records",
	}, s.handleRevert)

	// grid_versions
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grid_versions",
		Description: "List a table's commit history",
	}, s.handleVersions)
}

// Input/Output types for each tool

type ListTablesOutput struct {
	Tables []TableEntry `json:"tables"`
}

type TableEntry struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	ValueField  string `json:"valueField"`
	ValueType   string `json:"valueType"`
	ColumnField string `json:"columnField"`
}

type ShowInput struct {
	Table       string  `json:"table" jsonschema:"required,description=The table to show"`
	Version     *string `json:"version,omitempty" jsonschema:"description=Version stage: current, proposed, or a version id (current if not specified)"`
	ColumnField *string `json:"columnField,omitempty" jsonschema:"description=Field to pivot into columns (table default if not specified)"`
}

type ShowOutput struct {
	CSV string `json:"csv"`
}

type UploadInput struct {
	Table       string  `json:"table" jsonschema:"required,description=The table to upload into"`
	CSV         string  `json:"csv" jsonschema:"required,description=The CSV document to parse"`
	ColumnField *string `json:"columnField,omitempty" jsonschema:"description=Field pivoted into columns in the document (table default if not specified)"`
}

type UploadOutput struct {
	Message string `json:"message"`
	Written int    `json:"written"`
}

type CommitInput struct {
	Table  string  `json:"table" jsonschema:"required,description=The table to commit"`
	Label  string  `json:"label" jsonschema:"required,description=Human-readable label for the version"`
	Author string  `json:"author" jsonschema:"required,description=Author of the version"`
	Note   *string `json:"note,omitempty" jsonschema:"description=Optional free-form note"`
}

type CommitOutput struct {
	Message   string `json:"message"`
	VersionID int64  `json:"versionId"`
	Cells     int64  `json:"cells"`
	Changes   int64  `json:"changes"`
	Size      int64  `json:"size"`
	Dimension string `json:"dimension"`
	Metric    string `json:"metric"`
}

type RevertInput struct {
	Table string `json:"table" jsonschema:"required,description=The table whose staged records to discard"`
}

type RevertOutput struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type VersionsInput struct {
	Table string `json:"table" jsonschema:"required,description=The table whose history to list"`
}

type VersionsOutput struct {
	Versions []VersionEntry `json:"versions"`
}

type VersionEntry struct {
	ID        int64   `json:"id"`
	Label     string  `json:"label"`
	Author    string  `json:"author"`
	Note      *string `json:"note,omitempty"`
	Dimension string  `json:"dimension"`
	Size      int64   `json:"size"`
	Cells     int64   `json:"cells"`
	Changes   int64   `json:"changes"`
	Metric    string  `json:"metric"`
	CreatedAt string  `json:"createdAt"`
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatParseErrors flattens an upload's accumulated errors into one message.
func formatParseErrors(errs tabular.Errors) error {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return fmt.Errorf("upload rejected:\n%s", strings.Join(lines, "\n"))
}

// Tool handlers

func (s *Server) handleListTables(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, ListTablesOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	defs, err := uc.List(ctx)
	if err != nil {
		return nil, ListTablesOutput{}, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]TableEntry, 0, len(defs))
	for _, def := range defs {
		tables = append(tables, TableEntry{
			Name:        def.Name,
			Model:       string(def.Model),
			ValueField:  def.ValueField,
			ValueType:   string(def.ValueType),
			ColumnField: def.ColumnField,
		})
	}

	return nil, ListTablesOutput{Tables: tables}, nil
}

func (s *Server) handleShow(ctx context.Context, req *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	csv, err := uc.Export(ctx, usecase.ShowInput{
		Table:       input.Table,
		ColumnField: optional(input.ColumnField),
		Version:     optional(input.Version),
	})
	if err != nil {
		return nil, ShowOutput{}, fmt.Errorf("failed to show table: %w", err)
	}

	return nil, ShowOutput{CSV: csv}, nil
}

func (s *Server) handleUpload(ctx context.Context, req *mcp.CallToolRequest, input UploadInput) (*mcp.CallToolResult, UploadOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	result, err := uc.Upload(ctx, usecase.UploadInput{
		Table:       input.Table,
		Input:       input.CSV,
		ColumnField: optional(input.ColumnField),
	})
	if err != nil {
		return nil, UploadOutput{}, fmt.Errorf("failed to upload: %w", err)
	}
	if result.Errors.HasErrors() {
		return nil, UploadOutput{}, formatParseErrors(result.Errors)
	}

	return nil, UploadOutput{
		Message: fmt.Sprintf("Staged %d record(s) for table '%s'", result.Written, input.Table),
		Written: result.Written,
	}, nil
}

func (s *Server) handleCommit(ctx context.Context, req *mcp.CallToolRequest, input CommitInput) (*mcp.CallToolResult, CommitOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	result, err := uc.Commit(ctx, input.Table, services.CommitInfo{
		Label:  input.Label,
		Author: input.Author,
		Note:   optional(input.Note),
	})
	if err != nil {
		return nil, CommitOutput{}, fmt.Errorf("failed to commit: %w", err)
	}

	return nil, CommitOutput{
		Message:   fmt.Sprintf("Committed version %d of table '%s'", result.VersionID, input.Table),
		VersionID: result.VersionID,
		Cells:     result.Cells,
		Changes:   result.Changes,
		Size:      result.Size,
		Dimension: result.Dimension,
		Metric:    result.Metric,
	}, nil
}

func (s *Server) handleRevert(ctx context.Context, req *mcp.CallToolRequest, input RevertInput) (*mcp.CallToolResult, RevertOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	count, err := uc.Revert(ctx, input.Table)
	if err != nil {
		return nil, RevertOutput{}, fmt.Errorf("failed to revert: %w", err)
	}

	return nil, RevertOutput{
		Message: fmt.Sprintf("Discarded %d staged record(s) of table '%s'", count, input.Table),
		Count:   count,
	}, nil
}

func (s *Server) handleVersions(ctx context.Context, req *mcp.CallToolRequest, input VersionsInput) (*mcp.CallToolResult, VersionsOutput, error) {
	uc := usecase.NewTable(s.dbCtx, s.format)

	records, err := uc.Versions(ctx, input.Table)
	if err != nil {
		return nil, VersionsOutput{}, fmt.Errorf("failed to list versions: %w", err)
	}

	versions := make([]VersionEntry, 0, len(records))
	for _, v := range records {
		versions = append(versions, VersionEntry{
			ID:        v.ID,
			Label:     v.Label,
			Author:    v.Author,
			Note:      v.Note,
			Dimension: v.Dimension,
			Size:      v.Size,
			Cells:     v.Cells,
			Changes:   v.Changes,
			Metric:    v.Metric,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		})
	}

	return nil, VersionsOutput{Versions: versions}, nil
}
