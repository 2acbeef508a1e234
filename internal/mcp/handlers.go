package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/convert"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/ops"
	"github.com/tovald/pdfsmith/internal/publish"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db   *sql.DB
	cfg  *config.Config
	conv convert.Converter
	pub  publish.Publisher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, conv convert.Converter, pub publish.Publisher) *Handlers {
	return &Handlers{db: db, cfg: cfg, conv: conv, pub: pub}
}

// Request types for each tool

// ListRequest represents the arguments for document_list.
type ListRequest struct{}

// SearchRequest represents the arguments for document_search.
type SearchRequest struct {
	Query string `json:"query"`
}

// GetRequest represents the arguments for document_get.
type GetRequest struct {
	ID string `json:"id"`
}

// ConvertRequest represents the arguments for document_convert.
type ConvertRequest struct {
	Path string `json:"path"`
}

// Tool definitions

var listToolDef = mcp.NewTool("document_list",
	mcp.WithDescription("List all recorded PDF conversions, most recent first."),
)

var searchToolDef = mcp.NewTool("document_search",
	mcp.WithDescription("Search recorded conversions by a case-sensitive substring of the source filename, PDF filename, or repository name."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Substring to match against source_file, pdf_file, and repo_name"),
	),
)

var getToolDef = mcp.NewTool("document_get",
	mcp.WithDescription("Fetch a single conversion record by its ID."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record ID"),
	),
)

var convertToolDef = mcp.NewTool("document_convert",
	mcp.WithDescription("Convert a local document to PDF and record the conversion. "+
		"Pass an absolute file path; the file type must be in the configured allow-list."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Absolute path of the document to convert"),
	),
)

// Handler implementations

// HandleList handles the document_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.db, ops.ListInput{})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the document_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Query == "" {
		return errorResult(errors.NewInvalidRequest("query is required")), nil
	}

	result, err := ops.List(h.db, ops.ListInput{Filter: input.Query})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the document_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(h.db, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleConvert handles the document_convert tool call.
func (h *Handlers) HandleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ConvertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return errorResult(errors.NewNotFound(input.Path)), nil
	}
	defer f.Close()

	result, err := ops.Upload(ctx, h.db, h.cfg, h.conv, h.pub, ops.UploadInput{
		Filename: filepath.Base(input.Path),
		File:     f,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if appErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
			"status":  appErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
