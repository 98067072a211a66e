// Package mcp exposes report search as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	"github.com/kailas-cloud/reportdex/internal/transport/dto"
	"github.com/kailas-cloud/reportdex/internal/version"
)

// ServerName is the MCP server name.
const ServerName = "reportdex"

// Tool names.
const (
	ToolSearchReports    = "search_reports"
	ToolSearchExpression = "search_expression"
)

// Searcher runs report searches.
type Searcher interface {
	Search(ctx context.Context, req request.Search) (result.Page, error)
	SearchExpression(ctx context.Context, operands []string, page, size int) (result.Page, error)
}

// Server wraps the MCP server with the search service.
type Server struct {
	mcp    *server.MCPServer
	search Searcher
	logger *zap.Logger
}

// NewServer creates an MCP server with the search tools registered.
func NewServer(search Searcher, logger *zap.Logger) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version.Version),
		search: search,
		logger: logger,
	}
	s.mcp.AddTool(searchReportsTool(), s.handleSearchReports)
	s.mcp.AddTool(searchExpressionTool(), s.handleSearchExpression)
	return s
}

// Serve runs the server on stdio and blocks until stdin closes.
func (s *Server) Serve() error {
	if err := server.ServeStdio(s.mcp); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}

func searchReportsTool() mcp.Tool {
	return mcp.Tool{
		Name: ToolSearchReports,
		Description: "Search confirmed malware analysis reports. Wrap the query in single quotes for an exact phrase; " +
			"set knn for semantic similarity search.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text query, e.g. emotet or 'APT Group'",
				},
				"page": pageProperty(),
				"size": sizeProperty(),
				"knn": map[string]any{
					"type":        "boolean",
					"description": "Rank by embedding similarity instead of keywords",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

func searchExpressionTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchExpression,
		Description: "Search reports with a boolean expression of two field:value operands joined by AND, OR or NOT.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"expression": map[string]any{
					"type":        "array",
					"description": "Exactly three items, e.g. [\"malwareName:Emotet\", \"AND\", \"threatClassification:Trojan\"]",
					"items":       map[string]any{"type": "string"},
					"minItems":    3,
					"maxItems":    3,
				},
				"page": pageProperty(),
				"size": sizeProperty(),
			},
			Required: []string{"expression"},
		},
	}
}

func pageProperty() map[string]any {
	return map[string]any{"type": "integer", "description": "Zero-based page number", "default": 0, "minimum": 0}
}

func sizeProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Page size",
		"default":     request.DefaultPageSize,
		"minimum":     1,
		"maximum":     request.MaxPageSize,
	}
}

func (s *Server) handleSearchReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	query, _ := args["query"].(string)
	searchReq, err := request.New(query, getInt(args, "page", 0), getInt(args, "size", 0), getBool(args, "knn"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.search.Search(ctx, searchReq)
	return s.pageResult(page, err)
}

func (s *Server) handleSearchExpression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	raw, _ := args["expression"].([]any)
	operands := make([]string, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			return mcp.NewToolResultError("expression items must be strings"), nil
		}
		operands = append(operands, str)
	}

	page, err := s.search.SearchExpression(ctx, operands, getInt(args, "page", 0), getInt(args, "size", 0))
	return s.pageResult(page, err)
}

// pageResult maps caller mistakes to tool errors; backend failures become protocol errors.
func (s *Server) pageResult(page result.Page, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if errors.Is(err, domain.ErrMalformedQuery) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.Error("MCP search failed", zap.Error(err))
		return nil, fmt.Errorf("search: %w", err)
	}

	body, err := json.MarshalIndent(dto.FromPage(page), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

func getInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func getBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
