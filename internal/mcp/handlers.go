package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/corpus"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	role, err := assistant.ParseRole(request.GetString("role", string(assistant.Customer)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx = assistant.WithSurface(ctx, assistant.SurfaceMCP)
	return mcp.NewToolResultText(s.assistant.Answer(ctx, query, role)), nil
}

// handleSearchCorpus applies the same role policy as ask: customers cannot
// read the marketing corpus.
func (s *Server) handleSearchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("corpus")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: corpus"), nil
	}
	query, err := request.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	role, err := assistant.ParseRole(request.GetString("role", string(assistant.Customer)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if role != assistant.Employee && name != corpus.Products {
		return mcp.NewToolResultError(assistant.AccessDenied), nil
	}

	searcher, ok := s.corpora[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown corpus %q", name)), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	results, err := searcher.Matches(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

func (s *Server) handleBackendStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.assistant.BackendStatus()), nil
}
