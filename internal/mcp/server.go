// Package mcp exposes the assistant to AI agents over the Model Context
// Protocol on stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// MatchSearcher returns scored matches from one corpus.
// *retriever.Retriever satisfies it.
type MatchSearcher interface {
	Matches(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error)
}

// Server wraps an MCP server that exposes question answering tools.
type Server struct {
	assistant *assistant.Assistant
	corpora   map[string]MatchSearcher
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. corpora maps corpus names
// ("products", "marketing") to their searchers.
func NewServer(a *assistant.Assistant, corpora map[string]MatchSearcher) *Server {
	s := &Server{
		assistant: a,
		corpora:   corpora,
	}

	s.mcp = server.NewMCPServer(
		"shopdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askTool, s.handleAsk)
	s.mcp.AddTool(searchCorpusTool, s.handleSearchCorpus)
	s.mcp.AddTool(backendStatusTool, s.handleBackendStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
