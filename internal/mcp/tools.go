package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askTool defines the ask MCP tool.
var askTool = mcp.NewTool("ask",
	mcp.WithDescription("Answer a question about the product catalog or customer segments and marketing strategies. Customers may only see product information."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
	mcp.WithString("role",
		mcp.Description("Who is asking (default customer)"),
		mcp.Enum("customer", "employee"),
	),
)

// searchCorpusTool defines the search_corpus MCP tool.
var searchCorpusTool = mcp.NewTool("search_corpus",
	mcp.WithDescription("Return the raw chunks of one corpus most similar to a query, with similarity scores."),
	mcp.WithString("corpus",
		mcp.Required(),
		mcp.Description("Corpus to search"),
		mcp.Enum("products", "marketing"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("role",
		mcp.Description("Who is asking (default customer)"),
		mcp.Enum("customer", "employee"),
	),
)

// backendStatusTool defines the backend_status MCP tool.
var backendStatusTool = mcp.NewTool("backend_status",
	mcp.WithDescription("Report whether answers are generated by a language model or returned as raw retrieved text."),
)
