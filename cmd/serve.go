package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/corpus"
	mcpserver "github.com/ziadkadry99/shopdesk/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the ask, search_corpus and backend_status tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		// Stdout carries the protocol; diagnostics go to stderr.
		fmt.Fprintf(os.Stderr, "shopdesk MCP server started on stdio (%s)\n", a.assistant.BackendStatus())

		srv := mcpserver.NewServer(a.assistant, map[string]mcpserver.MatchSearcher{
			corpus.Products:  a.products,
			corpus.Marketing: a.marketing,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
