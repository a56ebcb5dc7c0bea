package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can browse and
use connectors.

Tools run as the user given with --user. Without one, only shared connectors
are reachable.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead.

Examples:
  # Stdio mode
  hub mcp serve --user jane@example.com

  # HTTP mode
  hub mcp serve --port 8081

Assistant configuration:
  {
    "mcpServers": {
      "hub": {
        "command": "/path/to/hub",
        "args": ["mcp", "serve", "--user", "jane@example.com"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s := svc()
	ports := &mcp.Ports{
		Reflect:    s.Reflect,
		Query:      s.Query,
		Invoke:     s.Invoke,
		Poll:       s.Poll,
		Connectors: s.Connectors,
		User:       currentUser(),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
