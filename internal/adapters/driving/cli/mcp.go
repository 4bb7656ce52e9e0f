package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the ledger to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Model Context Protocol server",
	Long: `Start a Model Context Protocol server offering tools to read listings,
compare them, find near misses, verify evidence and list open alerts.

The server speaks JSON-RPC over stdio unless --addr is given, in which case
it serves the streamable HTTP transport on that address.

Client configuration for stdio:
  {
    "mcpServers": {
      "listingtrail": {
        "command": "listingtrail",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve HTTP on this address instead of stdio, e.g. 127.0.0.1:8081")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}
	server, err := mcp.NewServer(&mcp.Ports{
		Listings:  listingService,
		Compare:   comparisonService,
		NearMiss:  nearMissService,
		Evidence:  evidenceService,
		Snapshots: snapshotService,
		Alerts:    alertService,
	})
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	cmd.Printf("MCP server listening on http://%s\n", mcpAddr)
	return server.RunHTTP(cmd.Context(), mcpAddr)
}
