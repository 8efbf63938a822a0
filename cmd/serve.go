package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/doxnav/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tree resolution, rendering and page search tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		store, closeStore := e.openPrefs()
		defer closeStore()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "doxnav MCP server started on stdio (site=%s, index shards=%d)\n", e.cfg.Site, e.site.Index.ShardCount())

		srv := mcpserver.NewServer(e.site, store, e.log)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
