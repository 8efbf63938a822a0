package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "doxnav",
	Short: "Navigate Doxygen documentation through its lazily loaded tree index",
	Long: `doxnav reads the navigation tree of a Doxygen HTML site (navtreedata.js,
its index shards and node shards) and keeps a tree view in step with the
page being read. It resolves pages and anchors to tree positions, renders
the tree, serves navigation sessions over HTTP and WebSocket, and exposes
the same operations to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".doxnav.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
