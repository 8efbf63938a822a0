package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load and check every navigation index shard",
	Long:  `Fetches all navtreeindex shards of the site, reporting progress, and prints how many pages they index.`,
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	idx := e.site.Index
	if err := idx.Warm(ctx, progress.NewReporter("Loading index shards")); err != nil {
		return fmt.Errorf("some index shards could not be loaded: %w", err)
	}
	entries, err := idx.Find(ctx, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Site: %s (main page %s)\n", e.site.Title, idx.RootDocument())
	fmt.Printf("Index shards: %d (%d fetched)\n", idx.ShardCount(), idx.Fetches())
	fmt.Printf("Indexed locations: %d\n", len(entries))
	return nil
}
