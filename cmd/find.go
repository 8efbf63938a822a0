package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find [glob...]",
	Short: "List indexed pages matching glob patterns",
	Long: `Loads every index shard and lists the keys matching any of the given
doublestar globs, with their breadcrumbs. Patterns are matched against the
page path and its base name; patterns containing '#' also match member
anchors. Without patterns every page is listed.`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	entries, err := e.site.Index.Find(ctx, args)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%-60s %v\n", entry.Key, entry.Path)
	}
	if len(entries) == 0 {
		fmt.Println("No matching pages.")
	}
	return nil
}
