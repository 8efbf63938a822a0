package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navindex"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <page[#anchor]>",
	Short: "Resolve a page to its position in the navigation tree",
	Long: `Looks a page (optionally with an anchor) up in the sharded navigation index
and prints the breadcrumb of sibling indices leading to it, together with
the labels of the tree nodes along the way. Pages that are not indexed
resolve to the site's main page.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "print the breadcrumb as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	loc := location.Parse(args[0])
	bc, err := e.site.Index.Resolve(ctx, location.StripPath2(loc.Path), loc.Hash)
	if err != nil {
		if errors.Is(err, navindex.ErrNotFound) {
			return fmt.Errorf("%s: %w (the main page is not indexed either)", args[0], err)
		}
		return err
	}

	tree := e.site.NewTree(e.treeOptions())
	path := append([]int{0}, bc.Path...)
	if err := tree.SelectPath(ctx, path, bc.Anchor, bc.Doc); err != nil {
		return fmt.Errorf("expanding tree: %w", err)
	}
	var names []string
	for i := range path {
		n, ok := tree.NodeAt(path[:i+1])
		if !ok {
			break
		}
		names = append(names, n.Label)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			navindex.Breadcrumb
			Labels []string `json:"labels"`
		}{bc, names})
	}

	fmt.Printf("%s\n", strings.Join(names, " > "))
	fmt.Printf("  key:   %s\n", bc.Key)
	fmt.Printf("  path:  %v\n", path)
	fmt.Printf("  shard: %s\n", shard.IndexScript(bc.Shard))
	if bc.Fallback {
		fmt.Println("  (not indexed, showing the main page)")
	}
	return nil
}
