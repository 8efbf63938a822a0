package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navsync"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/site"
)

var treeCmd = &cobra.Command{
	Use:   "tree [page[#anchor]]",
	Short: "Print the navigation tree as it looks on a page",
	Long: `Loads a page the way the tree view does on a fresh page load: the page is
resolved, the tree is expanded along its breadcrumb (fetching node shards as
needed) and the page's entry is selected. When sync is switched off the
persisted page is shown instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().Bool("html", false, "print the tree as HTML list markup")
	treeCmd.Flags().String("relpath", "", "prefix for links and images in HTML output (defaults to the configured relpath)")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	store, closeStore := e.openPrefs()
	defer closeStore()

	opts := e.treeOptions()
	opts.RevealDuration = -1
	sess := navsync.NewSession(ctx, "cli", e.site, store, opts, e.log)
	if err := sess.Load(ctx, location.Parse(e.startLocation(args))); err != nil {
		return err
	}
	rows := sess.Tree().Rows()

	if asHTML, _ := cmd.Flags().GetBool("html"); asHTML {
		relpath, _ := cmd.Flags().GetString("relpath")
		if relpath == "" {
			relpath = e.site.Relpath
		}
		return site.RenderHTML(os.Stdout, rows, relpath)
	}

	fmt.Print(navtree.RenderText(rows))
	if snap := sess.Snapshot(); snap.Error != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", snap.Error)
	}
	return nil
}
