package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navsync"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/site"
)

var browseCmd = &cobra.Command{
	Use:   "browse [page[#anchor]]",
	Short: "Browse the navigation tree interactively",
	Long: `Opens an interactive tree view. Choosing a page follows its link and keeps
the tree in sync; choosing a group expands or collapses it. The sync toggle
is remembered between runs when persistence is enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().Bool("open", false, "open each followed page in the default browser")
	rootCmd.AddCommand(browseCmd)
}

// browseItem is one entry of the interactive list.
type browseItem struct {
	Text   string
	Row    *navtree.Row
	Action string // "row", "sync", "open" or "quit"
}

func runBrowse(cmd *cobra.Command, args []string) error {
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
	sess := navsync.NewSession(ctx, "browse", e.site, store, opts, e.log)
	if err := sess.Load(ctx, location.Parse(e.startLocation(args))); err != nil {
		return err
	}
	openPages, _ := cmd.Flags().GetBool("open")

	for {
		items, cursor := browseItems(sess)
		prompt := promptui.Select{
			Label:     fmt.Sprintf("%s  [%s]", e.site.Title, sess.Location()),
			Items:     items,
			CursorPos: cursor,
			Size:      20,
			Templates: &promptui.SelectTemplates{
				Label:    "{{ . }}",
				Active:   "▸ {{ .Text | cyan }}",
				Inactive: "  {{ .Text }}",
				Selected: "  {{ .Text | faint }}",
			},
			Searcher: func(input string, index int) bool {
				return strings.Contains(strings.ToLower(items[index].Text), strings.ToLower(input))
			},
		}
		idx, _, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("browse: %w", err)
		}

		item := items[idx]
		switch item.Action {
		case "quit":
			return nil
		case "sync":
			enabled, err := sess.ToggleSync(ctx)
			if err != nil {
				fmt.Printf("Could not toggle sync: %v\n", err)
				continue
			}
			fmt.Printf("Sync %s\n", onOff(enabled))
		case "open":
			site.OpenBrowser(e.site.PageURL(sess.Location()))
		case "row":
			if err := activate(cmd, sess, *item.Row); err != nil {
				return err
			}
			if openPages && item.Row.Action == navtree.ActionNavigate {
				site.OpenBrowser(e.site.PageURL(location.Parse(strings.TrimPrefix(item.Row.Link, "^"))))
			}
		}
		if snap := sess.Snapshot(); snap.Error != "" {
			fmt.Printf("Warning: %s\n", snap.Error)
		}
	}
}

// browseItems lists the visible rows followed by the commands, and returns
// the index of the selected row.
func browseItems(sess *navsync.Session) ([]browseItem, int) {
	rows := sess.Tree().Rows()
	items := make([]browseItem, 0, len(rows)+3)
	cursor := 0
	for i := range rows {
		r := rows[i]
		glyph := " "
		switch r.Glyph {
		case navtree.GlyphCollapsed:
			glyph = "+"
		case navtree.GlyphExpanded, navtree.GlyphExpandedLast:
			glyph = "-"
		}
		text := strings.Repeat("  ", max(0, r.Depth-1)) + glyph + " " + r.Label
		if r.Selected {
			text += "  *"
			cursor = i
		}
		items = append(items, browseItem{Text: text, Row: &r, Action: "row"})
	}
	if sess.SyncAvailable() {
		items = append(items, browseItem{Text: fmt.Sprintf("[sync is %s, toggle]", onOff(sess.SyncEnabled())), Action: "sync"})
	}
	items = append(items,
		browseItem{Text: "[open current page in browser]", Action: "open"},
		browseItem{Text: "[quit]", Action: "quit"},
	)
	return items, cursor
}

// activate does what clicking a row label does: follow the link, or toggle a
// group without one.
func activate(cmd *cobra.Command, sess *navsync.Session, r navtree.Row) error {
	ctx := cmd.Context()
	switch r.Action {
	case navtree.ActionNavigate:
		if strings.HasPrefix(r.Link, "^") {
			fmt.Printf("External link: %s\n", location.Href(r.Link, ""))
		}
		return sess.FollowLink(ctx, r.Link)
	case navtree.ActionToggle:
		return sess.ToggleNode(ctx, r.Path)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
