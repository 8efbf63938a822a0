package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/doxnav/internal/anchor"
	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navindex"
	"github.com/ziadkadry99/doxnav/internal/navsync"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/site"
)

// handleResolveLocation maps a location to its breadcrumb and the labels
// along it.
func (s *Server) handleResolveLocation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: location"), nil
	}
	loc := location.Parse(raw)

	bc, err := s.site.Index.Resolve(ctx, location.StripPath2(loc.Path), loc.Hash)
	if err != nil {
		if errors.Is(err, navindex.ErrNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("%s is not in the navigation index and the site has no main page entry.", raw)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
	}

	tree := s.site.NewTree(s.opts)
	path := append([]int{0}, bc.Path...)
	if err := tree.SelectPath(ctx, path, bc.Anchor, bc.Doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("expanding tree failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatBreadcrumb(bc, path, labels(tree, path))), nil
}

// handleRenderTree loads a location in a fresh session and renders its tree.
func (s *Server) handleRenderTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("location", "")
	if raw == "" {
		raw = s.site.Index.RootDocument()
	}
	format := request.GetString("format", "text")

	sess := navsync.NewSession(ctx, "mcp", s.site, s.prefs, s.opts, s.log)
	if err := sess.Load(ctx, location.Parse(raw)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading %s failed: %v", raw, err)), nil
	}
	rows := sess.Tree().Rows()

	if format == "html" {
		var sb strings.Builder
		if err := site.RenderHTML(&sb, rows, s.site.Relpath); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err)), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	var sb strings.Builder
	sb.WriteString(navtree.RenderText(rows))
	if sel := sess.Tree().Selected(); sel != nil {
		sb.WriteString(fmt.Sprintf("\nSelected: %s (%s)\n", sel.Label, sel.Link))
	} else {
		sb.WriteString("\nSelected: none\n")
	}
	if snap := sess.Snapshot(); snap.Error != "" {
		sb.WriteString(fmt.Sprintf("Warning: %s\n", snap.Error))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleFindPages lists index keys matching a glob.
func (s *Server) handleFindPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := request.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: pattern"), nil
	}
	limit := request.GetInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.site.Index.Find(ctx, []string{pattern})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No indexed pages match %q.", pattern)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d page(s):\n", len(entries)))
	for i, e := range entries {
		if i == limit {
			sb.WriteString(fmt.Sprintf("... %d more\n", len(entries)-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("%s %v\n", e.Key, e.Path))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAnchorHighlight classifies the element an anchor points into.
func (s *Server) handleAnchorHighlight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: location"), nil
	}
	loc := location.Parse(raw)
	if loc.Hash == "" {
		return mcp.NewToolResultError("location has no anchor"), nil
	}

	h, err := s.site.Highlight(ctx, loc.Path, loc.Hash)
	if err != nil {
		if errors.Is(err, anchor.ErrAnchorNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("%s has no anchor %s; nothing is highlighted.", loc.Path, loc.Hash)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("reading %s failed: %v", loc.Path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Anchor: %s\nKind: %s\nElement: %s\nCount: %d\nDuration: %s\n",
		h.Anchor, h.Kind, h.Element, h.Count, h.Duration)), nil
}

// labels returns the label of every node on path.
func labels(tree *navtree.Tree, path []int) []string {
	out := make([]string, 0, len(path))
	for i := range path {
		n, ok := tree.NodeAt(path[:i+1])
		if !ok {
			break
		}
		out = append(out, n.Label)
	}
	return out
}

// formatBreadcrumb renders a resolved location for AI agent consumption.
func formatBreadcrumb(bc navindex.Breadcrumb, path []int, names []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Key: %s\n", bc.Key))
	sb.WriteString(fmt.Sprintf("Path: %v\n", path))
	sb.WriteString(fmt.Sprintf("Breadcrumb: %s\n", strings.Join(names, " > ")))
	sb.WriteString(fmt.Sprintf("Index shard: %d\n", bc.Shard))
	if bc.Fallback {
		sb.WriteString("Note: the page is not indexed; showing the main page instead.\n")
	}
	return sb.String()
}
