package mcp

import "github.com/mark3labs/mcp-go/mcp"

// resolveLocationTool defines the resolve_location MCP tool.
var resolveLocationTool = mcp.NewTool("resolve_location",
	mcp.WithDescription("Resolve a documentation page (and optional anchor) to its position in the navigation tree. Returns the breadcrumb indices and labels."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Page path relative to the site, optionally with an anchor, e.g. d8/df4/dinput_8h.html#a1d0"),
	),
)

// renderTreeTool defines the render_tree MCP tool.
var renderTreeTool = mcp.NewTool("render_tree",
	mcp.WithDescription("Render the navigation tree as it appears when the given page is shown, with the page's entry selected."),
	mcp.WithString("location",
		mcp.Description("Page path with optional anchor (default: the site's main page)"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default text)"),
		mcp.Enum("text", "html"),
	),
)

// findPagesTool defines the find_pages MCP tool.
var findPagesTool = mcp.NewTool("find_pages",
	mcp.WithDescription("List indexed documentation pages whose path matches a glob. Patterns containing '#' also match member anchors."),
	mcp.WithString("pattern",
		mcp.Required(),
		mcp.Description("Glob such as **/class*.html or *_8h.html#a*"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 50)"),
	),
)

// anchorHighlightTool defines the anchor_highlight MCP tool.
var anchorHighlightTool = mcp.NewTool("anchor_highlight",
	mcp.WithDescription("Describe which element of a page is highlighted when it is opened at an anchor."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Page path with anchor, e.g. d8/df4/dinput_8h.html#a1d0"),
	),
)
