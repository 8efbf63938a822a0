package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/prefs"
	"github.com/ziadkadry99/doxnav/internal/site"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes navigation tools over one site.
type Server struct {
	site  *site.Site
	prefs prefs.Store
	opts  navtree.Options
	log   *zap.Logger
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies. Tree
// expansion is never animated here.
func NewServer(s *site.Site, store prefs.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = prefs.Unavailable{}
	}
	srv := &Server{
		site:  s,
		prefs: store,
		opts:  navtree.Options{RevealDuration: -1, Logger: log},
		log:   log,
	}

	srv.mcp = server.NewMCPServer(
		"doxnav",
		Version,
		server.WithToolCapabilities(false),
	)

	srv.registerTools()

	return srv
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(resolveLocationTool, s.handleResolveLocation)
	s.mcp.AddTool(renderTreeTool, s.handleRenderTree)
	s.mcp.AddTool(findPagesTool, s.handleFindPages)
	s.mcp.AddTool(anchorHighlightTool, s.handleAnchorHighlight)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
