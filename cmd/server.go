package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/history"
	"github.com/ziadkadry99/doxnav/internal/navsync"
	"github.com/ziadkadry99/doxnav/internal/server"
	"github.com/ziadkadry99/doxnav/internal/site"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the navigation session server",
	Long: `Starts an HTTP server exposing navigation sessions: a REST API to create
sessions and feed them location changes, a WebSocket stream of tree events
per session and, for local sites, the documentation itself under /docs/.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().Int("port", 0, "port to listen on (defaults to server.port from the config)")
	serverCmd.Flags().Bool("open", false, "open the documentation in the default browser")
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	store, closeStore := e.openPrefs()
	defer closeStore()

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = e.cfg.Server.Port
	}

	sessions := navsync.NewManager(e.site, store, e.treeOptions(), e.log)
	srv := server.New(server.Config{
		Port:     port,
		AllowAll: e.cfg.Server.AllowAll,
	}, sessions, e.log)

	hist := historyStore(store)
	if hist != nil {
		sessions.SetRecorder(hist)
		history.RegisterRoutes(srv.Router(), hist)
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "doxnav server %s starting on port %d\n", Version, port)
	fmt.Fprintf(os.Stderr, "  Site: %s (%s)\n", e.site.Title, e.cfg.Site)
	fmt.Fprintf(os.Stderr, "  Index shards: %d\n", e.site.Index.ShardCount())
	fmt.Fprintf(os.Stderr, "  Sync persistence: %v\n", store.Available())
	fmt.Fprintf(os.Stderr, "  Navigation history: %v\n", hist != nil)
	if e.site.Dir != "" {
		fmt.Fprintf(os.Stderr, "  Docs: http://localhost:%d%s\n", port, server.DocsPrefix)
		if open, _ := cmd.Flags().GetBool("open"); open {
			site.OpenBrowser(fmt.Sprintf("http://localhost:%d/", port))
		}
	}

	return srv.Start()
}
