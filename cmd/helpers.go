package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/config"
	"github.com/ziadkadry99/doxnav/internal/history"
	"github.com/ziadkadry99/doxnav/internal/logging"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/prefs"
	"github.com/ziadkadry99/doxnav/internal/site"
)

// env is what most commands need: the configuration, a logger and the
// opened site.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	site *site.Site
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `doxnav init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for cfg; --verbose forces debug.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := string(cfg.LogLevel)
	if verbose {
		level = string(config.LogDebug)
	}
	return logging.New(level)
}

// setup loads the config and opens the configured site.
func setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	s, err := site.Open(ctx, cfg.Site, site.Options{
		Relpath:      cfg.Relpath,
		RootDocument: cfg.RootDocument,
		Logger:       log,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("opening site %s: %w", cfg.Site, err)
	}
	return &env{cfg: cfg, log: log, site: s}, nil
}

// close flushes the logger.
func (e *env) close() {
	_ = e.log.Sync()
}

// openPrefs opens the sync preference store. The returned function closes it.
func (e *env) openPrefs() (prefs.Store, func() error) {
	return prefs.Open(e.cfg.StatePath, e.cfg.Persist, e.log)
}

// historyStore returns a navigation history store sharing store's database,
// or nil when preferences are not kept in SQLite.
func historyStore(store prefs.Store) *history.Store {
	sq, ok := store.(*prefs.SQLiteStore)
	if !ok {
		return nil
	}
	return history.NewStore(sq.DB())
}

// treeOptions translates the configured tree geometry.
func (e *env) treeOptions() navtree.Options {
	return navtree.Options{
		RevealDuration: e.cfg.RevealDuration,
		RowHeight:      e.cfg.RowHeight,
		ViewportHeight: e.cfg.ViewportHeight,
		Logger:         e.log,
	}
}

// startLocation returns the location given on the command line or the
// site's main page.
func (e *env) startLocation(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return e.site.Index.RootDocument()
}
