// Package site opens a generated documentation site and exposes the pieces
// a navigation session needs: the top of the tree, the page index and the
// shared node shard cache.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/anchor"
	"github.com/ziadkadry99/doxnav/internal/fetch"
	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navindex"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

// DataScript is the bootstrap script holding NAVTREE and NAVTREEINDEX.
const DataScript = "navtreedata"

// Options configure Open.
type Options struct {
	Relpath      string // prefix from the viewed page to the site root
	RootDocument string // overrides the link of the top-level node
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Site is an opened documentation site. Its caches are shared by every
// session viewing it.
type Site struct {
	Title   string
	Top     []shard.Entry
	Index   *navindex.Store
	Nodes   *navtree.NodeCache
	Relpath string
	Dir     string // local directory, empty for remote sites
	URL     string // base URL, empty for local sites

	pages fetch.Fetcher
	log   *zap.Logger
}

// Open loads the site at source, which is either an http(s) URL or a local
// directory containing navtreedata.js.
func Open(ctx context.Context, source string, opts Options) (*Site, error) {
	if source == "" {
		return nil, errors.New("no site configured")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		h := fetch.NewHTTP(source, opts.HTTPClient)
		s, err := New(ctx, h, h.Documents(), opts)
		if err != nil {
			return nil, err
		}
		s.URL = source
		return s, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("opening site: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening site: %s is not a directory", source)
	}
	d := fetch.NewDir(os.DirFS(source))
	s, err := New(ctx, d, d.Documents(), opts)
	if err != nil {
		return nil, err
	}
	s.Dir = source
	return s, nil
}

// New builds a site from a script fetcher and a page fetcher.
func New(ctx context.Context, scripts, pages fetch.Fetcher, opts Options) (*Site, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	scripts = fetch.WithPrefix(scripts, opts.Relpath)
	pages = fetch.WithPrefix(pages, opts.Relpath)

	data, err := scripts.Fetch(ctx, DataScript)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DataScript, err)
	}
	top, err := shard.ParseEntries(data, "NAVTREE")
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DataScript, err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("loading %s: %w: empty NAVTREE", DataScript, shard.ErrMalformed)
	}
	boundaries, err := shard.ParseStrings(data, "NAVTREEINDEX")
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DataScript, err)
	}

	root := opts.RootDocument
	if root == "" {
		root = top[0].Link
	}
	index, err := navindex.NewStore(boundaries, root, scripts, log)
	if err != nil {
		return nil, err
	}

	log.Debug("site opened",
		zap.String("title", top[0].Label),
		zap.String("root", root),
		zap.Int("index_shards", len(boundaries)))

	return &Site{
		Title:   top[0].Label,
		Top:     top,
		Index:   index,
		Nodes:   navtree.NewNodeCache(scripts, log),
		Relpath: opts.Relpath,
		pages:   pages,
		log:     log,
	}, nil
}

// NewTree creates a fresh tree view sharing the site's node cache.
func (s *Site) NewTree(opts navtree.Options) *navtree.Tree {
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	return navtree.New(s.Top, s.Nodes, opts)
}

// Highlight classifies how page highlights anchor.
func (s *Site) Highlight(ctx context.Context, page, hash string) (anchor.Highlight, error) {
	data, err := s.pages.Fetch(ctx, location.StripPath2(page))
	if err != nil {
		return anchor.Highlight{}, err
	}
	return anchor.Classify(bytes.NewReader(data), hash)
}
