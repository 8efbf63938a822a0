package navindex

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/fetch"
	"github.com/ziadkadry99/doxnav/internal/loader"
	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

var (
	ErrNotFound           = errors.New("location not in navigation index")
	ErrUnsortedBoundaries = errors.New("navigation index boundaries are not sorted")
)

// Breadcrumb is a resolved location: the sibling indices leading from the
// top-level tree node to the target.
type Breadcrumb struct {
	Path     []int  `json:"path"`
	Doc      string `json:"doc"`    // Document the path was found for.
	Anchor   string `json:"anchor"` // Normalized anchor that was asked for, if any.
	Key      string `json:"key"`    // Index key that matched.
	Shard    int    `json:"shard"`
	Fallback bool   `json:"fallback"` // Resolved against the root document instead.
}

// Store is the sharded page index. Index shards are fetched on first use and
// kept for the lifetime of the store.
type Store struct {
	boundaries []string
	rootDoc    string
	shards     *loader.Cache[map[string][]int]
	log        *zap.Logger
}

// NewStore builds a store over the NAVTREEINDEX boundary table. rootDoc is
// the document shown when a location cannot be resolved, usually the link of
// the top-level tree node.
func NewStore(boundaries []string, rootDoc string, f fetch.Fetcher, log *zap.Logger) (*Store, error) {
	if !sort.StringsAreSorted(boundaries) {
		return nil, ErrUnsortedBoundaries
	}
	if log == nil {
		log = zap.NewNop()
	}
	parse := func(name string, data []byte) (map[string][]int, error) {
		return shard.ParseIndex(data, strings.ToUpper(name))
	}
	return &Store{
		boundaries: slices.Clone(boundaries),
		rootDoc:    rootDoc,
		shards:     loader.New(f, parse, log),
		log:        log,
	}, nil
}

// RootDocument is the fallback document.
func (s *Store) RootDocument() string { return s.rootDoc }

// ShardCount is the number of index shards.
func (s *Store) ShardCount() int { return len(s.boundaries) }

// Fetches reports how many index shard fetches were issued.
func (s *Store) Fetches() int64 { return s.shards.Fetches() }

// ShardFor returns the shard whose range holds key: the last boundary that
// is <= key. ok is false when key sorts before every boundary, in which case
// shard 0 is returned.
func (s *Store) ShardFor(key string) (i int, ok bool) {
	i = sort.Search(len(s.boundaries), func(i int) bool { return s.boundaries[i] > key }) - 1
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Resolve maps a document and optional anchor to a breadcrumb. Line anchors
// and malformed anchors are ignored. When neither doc+anchor nor doc is
// indexed, resolution is retried once against the root document; a miss
// there returns ErrNotFound.
func (s *Store) Resolve(ctx context.Context, doc, anchor string) (Breadcrumb, error) {
	anchor = location.NormalizeAnchor(anchor)

	i, ok := s.ShardFor(doc + anchor)
	fallback := false
	if !ok {
		doc = s.rootDoc
		fallback = true
	}

	bc, err := s.lookupIn(ctx, i, doc, anchor)
	if err == nil {
		bc.Fallback = fallback
		return bc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Breadcrumb{}, err
	}

	j, _ := s.ShardFor(s.rootDoc)
	if doc == s.rootDoc && j == i {
		return Breadcrumb{}, err
	}

	s.log.Debug("location not indexed, showing root document",
		zap.String("doc", doc), zap.String("anchor", anchor))

	bc, rerr := s.lookupIn(ctx, j, s.rootDoc, "")
	if rerr != nil {
		if errors.Is(rerr, ErrNotFound) {
			return Breadcrumb{}, err
		}
		return Breadcrumb{}, rerr
	}
	bc.Fallback = true
	return bc, nil
}

func (s *Store) lookupIn(ctx context.Context, i int, doc, anchor string) (Breadcrumb, error) {
	index, err := s.load(ctx, i)
	if err != nil {
		return Breadcrumb{}, err
	}
	bc, ok := lookup(index, doc, anchor)
	if !ok {
		return Breadcrumb{}, fmt.Errorf("%w: %s%s", ErrNotFound, doc, anchor)
	}
	bc.Shard = i
	return bc, nil
}

func (s *Store) load(ctx context.Context, i int) (map[string][]int, error) {
	return s.shards.Load(ctx, shard.IndexScript(i))
}

func lookup(index map[string][]int, doc, anchor string) (Breadcrumb, bool) {
	if anchor != "" {
		if path, ok := index[doc+anchor]; ok {
			return Breadcrumb{Path: slices.Clone(path), Doc: doc, Anchor: anchor, Key: doc + anchor}, true
		}
	}
	if path, ok := index[doc]; ok {
		return Breadcrumb{Path: slices.Clone(path), Doc: doc, Anchor: anchor, Key: doc}, true
	}
	return Breadcrumb{}, false
}
