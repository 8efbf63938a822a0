package navindex

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/doxnav/internal/progress"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

// Entry is one index key with its breadcrumb.
type Entry struct {
	Key  string `json:"key"`
	Path []int  `json:"path"`
}

// Warm loads every index shard. Shards that fail are reported and skipped;
// the joined errors are returned after all shards were attempted.
func (s *Store) Warm(ctx context.Context, r progress.Reporter) error {
	if r != nil {
		r.Start(len(s.boundaries))
		defer r.Finish()
	}
	var errs []error
	for i := range s.boundaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := s.load(ctx, i)
		if err != nil {
			errs = append(errs, err)
		}
		if r != nil {
			r.Update(i+1, shard.IndexScript(i))
		}
	}
	return errors.Join(errs...)
}

// Find returns the indexed keys matching any of the glob patterns, sorted.
// Patterns use doublestar syntax and are matched against the page part of
// the key, then against its last path segment, so "*_8h.html" matches
// headers in any directory. A pattern containing '#' matches the full key.
// All shards are loaded first.
func (s *Store) Find(ctx context.Context, patterns []string) ([]Entry, error) {
	if err := s.Warm(ctx, nil); err != nil {
		return nil, err
	}
	var out []Entry
	for i := range s.boundaries {
		index, ok := s.shards.Peek(shard.IndexScript(i))
		if !ok {
			continue
		}
		for key, p := range index {
			if matchesAny(key, patterns) {
				out = append(out, Entry{Key: key, Path: append([]int(nil), p...)})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out, nil
}

// matchesAny reports whether key matches one of patterns. An empty pattern
// list matches everything.
func matchesAny(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	page := key
	if i := strings.IndexByte(key, '#'); i >= 0 {
		page = key[:i]
	}
	for _, pattern := range patterns {
		if strings.Contains(pattern, "#") {
			if ok, err := doublestar.Match(pattern, key); err == nil && ok {
				return true
			}
			continue
		}
		if page != key {
			// Anchored keys only match patterns that name an anchor.
			continue
		}
		if ok, err := doublestar.Match(pattern, page); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, path.Base(page)); err == nil && ok {
			return true
		}
	}
	return false
}
