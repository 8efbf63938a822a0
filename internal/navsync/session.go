// Package navsync keeps a navigation tree in step with the location of the
// page being viewed.
package navsync

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/anchor"
	"github.com/ziadkadry99/doxnav/internal/history"
	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navindex"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/prefs"
	"github.com/ziadkadry99/doxnav/internal/site"
)

// State is where a session is in handling a navigation event.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateExpanding State = "expanding"
)

// Recorder receives a record of every navigation a session handles.
type Recorder interface {
	Log(ctx context.Context, e history.Entry) error
}

// Session is one viewer of a site: a tree, the page it shows and its sync
// preference.
type Session struct {
	ID string

	site  *site.Site
	tree  *navtree.Tree
	prefs prefs.Store
	log   *zap.Logger

	mu          sync.Mutex
	state       State
	syncEnabled bool
	loc         location.Location
	breadcrumbs []int
	gen         uint64
	lastErr     string
	rec         Recorder
}

// NewSession creates a session over s. Sync starts enabled unless a
// persisted path exists. With unavailable storage sync is off and cannot be
// toggled.
func NewSession(ctx context.Context, id string, s *site.Site, store prefs.Store, opts navtree.Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = prefs.Unavailable{}
	}
	log = log.With(zap.String("session", id))
	if opts.Logger == nil {
		opts.Logger = log
	}

	sess := &Session{
		ID:    id,
		site:  s,
		tree:  s.NewTree(opts),
		prefs: store,
		log:   log,
		state: StateIdle,
	}
	if store.Available() {
		p, err := store.Get(ctx, prefs.NavPathKey)
		if err != nil {
			log.Warn("reading persisted path", zap.Error(err))
		}
		sess.syncEnabled = p == ""
	}
	return sess
}

// SetRecorder makes the session log its navigations to r.
func (s *Session) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = r
}

// Tree returns the session's tree.
func (s *Session) Tree() *navtree.Tree { return s.tree }

// SyncAvailable reports whether the sync toggle is offered at all.
func (s *Session) SyncAvailable() bool { return s.prefs.Available() }

// SyncEnabled reports whether the tree follows the page freely.
func (s *Session) SyncEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncEnabled
}

// Location returns the page the session is showing.
func (s *Session) Location() location.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load handles the initial load of the page at loc.
func (s *Session) Load(ctx context.Context, loc location.Location) error {
	if err := s.navigate(ctx, loc); err != nil {
		return err
	}
	s.record(ctx, history.ActionLoad, loc.String(), "")
	return nil
}

// HashChange handles a change of the location's anchor. The selection is
// kept when it already points at the new anchor.
func (s *Session) HashChange(ctx context.Context, loc location.Location) error {
	if err := s.hashChange(ctx, loc); err != nil {
		return err
	}
	s.record(ctx, history.ActionHashChange, loc.String(), "")
	return nil
}

func (s *Session) hashChange(ctx context.Context, loc location.Location) error {
	if len(loc.Hash) > 1 {
		if sel := s.tree.Selected(); sel == nil || !location.MatchesLink(sel.Link, loc) {
			s.tree.ClearSelection()
		}
		return s.navigate(ctx, location.Location{Path: location.StripPath2(loc.Path), Hash: loc.Hash})
	}
	s.tree.ClearSelection()
	return s.navigate(ctx, location.Location{Path: loc.Path})
}

// FollowLink handles activation of a tree link. While sync is off the link
// is persisted so later loads return to it. Anchors on the current page
// select the clicked node in place; other pages are loaded.
func (s *Session) FollowLink(ctx context.Context, link string) error {
	if err := s.followLink(ctx, link); err != nil {
		return err
	}
	s.record(ctx, history.ActionFollow, s.Location().String(), link)
	return nil
}

func (s *Session) followLink(ctx context.Context, link string) error {
	absolute := strings.HasPrefix(link, "^")
	link = strings.TrimPrefix(link, "^")

	s.mu.Lock()
	persist := !s.syncEnabled
	cur := s.loc
	s.mu.Unlock()

	if persist && s.prefs.Available() {
		if err := s.prefs.Set(ctx, prefs.NavPathKey, link); err != nil {
			s.log.Warn("persisting followed link", zap.String("link", link), zap.Error(err))
		}
	}
	if absolute {
		return nil
	}

	page, hash := location.SplitLink(link)
	if hash != "" && location.StripPath(page) == location.StripPath(cur.Path) {
		loc := location.Location{Path: cur.Path, Hash: hash}
		if n := s.tree.FindLink(loc); n != nil {
			s.tree.Select(n)
		}
		s.mu.Lock()
		s.loc = loc
		s.mu.Unlock()
		s.highlight(ctx, loc)
		return nil
	}
	return s.navigate(ctx, location.Location{Path: page, Hash: hash})
}

// ToggleSync flips the sync preference and returns the new value. Turning
// sync off persists the page being shown; turning it on clears the persisted
// path. Without storage it does nothing.
func (s *Session) ToggleSync(ctx context.Context) (bool, error) {
	if !s.prefs.Available() {
		return false, nil
	}

	s.mu.Lock()
	value := ""
	if s.syncEnabled {
		value = location.StripPath2(s.loc.Path) + s.loc.Hash
	}
	if err := s.prefs.Set(ctx, prefs.NavPathKey, value); err != nil {
		enabled := s.syncEnabled
		s.mu.Unlock()
		return enabled, err
	}
	s.syncEnabled = !s.syncEnabled
	enabled, loc := s.syncEnabled, s.loc
	s.mu.Unlock()

	s.log.Debug("sync toggled", zap.Bool("enabled", enabled), zap.String("navpath", value))
	action := history.ActionSyncOff
	if enabled {
		action = history.ActionSyncOn
	}
	s.record(ctx, action, loc.String(), value)
	return enabled, nil
}

// ToggleNode expands or collapses the node at path.
func (s *Session) ToggleNode(ctx context.Context, path []int) error {
	n, ok := s.tree.NodeAt(path)
	if !ok {
		return navtree.ErrBadPath
	}
	return s.tree.Toggle(ctx, n)
}

// navigate resolves loc and walks the tree to it. A location resolved only
// through the root document collapses the tree first, so the root node is
// the one row left selected. Resolution misses and shard failures leave the
// tree in a defined state and are only logged; the returned error is limited
// to cancellation.
func (s *Session) navigate(ctx context.Context, loc location.Location) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loc = loc
	s.state = StateResolving
	s.lastErr = ""
	s.mu.Unlock()
	defer s.finish(gen)

	// A path persisted by any session sharing the store wins, whatever this
	// session's own sync state.
	doc, hash := location.StripPath2(loc.Path), loc.Hash
	if s.prefs.Available() {
		p, err := s.prefs.Get(ctx, prefs.NavPathKey)
		if err != nil {
			s.log.Warn("reading persisted path", zap.Error(err))
		} else if p != "" {
			doc, hash = location.SplitLink(p)
		}
	}
	if location.IsLineAnchor(hash) {
		s.highlight(ctx, location.Location{Path: loc.Path, Hash: hash})
		hash = ""
	}

	bc, err := s.site.Index.Resolve(ctx, doc, hash)
	if err != nil {
		if errors.Is(err, navindex.ErrNotFound) {
			s.log.Info("location not in navigation index, showing root collapsed",
				zap.String("doc", doc), zap.String("hash", hash))
			s.mu.Lock()
			if s.gen == gen {
				s.breadcrumbs = nil
			}
			s.mu.Unlock()
			s.tree.CollapseAll()
			return nil
		}
		return s.degrade(ctx, gen, "resolving location", err)
	}

	if bc.Fallback {
		s.tree.CollapseAll()
	}

	path := append([]int{0}, bc.Path...)
	s.mu.Lock()
	if s.gen == gen {
		s.state = StateExpanding
		s.breadcrumbs = path
	}
	s.mu.Unlock()

	if err := s.tree.SelectPath(ctx, path, hash, loc.Path); err != nil {
		return s.degrade(ctx, gen, "expanding tree", err)
	}
	if hash != "" && !bc.Fallback {
		s.highlight(ctx, location.Location{Path: loc.Path, Hash: hash})
	}
	return nil
}

func (s *Session) degrade(ctx context.Context, gen uint64, msg string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.log.Warn(msg, zap.Error(err))
	s.mu.Lock()
	if s.gen == gen {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.state = StateIdle
	}
}

// record logs a handled navigation to the recorder, if any.
func (s *Session) record(ctx context.Context, action history.Action, loc, detail string) {
	s.mu.Lock()
	rec := s.rec
	s.mu.Unlock()
	if rec == nil {
		return
	}
	e := history.Entry{SessionID: s.ID, Action: action, Location: loc, Detail: detail}
	if n := s.tree.Selected(); n != nil {
		e.Selected = n.Path()
	}
	if err := rec.Log(ctx, e); err != nil {
		s.log.Warn("recording navigation history", zap.String("action", string(action)), zap.Error(err))
	}
}

// highlight asks the page how it glows at loc's anchor and publishes it.
func (s *Session) highlight(ctx context.Context, loc location.Location) {
	h, err := s.site.Highlight(ctx, loc.Path, loc.Hash)
	if err != nil {
		if !errors.Is(err, anchor.ErrAnchorNotFound) {
			s.log.Debug("no anchor highlight", zap.String("page", loc.Path), zap.String("hash", loc.Hash), zap.Error(err))
		}
		return
	}
	s.tree.Emit(navtree.Event{
		Kind:     navtree.EventGlow,
		Anchor:   h.Anchor,
		Target:   string(h.Kind),
		Duration: h.Duration,
	})
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID            string            `json:"id"`
	State         State             `json:"state"`
	SyncEnabled   bool              `json:"sync_enabled"`
	SyncAvailable bool              `json:"sync_available"`
	Location      location.Location `json:"location"`
	Breadcrumbs   []int             `json:"breadcrumbs,omitempty"`
	Selected      []int             `json:"selected,omitempty"`
	Scroll        int               `json:"scroll"`
	Rows          []navtree.Row     `json:"rows"`
	Error         string            `json:"error,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:            s.ID,
		State:         s.state,
		SyncEnabled:   s.syncEnabled,
		SyncAvailable: s.prefs.Available(),
		Location:      s.loc,
		Breadcrumbs:   append([]int(nil), s.breadcrumbs...),
		Error:         s.lastErr,
	}
	s.mu.Unlock()

	if n := s.tree.Selected(); n != nil {
		snap.Selected = n.Path()
	}
	snap.Scroll = s.tree.ScrollOffset()
	snap.Rows = s.tree.Rows()
	return snap
}
