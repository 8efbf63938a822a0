package navtree

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

// ErrBadPath is returned when a breadcrumb names a child that does not exist.
var ErrBadPath = errors.New("breadcrumb does not match tree")

const (
	DefaultRevealDuration = 200 * time.Millisecond
	DefaultRowHeight      = 22
	DefaultViewportHeight = 600
	IndentWidth           = 16
)

// Options tune a Tree. Zero values fall back to the defaults above.
type Options struct {
	RevealDuration time.Duration
	RowHeight      int
	ViewportHeight int
	Logger         *zap.Logger
}

// Tree is the navigation tree of one viewer. Structural changes are
// serialised by an internal mutex; shard fetches happen outside it so a slow
// fetch never blocks readers.
type Tree struct {
	mu       sync.Mutex
	root     *Node
	nodes    *NodeCache
	selected *Node
	scroll   int

	opts Options
	log  *zap.Logger
	obs  observers
}

// New builds a tree over the top-level NAVTREE entries. nodes is the shared
// node-data shard cache and may be shared between trees.
func New(top []shard.Entry, nodes *NodeCache, opts Options) *Tree {
	if opts.RevealDuration == 0 {
		opts.RevealDuration = DefaultRevealDuration
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	root := &Node{source: shard.Inline(top), expanded: true, isLast: true}
	root.build(top)

	return &Tree{root: root, nodes: nodes, opts: opts, log: log}
}

// Root returns the virtual root whose children are the top-level entries.
func (t *Tree) Root() *Node { return t.root }

// Subscribe registers fn for every event and returns a function removing it.
// fn runs synchronously and must not call back into the tree.
func (t *Tree) Subscribe(fn func(Event)) func() {
	return t.obs.add(fn)
}

// Emit publishes an event that did not originate in the tree, such as an
// anchor highlight.
func (t *Tree) Emit(ev Event) {
	t.obs.publish(ev)
}

// NodeAt returns the built node at path, or false if any step is missing.
func (t *Tree) NodeAt(path []int) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.root
	for _, i := range path {
		if i < 0 || i >= len(n.children) {
			return nil, false
		}
		n = n.children[i]
	}
	return n, true
}

// Expanded reports whether n shows its children.
func (t *Tree) Expanded(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return n.expanded
}

// Children returns the built children of n, nil until n was first expanded.
// The slice is never rebuilt once set.
func (t *Tree) Children(n *Node) []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return n.children
}

// Visited reports whether the children of n have been built.
func (t *Tree) Visited(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return n.visited
}

// Pending reports whether the children of n still live in an unfetched shard.
func (t *Tree) Pending(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return n.source.Pending()
}

// Expand shows the children of n, loading its shard first if needed. It does
// nothing if n is already expanded or has no children. Unless immediate, it
// waits for the reveal animation before returning.
func (t *Tree) Expand(ctx context.Context, n *Node, immediate bool) error {
	if err := t.ensureChildren(ctx, n); err != nil {
		return err
	}

	t.mu.Lock()
	if n.expanded || len(n.children) == 0 {
		t.mu.Unlock()
		return nil
	}
	n.expanded = true
	ev := Event{Kind: EventReveal, Path: n.Path(), Label: n.Label, Immediate: immediate}
	t.mu.Unlock()

	t.obs.publish(ev)
	if immediate {
		return nil
	}
	return t.animate(ctx)
}

// Collapse hides the children of n.
func (t *Tree) Collapse(ctx context.Context, n *Node, immediate bool) error {
	t.mu.Lock()
	if !n.expanded || n == t.root {
		t.mu.Unlock()
		return nil
	}
	n.expanded = false
	ev := Event{Kind: EventHide, Path: n.Path(), Label: n.Label, Immediate: immediate}
	t.mu.Unlock()

	t.obs.publish(ev)
	if immediate {
		return nil
	}
	return t.animate(ctx)
}

// Toggle flips n between expanded and collapsed, as clicking its glyph or
// the label of a group node does.
func (t *Tree) Toggle(ctx context.Context, n *Node) error {
	t.mu.Lock()
	expanded := n.expanded
	t.mu.Unlock()
	if expanded {
		return t.Collapse(ctx, n, false)
	}
	return t.Expand(ctx, n, false)
}

// CollapseAll collapses every node and clears the selection.
func (t *Tree) CollapseAll() {
	t.mu.Lock()
	var events []Event
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			walk(c)
			if c.expanded {
				c.expanded = false
				events = append(events, Event{Kind: EventHide, Path: c.Path(), Label: c.Label, Immediate: true})
			}
		}
	}
	walk(t.root)
	events = append(events, t.clearLocked()...)
	t.mu.Unlock()

	t.obs.publish(events...)
}

// ClearSelection removes the selection, if any.
func (t *Tree) ClearSelection() {
	t.mu.Lock()
	events := t.clearLocked()
	t.mu.Unlock()
	t.obs.publish(events...)
}

func (t *Tree) clearLocked() []Event {
	if t.selected == nil {
		return nil
	}
	t.selected = nil
	t.scroll = 0
	return []Event{{Kind: EventClear}}
}

// Selected returns the selected node, or nil.
func (t *Tree) Selected() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// ScrollOffset is the vertical offset that centres the selected row in the
// viewport.
func (t *Tree) ScrollOffset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scroll
}

// Select makes n the selected node.
func (t *Tree) Select(n *Node) {
	t.mu.Lock()
	events := t.selectLocked(n)
	t.mu.Unlock()
	t.obs.publish(events...)
}

// SelectPath walks path from the top of the tree, expanding every node on the
// way in order and loading shards as needed, then selects the node it ends on.
// page is the document being shown and hash its anchor: when a visible node
// links to exactly that anchor it is selected instead. On an index, pages or
// search page the final node is expanded too.
func (t *Tree) SelectPath(ctx context.Context, path []int, hash, page string) error {
	n := t.root
	for depth, i := range path {
		if err := t.Expand(ctx, n, true); err != nil {
			return err
		}
		child, ok := t.child(n, i)
		if !ok {
			t.ClearSelection()
			return fmt.Errorf("%w: no child %d at depth %d", ErrBadPath, i, depth)
		}
		n = child
	}

	if n != t.root {
		// The final node's children may still sit in an unfetched shard.
		if err := t.ensureChildren(ctx, n); err != nil {
			return err
		}
		switch location.PageBase(page) {
		case "index", "pages", "search":
			if err := t.Expand(ctx, n, true); err != nil {
				return err
			}
		}
	}

	t.mu.Lock()
	target := n
	if hash != "" {
		if m := t.findLinkLocked(location.Location{Path: page, Hash: hash}); m != nil {
			target = m
		}
	}
	var events []Event
	if target != t.root {
		events = t.selectLocked(target)
	} else {
		events = t.clearLocked()
	}
	t.mu.Unlock()

	t.obs.publish(events...)
	return nil
}

func (t *Tree) child(n *Node, i int) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(n.children) {
		return nil, false
	}
	return n.children[i], true
}

func (t *Tree) selectLocked(n *Node) []Event {
	if t.selected == n {
		return nil
	}
	var events []Event
	if t.selected != nil {
		events = append(events, Event{Kind: EventClear, Path: t.selected.Path()})
	}
	t.selected = n
	t.scroll = t.scrollOffsetLocked()
	return append(events,
		Event{Kind: EventSelect, Path: n.Path(), Label: n.Label, Link: n.Link},
		Event{Kind: EventScroll, Offset: t.scroll},
	)
}

func (t *Tree) scrollOffsetLocked() int {
	idx := 0
	found := false
	t.visitVisible(func(n *Node) bool {
		if n == t.selected {
			found = true
			return false
		}
		idx++
		return true
	})
	if !found {
		return 0
	}
	return max(0, idx*t.opts.RowHeight-t.opts.ViewportHeight/2)
}

// FindLink returns the first visible node linking to loc's page and anchor.
func (t *Tree) FindLink(loc location.Location) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findLinkLocked(loc)
}

// findLinkLocked returns the first visible node linking to loc's page and
// anchor.
func (t *Tree) findLinkLocked(loc location.Location) *Node {
	var match *Node
	t.visitVisible(func(n *Node) bool {
		if n.Link != "" && location.MatchesLink(n.Link, loc) {
			match = n
			return false
		}
		return true
	})
	return match
}

// visitVisible calls fn for every visible node in display order until fn
// returns false.
func (t *Tree) visitVisible(fn func(*Node) bool) {
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		for _, c := range n.children {
			if !fn(c) {
				return false
			}
			if c.expanded && !walk(c) {
				return false
			}
		}
		return true
	}
	walk(t.root)
}

// ensureChildren builds n's children once, fetching its shard if needed.
func (t *Tree) ensureChildren(ctx context.Context, n *Node) error {
	t.mu.Lock()
	if n.visited {
		t.mu.Unlock()
		return nil
	}
	src := n.source
	t.mu.Unlock()

	var entries []shard.Entry
	switch src.Kind {
	case shard.SourceInline:
		entries = src.Inline
	case shard.SourceShard:
		loaded, err := t.nodes.Load(ctx, src.Shard)
		if err != nil {
			t.log.Warn("node shard unavailable, subtree stays collapsed",
				zap.String("shard", src.Shard), zap.Ints("path", n.Path()), zap.Error(err))
			return err
		}
		entries = loaded
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n.visited {
		return nil
	}
	if src.Kind == shard.SourceShard {
		n.source = shard.Inline(entries)
	}
	n.build(entries)
	return nil
}

func (t *Tree) animate(ctx context.Context) error {
	timer := time.NewTimer(t.opts.RevealDuration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
