package navtree

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/doxnav/internal/fetch"
	"github.com/ziadkadry99/doxnav/internal/loader"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

func leaf(label, link string) shard.Entry {
	return shard.Entry{Label: label, Link: link}
}

func group(label, link string, children ...shard.Entry) shard.Entry {
	return shard.Entry{Label: label, Link: link, Children: shard.Inline(children)}
}

func lazy(label, link, name string) shard.Entry {
	return shard.Entry{Label: label, Link: link, Children: shard.Lazy(name)}
}

var shardFS = fstest.MapFS{
	"shardX.js": {Data: []byte(`var shardX = [ [ "Inner", "inner.html", null ], [ "Other", "other.html", null ] ];`)},
}

func newTree(t *testing.T, top ...shard.Entry) (*Tree, *NodeCache) {
	t.Helper()
	nodes := NewNodeCache(fetch.NewDir(shardFS), nil)
	return New(top, nodes, Options{RevealDuration: time.Millisecond, RowHeight: 22, ViewportHeight: 100}), nodes
}

func record(tr *Tree, kind EventKind) *[][]int {
	var mu sync.Mutex
	var paths [][]int
	tr.Subscribe(func(ev Event) {
		if ev.Kind == kind {
			mu.Lock()
			paths = append(paths, ev.Path)
			mu.Unlock()
		}
	})
	return &paths
}

func selectedRows(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if r.Selected {
			out = append(out, r)
		}
	}
	return out
}

func TestSelectPath_ExpandsInBreadcrumbOrder(t *testing.T) {
	tr, _ := newTree(t,
		leaf("c0", "c0.html"),
		leaf("c1", "c1.html"),
		group("c2", "c2.html",
			group("c2.c0", "c20.html",
				leaf("c2.c0.c0", "c200.html"),
				leaf("c2.c0.c1", "c201.html"),
			),
		),
	)
	reveals := record(tr, EventReveal)

	require.NoError(t, tr.SelectPath(context.Background(), []int{2, 0, 1}, "", "c201.html"))

	assert.Equal(t, [][]int{{2}, {2, 0}}, *reveals)
	sel := tr.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "c2.c0.c1", sel.Label)
	assert.Equal(t, []int{2, 0, 1}, sel.Path())
	assert.False(t, tr.Expanded(sel))

	rows := selectedRows(tr.Rows())
	require.Len(t, rows, 1)
	assert.Equal(t, "c201.html", rows[0].Link)
}

func TestExpand_Idempotent(t *testing.T) {
	tr, _ := newTree(t, group("g", "", leaf("a", "a.html"), leaf("b", "b.html")))
	reveals := record(tr, EventReveal)
	n, ok := tr.NodeAt([]int{0})
	require.True(t, ok)

	require.NoError(t, tr.Expand(context.Background(), n, true))
	first := tr.Children(n)
	require.NoError(t, tr.Expand(context.Background(), n, false))

	assert.True(t, tr.Expanded(n))
	require.Len(t, tr.Children(n), 2)
	assert.Same(t, first[0], tr.Children(n)[0])
	assert.Same(t, first[1], tr.Children(n)[1])
	assert.Len(t, *reveals, 1)
}

func TestExpand_ConcurrentRequestsShareOneFetch(t *testing.T) {
	tr, nodes := newTree(t, lazy("x", "x.html", "shardX"))
	n, _ := tr.NodeAt([]int{0})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, tr.Expand(context.Background(), n, true))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, nodes.Fetches())
	assert.True(t, tr.Expanded(n))
	require.Len(t, tr.Children(n), 2)
	assert.Equal(t, "Inner", tr.Children(n)[0].Label)
	assert.False(t, tr.Pending(n))
}

func TestExpand_ShardFailureLeavesSubtreeCollapsed(t *testing.T) {
	tr, nodes := newTree(t, lazy("m", "m.html", "missing"))
	n, _ := tr.NodeAt([]int{0})

	err := tr.Expand(context.Background(), n, true)
	require.ErrorIs(t, err, loader.ErrShardLoad)
	assert.ErrorIs(t, err, fetch.ErrNotFound)
	assert.False(t, tr.Expanded(n))
	assert.Nil(t, tr.Children(n))

	require.ErrorIs(t, tr.Expand(context.Background(), n, true), loader.ErrShardLoad)
	assert.EqualValues(t, 1, nodes.Fetches())
}

func TestExpand_LeafIsNoop(t *testing.T) {
	tr, _ := newTree(t, leaf("a", "a.html"))
	n, _ := tr.NodeAt([]int{0})
	require.NoError(t, tr.Expand(context.Background(), n, false))
	assert.False(t, tr.Expanded(n))
}

func TestExpand_CancelledDuringReveal(t *testing.T) {
	nodes := NewNodeCache(fetch.NewDir(shardFS), nil)
	tr := New([]shard.Entry{group("g", "", leaf("a", "a.html"))}, nodes, Options{RevealDuration: time.Hour})
	n, _ := tr.NodeAt([]int{0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Expand(ctx, n, false), context.Canceled)
	assert.True(t, tr.Expanded(n))
}

func TestToggle(t *testing.T) {
	tr, _ := newTree(t, group("g", "", leaf("a", "a.html")))
	hides := record(tr, EventHide)
	n, _ := tr.NodeAt([]int{0})

	require.NoError(t, tr.Toggle(context.Background(), n))
	assert.True(t, tr.Expanded(n))
	require.NoError(t, tr.Toggle(context.Background(), n))
	assert.False(t, tr.Expanded(n))
	assert.Equal(t, [][]int{{0}}, *hides)
	require.Len(t, tr.Children(n), 1)
}

func TestNodeStateReadsWhileToggling(t *testing.T) {
	tr, _ := newTree(t, lazy("x", "x.html", "shardX"))
	n, _ := tr.NodeAt([]int{0})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.NoError(t, tr.Toggle(ctx, n))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = tr.Expanded(n)
			_ = tr.Children(n)
			_ = tr.Visited(n)
			_ = tr.Pending(n)
		}
	}()
	wg.Wait()

	assert.False(t, tr.Expanded(n))
	assert.True(t, tr.Visited(n))
	assert.Len(t, tr.Children(n), 2)
}

func TestSelectPath_FetchesTerminalShard(t *testing.T) {
	tr, nodes := newTree(t, lazy("x", "x.html", "shardX"))

	require.NoError(t, tr.SelectPath(context.Background(), []int{0}, "", "x.html"))
	n := tr.Selected()
	require.NotNil(t, n)
	assert.True(t, tr.Visited(n))
	assert.False(t, tr.Expanded(n))
	assert.EqualValues(t, 1, nodes.Fetches())
}

func TestSelectPath_ExpandsTargetOnIndexPage(t *testing.T) {
	tr, _ := newTree(t, lazy("x", "index.html", "shardX"))

	require.NoError(t, tr.SelectPath(context.Background(), []int{0}, "", "../index.html"))
	n := tr.Selected()
	require.NotNil(t, n)
	assert.True(t, tr.Expanded(n))
	assert.Len(t, tr.Rows(), 3)
}

func TestSelectPath_PrefersNodeLinkingToAnchor(t *testing.T) {
	tr, _ := newTree(t,
		leaf("Page", "d1/d2b/p.html"),
		leaf("Member", "d1/d2b/p.html#a1"),
	)

	require.NoError(t, tr.SelectPath(context.Background(), []int{0}, "#a1", "/docs/d1/d2b/p.html"))
	assert.Equal(t, "Member", tr.Selected().Label)

	require.NoError(t, tr.SelectPath(context.Background(), []int{0}, "#zz", "/docs/d1/d2b/p.html"))
	assert.Equal(t, "Page", tr.Selected().Label)
}

func TestSelectPath_BadPath(t *testing.T) {
	tr, _ := newTree(t, group("g", "g.html", leaf("a", "a.html")))
	require.NoError(t, tr.SelectPath(context.Background(), []int{0, 0}, "", "a.html"))

	err := tr.SelectPath(context.Background(), []int{0, 5}, "", "a.html")
	assert.ErrorIs(t, err, ErrBadPath)
	assert.Nil(t, tr.Selected())
}

func TestSelection_AtMostOneRow(t *testing.T) {
	tr, _ := newTree(t,
		group("g", "g.html", leaf("a", "a.html"), leaf("b", "b.html")),
		leaf("c", "c.html"),
	)
	ctx := context.Background()
	for _, p := range [][]int{{0, 0}, {0, 1}, {1}, {0}, {0, 1}} {
		require.NoError(t, tr.SelectPath(ctx, p, "", ""))
		rows := selectedRows(tr.Rows())
		require.Len(t, rows, 1)
		assert.Equal(t, p, rows[0].Path)
	}
	tr.ClearSelection()
	assert.Empty(t, selectedRows(tr.Rows()))
}

func TestScrollOffset(t *testing.T) {
	var top []shard.Entry
	for i := 0; i < 10; i++ {
		top = append(top, leaf("n", "n.html"))
	}
	tr, _ := newTree(t, top...)

	tr.Select(tr.Children(tr.Root())[8])
	assert.Equal(t, 8*22-50, tr.ScrollOffset())

	tr.Select(tr.Children(tr.Root())[1])
	assert.Equal(t, 0, tr.ScrollOffset())
}

func TestCollapseAll(t *testing.T) {
	tr, _ := newTree(t, group("g", "g.html", group("h", "", leaf("a", "a.html"))))
	require.NoError(t, tr.SelectPath(context.Background(), []int{0, 0, 0}, "", ""))
	require.Len(t, tr.Rows(), 3)

	tr.CollapseAll()
	rows := tr.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, GlyphCollapsed, rows[0].Glyph)
	assert.Nil(t, tr.Selected())
}

func TestRows(t *testing.T) {
	tr, _ := newTree(t,
		group("Top", "index.html",
			leaf("Leaf", "leaf.html"),
			group("Group", "", leaf("a", "a.html")),
			leaf("External", "^https://example.org/"),
		),
	)
	require.NoError(t, tr.SelectPath(context.Background(), []int{0, 1}, "", ""))
	require.NoError(t, tr.Expand(context.Background(), tr.Selected(), true))

	rows := tr.Rows()
	require.Len(t, rows, 5)

	assert.Equal(t, GlyphExpandedLast, rows[0].Glyph)
	assert.Equal(t, 0, rows[0].Indent)
	assert.Equal(t, ActionNavigate, rows[0].Action)

	assert.Equal(t, GlyphNone, rows[1].Glyph)
	assert.Equal(t, 2*IndentWidth, rows[1].Indent)

	assert.Equal(t, GlyphExpanded, rows[2].Glyph)
	assert.Equal(t, IndentWidth, rows[2].Indent)
	assert.Equal(t, ActionToggle, rows[2].Action)
	assert.True(t, rows[2].Selected)

	assert.Equal(t, []int{0, 1, 0}, rows[3].Path)
	assert.Equal(t, 3, rows[3].Depth)

	out := RenderText(rows)
	assert.Contains(t, out, "Top")
	assert.Contains(t, out, "External")
	assert.Contains(t, out, "▾")
}
