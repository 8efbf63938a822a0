package navtree

import (
	"slices"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/fetch"
	"github.com/ziadkadry99/doxnav/internal/loader"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

// Node is one entry of the navigation tree. Children are created the first
// time the node is expanded and are never rebuilt.
//
// Expansion state and children are owned by the Tree and read through
// Tree.Expanded, Tree.Children and Tree.Visited.
type Node struct {
	Label string
	Link  string

	source   shard.Source
	parent   *Node
	index    int
	depth    int
	children []*Node
	visited  bool
	expanded bool
	isLast   bool
}

func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Depth() int { return n.depth }
func (n *Node) hasChildren() bool { return n.source.HasChildren() }

// Path returns the sibling indices from the top of the tree to n.
func (n *Node) Path() []int {
	var p []int
	for c := n; c.parent != nil; c = c.parent {
		p = append(p, c.index)
	}
	slices.Reverse(p)
	return p
}

func (n *Node) build(entries []shard.Entry) {
	n.children = make([]*Node, len(entries))
	for i, e := range entries {
		n.children[i] = &Node{
			Label:  e.Label,
			Link:   e.Link,
			source: e.Children,
			parent: n,
			index:  i,
			depth:  n.depth + 1,
			isLast: i == len(entries)-1,
		}
	}
	n.visited = true
}

// NodeCache is the shared cache of node-data shards.
type NodeCache = loader.Cache[[]shard.Entry]

// NewNodeCache returns a cache that loads node-data shards through f.
func NewNodeCache(f fetch.Fetcher, log *zap.Logger) *NodeCache {
	return loader.New(f, func(name string, data []byte) ([]shard.Entry, error) {
		return shard.ParseEntries(data, shard.VarName(name))
	}, log)
}
