package shard

import (
	"strconv"
	"strings"
)

// SourceKind tells where a node's children come from.
type SourceKind int

const (
	// SourceNone marks a leaf.
	SourceNone SourceKind = iota
	// SourceInline marks children that are already present in the payload.
	SourceInline
	// SourceShard marks children that live in a separate script fetched on demand.
	SourceShard
)

func (k SourceKind) String() string {
	switch k {
	case SourceInline:
		return "inline"
	case SourceShard:
		return "shard"
	default:
		return "none"
	}
}

// Source is the childrenSource of a navigation entry.
type Source struct {
	Kind   SourceKind
	Shard  string  // Script name without the .js suffix, e.g. "d0/d74/formats".
	Inline []Entry // Resolved children when Kind is SourceInline.
}

// Inline returns a resolved Source for the given children.
func Inline(children []Entry) Source {
	return Source{Kind: SourceInline, Inline: children}
}

// Lazy returns a Source that must be fetched from the named shard.
func Lazy(name string) Source {
	return Source{Kind: SourceShard, Shard: name}
}

// HasChildren reports whether a node with this source gets an expand glyph.
// An inline list counts even when empty.
func (s Source) HasChildren() bool {
	return s.Kind != SourceNone
}

// Pending reports whether the children still have to be fetched.
func (s Source) Pending() bool {
	return s.Kind == SourceShard
}

// Entry is one [label, link, childrenSource] tuple of a node-data shard.
type Entry struct {
	Label    string
	Link     string // Empty for pure group nodes.
	Children Source
}

// IndexScript is the script name of index shard i.
func IndexScript(i int) string {
	return "navtreeindex" + strconv.Itoa(i)
}

// IndexVarName is the variable index shard i declares.
func IndexVarName(i int) string {
	return "NAVTREEINDEX" + strconv.Itoa(i)
}

// VarName returns the variable a node-data shard script declares: the last
// path segment of its name with dashes turned into underscores.
func VarName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "-", "_")
}
