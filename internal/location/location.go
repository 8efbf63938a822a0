package location

import (
	"regexp"
	"strings"
)

// Location is the part of a browser location the navigator cares about.
type Location struct {
	Path string `json:"path"`
	Hash string `json:"hash"` // Includes the leading '#', or is empty.
}

// Parse splits "page.html#anchor" into a Location. A hash that is only "#"
// is dropped.
func Parse(raw string) Location {
	page, anchor := SplitLink(raw)
	return Location{Path: page, Hash: anchor}
}

func (l Location) String() string {
	return l.Path + l.Hash
}

// Anchor returns the hash without its leading '#'.
func (l Location) Anchor() string {
	return strings.TrimPrefix(l.Hash, "#")
}

var (
	lineAnchorRe = regexp.MustCompile(`^#l\d+$`)
	docSubdirRe  = regexp.MustCompile(`(?:^|/)d\w/d\w\w/$`)
)

// IsLineAnchor reports whether hash names a source line ("#l123"). Line
// anchors only trigger a highlight; they never drive tree navigation.
func IsLineAnchor(hash string) bool {
	return lineAnchorRe.MatchString(hash)
}

// NormalizeAnchor returns hash when it is a usable anchor and "" otherwise.
// Line anchors and anything not shaped like "#name" count as no anchor.
func NormalizeAnchor(hash string) string {
	if len(hash) < 2 || hash[0] != '#' || IsLineAnchor(hash) {
		return ""
	}
	if strings.ContainsAny(hash[1:], "# \t\r\n") {
		return ""
	}
	return hash
}

// SplitLink splits a tree link into its page and "#anchor" parts.
func SplitLink(link string) (page, anchor string) {
	i := strings.IndexByte(link, '#')
	if i < 0 {
		return link, ""
	}
	page, anchor = link[:i], link[i:]
	if anchor == "#" {
		anchor = ""
	}
	return page, anchor
}

// StripPath returns the last path segment of uri.
func StripPath(uri string) string {
	return uri[strings.LastIndexByte(uri, '/')+1:]
}

// StripPath2 is StripPath that keeps Doxygen's two-level hashed
// subdirectories ("d0/d74/") when the page lives in one.
func StripPath2(uri string) string {
	i := strings.LastIndexByte(uri, '/')
	if i < 0 {
		return uri
	}
	if docSubdirRe.MatchString(uri[:i+1]) && i >= 6 {
		return uri[i-6:]
	}
	return uri[i+1:]
}

// MatchesLink reports whether a tree link points at the same page base and
// anchor as loc.
func MatchesLink(link string, loc Location) bool {
	if loc.Hash == "" {
		return false
	}
	page, anchor := SplitLink(link)
	return anchor == loc.Hash && StripPath(page) == StripPath(loc.Path)
}

// Href resolves a tree link against relpath. Links starting with '^' are
// absolute and used as is.
func Href(link, relpath string) string {
	if strings.HasPrefix(link, "^") {
		return link[1:]
	}
	return relpath + link
}

// PageBase returns the page name without directories or extension, e.g.
// "index" for "../index.html".
func PageBase(uri string) string {
	base := StripPath(uri)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}
