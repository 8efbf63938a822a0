package shard

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/ohler55/ojg/sen"
)

var (
	ErrVarNotFound = errors.New("shard: variable not found")
	ErrMalformed   = errors.New("shard: malformed payload")
)

// Extract returns the literal assigned to the named variable in a script of
// the form `var NAME = <array or object>;`. Only the literal is returned; the
// script is never evaluated.
func Extract(src []byte, name string) ([]byte, error) {
	re := regexp.MustCompile(`(?:^|[;\s])var\s+` + regexp.QuoteMeta(name) + `\s*=`)
	loc := re.FindIndex(src)
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", ErrVarNotFound, name)
	}

	start := loc[1]
	for start < len(src) && isSpace(src[start]) {
		start++
	}
	if start >= len(src) || (src[start] != '[' && src[start] != '{') {
		return nil, fmt.Errorf("%w: %s is not an array or object", ErrMalformed, name)
	}

	depth := 0
	var quote byte
	for i := start; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return src[start : i+1], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unterminated literal for %s", ErrMalformed, name)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func decode(src []byte, name string) (any, error) {
	lit, err := Extract(src, name)
	if err != nil {
		return nil, err
	}
	v, err := sen.Parse(lit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return v, nil
}

// ParseEntries decodes a node-data shard (or the root NAVTREE) declared as name.
func ParseEntries(src []byte, name string) ([]Entry, error) {
	v, err := decode(src, name)
	if err != nil {
		return nil, err
	}
	entries, err := toEntries(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return entries, nil
}

// ParseIndex decodes an index shard mapping page keys to breadcrumb paths.
func ParseIndex(src []byte, name string) (map[string][]int, error) {
	v, err := decode(src, name)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected object, got %T", ErrMalformed, name, v)
	}
	index := make(map[string][]int, len(obj))
	for key, raw := range obj {
		path, err := toPath(raw)
		if err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", name, key, err)
		}
		index[key] = path
	}
	return index, nil
}

// ParseStrings decodes an array of strings, e.g. the NAVTREEINDEX boundary table.
func ParseStrings(src []byte, name string) ([]string, error) {
	v, err := decode(src, name)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected array, got %T", ErrMalformed, name, v)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]: expected string, got %T", ErrMalformed, name, i, item)
		}
		out[i] = s
	}
	return out, nil
}

func toEntries(v any) ([]Entry, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformed, v)
	}
	out := make([]Entry, 0, len(list))
	for i, item := range list {
		tuple, ok := item.([]any)
		if !ok || len(tuple) == 0 {
			return nil, fmt.Errorf("%w: entry %d: expected [label, link, children]", ErrMalformed, i)
		}
		label, ok := tuple[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: label is %T", ErrMalformed, i, tuple[0])
		}
		e := Entry{Label: label}
		if len(tuple) > 1 {
			switch link := tuple[1].(type) {
			case nil:
			case string:
				e.Link = link
			default:
				return nil, fmt.Errorf("%w: entry %d: link is %T", ErrMalformed, i, link)
			}
		}
		if len(tuple) > 2 {
			switch c := tuple[2].(type) {
			case nil:
			case string:
				e.Children = Lazy(c)
			case []any:
				children, err := toEntries(c)
				if err != nil {
					return nil, fmt.Errorf("entry %d (%s): %w", i, label, err)
				}
				e.Children = Inline(children)
			default:
				return nil, fmt.Errorf("%w: entry %d: children is %T", ErrMalformed, i, c)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func toPath(v any) ([]int, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformed, v)
	}
	path := make([]int, len(list))
	for i, item := range list {
		switch n := item.(type) {
		case int64:
			path[i] = int(n)
		case int:
			path[i] = n
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: non-integer index %v", ErrMalformed, n)
			}
			path[i] = int(n)
		default:
			return nil, fmt.Errorf("%w: index is %T", ErrMalformed, item)
		}
		if path[i] < 0 {
			return nil, fmt.Errorf("%w: negative index %d", ErrMalformed, path[i])
		}
	}
	return path, nil
}
