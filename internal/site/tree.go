package site

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navtree"
)

// RenderHTML writes the visible rows as the nested <ul><li> markup of a
// Doxygen side panel. relpath is the prefix back to the site root (e.g.
// "../" for a page one level deep); it is applied to links and glyph images.
func RenderHTML(w io.Writer, rows []navtree.Row, relpath string) error {
	var b strings.Builder
	b.WriteString(`<div id="nav-tree-contents">` + "\n<ul>\n")

	depth := 1
	for i, r := range rows {
		for depth < r.Depth {
			b.WriteString(`<ul class="children_ul">` + "\n")
			depth++
		}
		for depth > r.Depth {
			b.WriteString("</ul></li>\n")
			depth--
		}

		b.WriteString("<li>")
		renderItem(&b, r, relpath)

		// Close the item now unless the next row is one of its children.
		if i+1 >= len(rows) || rows[i+1].Depth <= r.Depth {
			b.WriteString("</li>\n")
		} else {
			b.WriteString("\n")
		}
	}
	for depth > 1 {
		b.WriteString("</ul></li>\n")
		depth--
	}

	b.WriteString("</ul>\n</div>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderItem(b *strings.Builder, r navtree.Row, relpath string) {
	if r.Selected {
		b.WriteString(`<div class="item selected" id="selected">`)
	} else {
		b.WriteString(`<div class="item">`)
	}

	if r.Glyph != navtree.GlyphNone {
		fmt.Fprintf(b, `<a href="javascript:void(0)" data-path="%s"><img src="%s%s.png" style="padding-left:%dpx" width="16" height="22" border="0" alt=""/></a>`,
			pathAttr(r.Path), relpath, r.Glyph, r.Indent)
	} else {
		fmt.Fprintf(b, `<span style="display:inline-block;width:%dpx;height:22px;">&#160;</span>`, r.Indent)
	}

	label := html.EscapeString(r.Label)
	b.WriteString(`<span class="label">`)
	switch r.Action {
	case navtree.ActionNavigate:
		fmt.Fprintf(b, `<a class="%s" href="%s">%s</a>`,
			html.EscapeString(linkClass(r.Link)), html.EscapeString(location.Href(r.Link, relpath)), label)
	case navtree.ActionToggle:
		fmt.Fprintf(b, `<a class="nolink" href="javascript:void(0)" data-path="%s">%s</a>`, pathAttr(r.Path), label)
	default:
		fmt.Fprintf(b, `<a>%s</a>`, label)
	}
	b.WriteString("</span></div>")
}

// linkClass is the class Doxygen gives tree links: the page name with the
// anchor separated by ':' so a page and anchor can be matched by suffix.
func linkClass(link string) string {
	link = strings.TrimPrefix(link, "^")
	return location.StripPath(strings.Replace(link, "#", ":", 1))
}

func pathAttr(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}
