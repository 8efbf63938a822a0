package navtree

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Glyph is the expand/collapse image shown in front of a row.
type Glyph string

const (
	GlyphNone         Glyph = ""
	GlyphCollapsed    Glyph = "ftv2pnode"
	GlyphExpanded     Glyph = "ftv2mnode"
	GlyphExpandedLast Glyph = "ftv2mlastnode"
)

// Action is what activating a row's label does.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionToggle   Action = "toggle"
	ActionNone     Action = "none"
)

// Row is one visible line of the tree.
type Row struct {
	Path     []int  `json:"path"`
	Depth    int    `json:"depth"`
	Indent   int    `json:"indent"` // pixels
	Glyph    Glyph  `json:"glyph,omitempty"`
	Label    string `json:"label"`
	Link     string `json:"link,omitempty"`
	Action   Action `json:"action"`
	Expanded bool   `json:"expanded,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Rows returns the visible rows in display order.
func (t *Tree) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rows []Row
	t.visitVisible(func(n *Node) bool {
		rows = append(rows, t.rowLocked(n))
		return true
	})
	return rows
}

func (t *Tree) rowLocked(n *Node) Row {
	r := Row{
		Path:     n.Path(),
		Depth:    n.depth,
		Label:    n.Label,
		Link:     n.Link,
		Action:   ActionNone,
		Expanded: n.expanded,
		Selected: n == t.selected,
	}
	if n.hasChildren() {
		r.Indent = IndentWidth * (n.depth - 1)
		switch {
		case !n.expanded:
			r.Glyph = GlyphCollapsed
		case n.isLast:
			r.Glyph = GlyphExpandedLast
		default:
			r.Glyph = GlyphExpanded
		}
	} else {
		// Leaves get a spacer as wide as the glyph they lack.
		r.Indent = IndentWidth * n.depth
	}
	switch {
	case n.Link != "":
		r.Action = ActionNavigate
	case n.hasChildren():
		r.Action = ActionToggle
	}
	return r
}

var (
	textSelected = lipgloss.NewStyle().Bold(true).Reverse(true)
	textGroup    = lipgloss.NewStyle().Faint(true)
	textGlyph    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#4665A2", Dark: "#8AB4F8"})
)

// RenderText draws rows for a terminal, two columns per level.
func RenderText(rows []Row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Repeat("  ", max(0, r.Depth-1)))
		switch r.Glyph {
		case GlyphCollapsed:
			b.WriteString(textGlyph.Render("▸"))
		case GlyphExpanded, GlyphExpandedLast:
			b.WriteString(textGlyph.Render("▾"))
		default:
			b.WriteString(" ")
		}
		b.WriteString(" ")

		label := r.Label
		switch {
		case r.Selected:
			label = textSelected.Render(label)
		case r.Action == ActionToggle:
			label = textGroup.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	return b.String()
}
