package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navtreeData = `var NAVTREE =
[
  [ "MARS", "index.html", [
    [ "Installation", "d5/dfc/installation.html", null ],
    [ "File Formats", "d0/d74/formats.html", "d0/d74/formats" ],
    [ "Sourcecode Documentation", "usergroup0.html", [
      [ "Namespace List", null, [
        [ "Namespace List", "namespaces.html", "namespaces" ]
      ] ]
    ] ]
  ] ]
];

var NAVTREEINDEX =
[
"annotated.html",
"d8/df4/dinput_8h.html#a1d01896e95d9165c09edb0392d449778",
"functions_z.html"
];

var SYNCONMSG = 'click to disable panel synchronisation';
`

func TestParseEntries_NavTree(t *testing.T) {
	entries, err := ParseEntries([]byte(navtreeData), "NAVTREE")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	root := entries[0]
	assert.Equal(t, "MARS", root.Label)
	assert.Equal(t, "index.html", root.Link)
	require.Equal(t, SourceInline, root.Children.Kind)
	require.Len(t, root.Children.Inline, 3)

	install := root.Children.Inline[0]
	assert.Equal(t, SourceNone, install.Children.Kind)
	assert.False(t, install.Children.HasChildren())

	formats := root.Children.Inline[1]
	assert.True(t, formats.Children.Pending())
	assert.Equal(t, "d0/d74/formats", formats.Children.Shard)

	group := root.Children.Inline[2].Children.Inline[0]
	assert.Equal(t, "Namespace List", group.Label)
	assert.Empty(t, group.Link)
	assert.Equal(t, SourceInline, group.Children.Kind)
}

func TestParseStrings_Boundaries(t *testing.T) {
	bounds, err := ParseStrings([]byte(navtreeData), "NAVTREEINDEX")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"annotated.html",
		"d8/df4/dinput_8h.html#a1d01896e95d9165c09edb0392d449778",
		"functions_z.html",
	}, bounds)
}

func TestParseIndex(t *testing.T) {
	src := `var NAVTREEINDEX0 =
{
"annotated.html":[3,1,0],
"d0/d74/formats.html":[1],
"index.html":[]
};
`
	index, err := ParseIndex([]byte(src), IndexVarName(0))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0}, index["annotated.html"])
	assert.Equal(t, []int{1}, index["d0/d74/formats.html"])
	assert.Empty(t, index["index.html"])
	_, ok := index["index.html"]
	assert.True(t, ok)
}

func TestExtract_IgnoresBracketsInStrings(t *testing.T) {
	src := `var x = [ "a]b", "c\"]", 'd[' ];`
	lit, err := Extract([]byte(src), "x")
	require.NoError(t, err)
	assert.Equal(t, `[ "a]b", "c\"]", 'd[' ]`, string(lit))
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		varName string
		src     string
		want    error
	}{
		{"missing var", "NAVTREEINDEX1", `var other = [];`, ErrVarNotFound},
		{"prefix is not a match", "NAVTREEINDEX1", `var NAVTREEINDEX10 = [];`, ErrVarNotFound},
		{"scalar", "x", `var x = 42;`, ErrMalformed},
		{"unterminated", "x", `var x = [ [ "a" ];`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.src), tt.varName)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseEntries_Malformed(t *testing.T) {
	_, err := ParseEntries([]byte(`var x = [ [ 1, "a.html", null ] ];`), "x")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseEntries([]byte(`var x = [ [ "a", "a.html", 7 ] ];`), "x")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseIndex_RejectsNegative(t *testing.T) {
	_, err := ParseIndex([]byte(`var NAVTREEINDEX0 = { "a.html": [0, -1] };`), "NAVTREEINDEX0")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVarName(t *testing.T) {
	assert.Equal(t, "formats", VarName("d0/d74/formats"))
	assert.Equal(t, "namespacemembers_dup", VarName("namespacemembers_dup"))
	assert.Equal(t, "class_foo_bar", VarName("d1/d2/class-foo-bar"))
	assert.Equal(t, "navtreeindex3", IndexScript(3))
	assert.Equal(t, "NAVTREEINDEX3", IndexVarName(3))
}
