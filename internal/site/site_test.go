package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/doxnav/internal/anchor"
	"github.com/ziadkadry99/doxnav/internal/fetch"
	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/shard"
)

const siteDir = "../../testdata/site"

func TestOpen_Directory(t *testing.T) {
	s, err := Open(context.Background(), siteDir, Options{})
	require.NoError(t, err)

	assert.Equal(t, "MARS", s.Title)
	assert.Equal(t, siteDir, s.Dir)
	assert.Equal(t, "index.html", s.Index.RootDocument())
	assert.Equal(t, 2, s.Index.ShardCount())
	require.Len(t, s.Top, 1)
	assert.Len(t, s.Top[0].Children.Inline, 6)
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/docs", http.FileServer(http.Dir(siteDir))))
	defer srv.Close()

	s, err := Open(context.Background(), srv.URL+"/docs/", Options{RootDocument: "files.html"})
	require.NoError(t, err)
	assert.Empty(t, s.Dir)
	assert.Nil(t, s.FileHandler("/docs/"))
	assert.Equal(t, "files.html", s.Index.RootDocument())
	assert.Equal(t, srv.URL+"/docs/d0/d74/formats.html#binary",
		s.PageURL(location.Location{Path: "/docs/d0/d74/formats.html", Hash: "#binary"}))

	bc, err := s.Index.Resolve(context.Background(), "d8/df4/dinput_8h.html", "#a1d0")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 0}, bc.Path)

	h, err := s.Highlight(context.Background(), "/docs/d8/df4/dinput_8h.html", "#a1d0")
	require.NoError(t, err)
	assert.Equal(t, anchor.KindMember, h.Kind)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "", Options{})
	assert.Error(t, err)

	_, err = Open(context.Background(), "testdata/does-not-exist", Options{})
	assert.Error(t, err)

	_, err = Open(context.Background(), "site.go", Options{})
	assert.Error(t, err)

	empty := fetch.NewDir(fstest.MapFS{
		"navtreedata.js": {Data: []byte(`var NAVTREE = []; var NAVTREEINDEX = [];`)},
	})
	_, err = New(context.Background(), empty, empty.Documents(), Options{})
	assert.ErrorIs(t, err, shard.ErrMalformed)

	missing := fetch.NewDir(fstest.MapFS{})
	_, err = New(context.Background(), missing, missing.Documents(), Options{})
	assert.ErrorIs(t, err, fetch.ErrNotFound)
}

func TestFileHandler(t *testing.T) {
	s, err := Open(context.Background(), siteDir, Options{})
	require.NoError(t, err)

	h := s.FileHandler("/docs/")
	require.NotNil(t, h)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/docs/navtreeindex0.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "NAVTREEINDEX0")
}

func TestRenderHTML(t *testing.T) {
	s, err := Open(context.Background(), siteDir, Options{})
	require.NoError(t, err)
	tr := s.NewTree(navtree.Options{})

	require.NoError(t, tr.SelectPath(context.Background(), []int{0, 3, 0, 1}, "", "d8/df4/dinput_8h.html"))

	var b strings.Builder
	require.NoError(t, RenderHTML(&b, tr.Rows(), "../"))
	out := b.String()

	assert.Contains(t, out, `<div class="item selected" id="selected">`)
	assert.Contains(t, out, `<a class="dinput_8h.html:a2e1" href="../d8/df4/dinput_8h.html#a2e1">writeOutput</a>`)
	assert.Contains(t, out, `<a class="manual.html" href="https://example.org/manual.html">Manual</a>`)
	assert.Contains(t, out, `src="../ftv2mlastnode.png"`)
	assert.Contains(t, out, `src="../ftv2pnode.png"`)
	assert.Equal(t, 1, strings.Count(out, `id="selected"`))
	assert.Equal(t, strings.Count(out, "<ul"), strings.Count(out, "</ul>"))
	assert.Equal(t, strings.Count(out, "<li>"), strings.Count(out, "</li>"))
}

func TestRenderHTML_Escapes(t *testing.T) {
	rows := []navtree.Row{{Path: []int{0}, Depth: 1, Label: "a<b>", Link: "x.html", Action: navtree.ActionNavigate}}
	var b strings.Builder
	require.NoError(t, RenderHTML(&b, rows, ""))
	assert.Contains(t, b.String(), "a&lt;b&gt;")
	assert.NotContains(t, b.String(), "<b>")
}

func TestPageURL_Local(t *testing.T) {
	s, err := Open(context.Background(), siteDir, Options{})
	require.NoError(t, err)

	u := s.PageURL(location.Parse("files.html#top"))
	assert.True(t, strings.HasPrefix(u, "file://"), u)
	assert.True(t, strings.HasSuffix(u, "/testdata/site/files.html#top"), u)
	assert.Equal(t, "https://example.org/manual.html", s.PageURL(location.Parse("https://example.org/manual.html")))
}
