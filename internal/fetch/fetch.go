package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when the requested script does not exist.
var ErrNotFound = errors.New("script not found")

// Fetcher loads the raw bytes of a documentation script. name is the script
// name without the ".js" suffix, relative to the site root.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Func adapts a plain function to Fetcher.
type Func func(ctx context.Context, name string) ([]byte, error)

func (f Func) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// HTTP fetches scripts from a published documentation site.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
	ext        string
}

// NewHTTP returns a fetcher rooted at baseURL. A nil client gets a default
// one with a 30 second timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HTTP{baseURL: baseURL, httpClient: client, ext: ".js"}
}

// Documents returns a fetcher for plain site files such as HTML pages. Names
// are used as is, without the ".js" suffix.
func (h *HTTP) Documents() *HTTP {
	d := *h
	d.ext = ""
	return &d
}

// Fetch issues GET {base}{name}.js.
func (h *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(h.baseURL, name+h.ext)
	if err != nil {
		return nil, fmt.Errorf("build url for %s: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: status %d: %s", name, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return body, nil
}

// Close releases idle connections.
func (h *HTTP) Close() {
	h.httpClient.CloseIdleConnections()
}

// Dir reads scripts from a file system, usually os.DirFS of a generated
// html directory.
type Dir struct {
	fsys fs.FS
	ext  string
}

func NewDir(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys, ext: ".js"}
}

// Documents returns a fetcher for plain files of the same directory.
func (d *Dir) Documents() *Dir {
	return &Dir{fsys: d.fsys}
}

func (d *Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := path.Clean(strings.TrimPrefix(name, "/")) + d.ext
	if !fs.ValidPath(p) {
		return nil, fmt.Errorf("fetch %s: invalid script path", name)
	}
	data, err := fs.ReadFile(d.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return data, nil
}

// WithPrefix returns a fetcher that prepends relpath to every script name,
// the way generated pages in subdirectories reach the site root.
func WithPrefix(f Fetcher, relpath string) Fetcher {
	if relpath == "" {
		return f
	}
	return Func(func(ctx context.Context, name string) ([]byte, error) {
		return f.Fetch(ctx, path.Join(relpath, name))
	})
}
