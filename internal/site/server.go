package site

import (
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ziadkadry99/doxnav/internal/location"
)

// FileHandler serves the site's files under prefix. It returns nil for
// remote sites, which are served by their own host.
func (s *Site) FileHandler(prefix string) http.Handler {
	if s.Dir == "" {
		return nil
	}
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.Dir)))
}

// PageURL returns an address a browser can open loc at: a file URL for
// local sites, the page under the base URL for remote ones. Absolute links
// are returned as they are.
func (s *Site) PageURL(loc location.Location) string {
	if strings.Contains(loc.Path, "://") {
		return loc.String()
	}
	page := location.StripPath2(loc.Path)
	switch {
	case s.Dir != "":
		p, err := filepath.Abs(filepath.Join(s.Dir, filepath.FromSlash(page)))
		if err != nil {
			return loc.String()
		}
		return "file://" + filepath.ToSlash(p) + loc.Hash
	case s.URL != "":
		return strings.TrimSuffix(s.URL, "/") + "/" + page + loc.Hash
	}
	return loc.String()
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
