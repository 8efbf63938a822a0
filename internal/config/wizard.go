package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// siteCandidates are the usual places Doxygen writes its HTML output,
// relative to the project root.
var siteCandidates = []string{
	"html",
	"docs/html",
	"doc/html",
	"build/docs/html",
	"doxygen/html",
	".",
}

// detectSite returns the first candidate directory holding a navigation tree.
func detectSite() string {
	for _, dir := range siteCandidates {
		if _, err := os.Stat(filepath.Join(dir, "navtreedata.js")); err == nil {
			return dir
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .doxnav.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to doxnav! Let's point it at your documentation.")
	fmt.Println()

	def := DefaultConfig()
	if dir := detectSite(); dir != "" {
		fmt.Printf("Found a Doxygen navigation tree in %s\n\n", dir)
		def.Site = dir
	}

	// 1. Site location.
	sitePrompt := promptui.Prompt{
		Label:   "Documentation site (HTML directory or http(s) URL)",
		Default: def.Site,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("site is required")
			}
			return nil
		},
	}
	site, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	// 2. Relative path of the tree scripts.
	relpathPrompt := promptui.Prompt{
		Label:   "Path of the tree scripts relative to the site (blank for the site root)",
		Default: "",
	}
	relpath, err := relpathPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("relpath: %w", err)
	}
	relpath = strings.TrimSpace(relpath)
	if relpath != "" && !strings.HasSuffix(relpath, "/") {
		relpath += "/"
	}

	// 3. Sync persistence.
	persistPrompt := promptui.Select{
		Label: "Remember the sync setting between runs",
		Items: []string{
			"yes - store it in a local SQLite file",
			"no  - sync is always on and cannot be toggled",
		},
	}
	persistIdx, _, err := persistPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("persistence selection: %w", err)
	}

	// 4. Log level.
	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: []string{string(LogInfo), string(LogDebug), string(LogWarn), string(LogError)},
	}
	_, level, err := levelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log level selection: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Site = strings.TrimSpace(site)
	cfg.Relpath = relpath
	cfg.Persist = persistIdx == 0
	cfg.LogLevel = LogLevel(level)

	if !cfg.IsRemote() {
		if _, err := os.Stat(filepath.Join(cfg.Site, relpath, "navtreedata.js")); err != nil {
			fmt.Printf("\nNote: no navtreedata.js under %s yet. Run doxygen with GENERATE_TREEVIEW=YES.\n", cfg.Site)
		}
	}

	if err := cfg.Save(FileName); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", FileName)
	return cfg, nil
}
