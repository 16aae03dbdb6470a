package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIgnored lists build output and VCS directories that never hold
// project sources.
var DefaultIgnored = []string{".git", "bin", "obj", ".vs", "node_modules"}

// Crawler scans a directory tree for source files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a new crawler. With no ignored directories given it
// uses DefaultIgnored.
func NewCrawler(ignored ...string) *Crawler {
	if len(ignored) == 0 {
		ignored = DefaultIgnored
	}
	return &Crawler{ignored: ignored}
}

// ScanProject walks root and calls onFile for every C# source file in
// lexical order. Generated designer files are included; they are ordinary
// sources to the compiler. An error from onFile stops the walk.
func (c *Crawler) ScanProject(root string, onFile func(path string) error) error {
	return c.walk(root, func(path string) error {
		if !strings.EqualFold(filepath.Ext(path), ".cs") {
			return nil
		}
		return onFile(path)
	})
}

// FindProjects returns every `<name>.csproj` under root. An empty name
// matches any project file.
func (c *Crawler) FindProjects(root, name string) ([]string, error) {
	var out []string
	err := c.walk(root, func(path string) error {
		base := filepath.Base(path)
		if !strings.EqualFold(filepath.Ext(base), ".csproj") {
			return nil
		}
		if name == "" || strings.TrimSuffix(base, filepath.Ext(base)) == name {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func (c *Crawler) walk(root string, onFile func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		return onFile(path)
	})
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if strings.EqualFold(name, ign) {
			return true
		}
	}
	return false
}
