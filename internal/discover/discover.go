// Package discover finds binding descriptors and native sources in a
// project tree.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DescriptorExt is the binding descriptor file extension.
const DescriptorExt = ".cppbind"

// Result lists what a project scan found, paths relative to the root.
type Result struct {
	Descriptors []string
	Sources     []string
}

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"__pycache__":   {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"build":         {},
	"dist":          {},
	".pytest_cache": {},
}

var sourceExts = map[string]struct{}{
	".cpp": {},
	".cc":  {},
	".cxx": {},
	".h":   {},
	".hpp": {},
	".hh":  {},
	".hxx": {},
}

// Scan walks root collecting descriptor files and C++ sources, skipping
// hidden directories, well-known build output directories, and anything
// excluded by the root .gitignore.
func Scan(root string) (*Result, error) {
	gi := loadGitignore(root)
	res := &Result{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case ext == DescriptorExt:
			res.Descriptors = append(res.Descriptors, rel)
		default:
			if _, ok := sourceExts[ext]; ok {
				res.Sources = append(res.Sources, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(res.Descriptors)
	sort.Strings(res.Sources)
	return res, nil
}

// DescriptorPaths returns the discovered descriptors as absolute paths.
func (r *Result) DescriptorPaths(root string) []string {
	paths := make([]string, len(r.Descriptors))
	for i, d := range r.Descriptors {
		paths[i] = filepath.Join(root, d)
	}
	return paths
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
