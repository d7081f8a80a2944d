// Package discovery enumerates candidate files under a repository root,
// applying include/exclude/whitelist ignore rules.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/codelens-dev/codelens/internal/errs"
)

// blacklistedDirs are excluded at any depth regardless of caller configuration.
var blacklistedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	".cache":       true,
	".idea":        true,
	".vscode":      true,
}

// defaultFileExcludes are glob patterns for editor/OS temp files, compiled
// bytecode, logs, and coverage output, matched regardless of caller config.
var defaultFileExcludes = []string{
	"**/*.pyc",
	"**/*.pyo",
	"**/*.class",
	"**/*.o",
	"**/*.so",
	"**/*.dylib",
	"**/*.dll",
	"**/*.log",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/*.min.js",
}

// FileDiscovery enumerates files under a root directory.
type FileDiscovery struct {
	root       string
	include    []glob.Glob
	exclude    []glob.Glob
	whitelist  []glob.Glob
}

// New compiles the given glob patterns and returns a FileDiscovery rooted at
// root. includeGlobs selects candidate files; excludeGlobs are caller-supplied
// extra excludes; whitelistGlobs negate any earlier exclusion.
func New(root string, includeGlobs, excludeGlobs, whitelistGlobs []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{root: root}

	var err error
	if fd.include, err = compileAll(includeGlobs); err != nil {
		return nil, err
	}

	allExcludes := append(append([]string{}, defaultFileExcludes...), excludeGlobs...)
	if fd.exclude, err = compileAll(allExcludes); err != nil {
		return nil, err
	}

	if fd.whitelist, err = compileAll(whitelistGlobs); err != nil {
		return nil, err
	}

	return fd, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		variants := []string{p}
		// gobwas/glob's "**/" needs a literal slash, so "**/*.rs" alone does
		// not match a root-level "lib.rs"; the unprefixed form covers that.
		if strings.HasPrefix(p, "**/") {
			variants = append(variants, strings.TrimPrefix(p, "**/"))
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, err
			}
			compiled = append(compiled, g)
		}
	}
	return compiled, nil
}

// Discover walks the directory tree and returns repository-relative,
// forward-slash paths of every file that survives the exclusion rules. The
// returned slice is sorted for deterministic downstream processing.
func (fd *FileDiscovery) Discover() ([]string, error) {
	info, err := os.Stat(fd.root)
	if err != nil {
		return nil, errs.Wrap(errs.DiscoveryError, "root does not exist", err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.DiscoveryError, "root is not a directory: "+fd.root)
	}

	var results []string
	err = filepath.WalkDir(fd.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != fd.root && blacklistedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(fd.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if fd.isExcluded(relPath) {
			return nil
		}
		if !matchesAny(relPath, fd.include) {
			return nil
		}

		results = append(results, relPath)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.DiscoveryError, "failed to walk root", err)
	}

	sort.Strings(results)
	return results, nil
}

// isExcluded applies the exclusion rules: directory blacklist is enforced
// during the walk itself (WalkDir skips the subtree); here we apply the
// file-glob and caller-extra excludes, then let an explicit whitelist match
// negate them.
func (fd *FileDiscovery) isExcluded(relPath string) bool {
	if !matchesAny(relPath, fd.exclude) {
		return false
	}
	return !matchesAny(relPath, fd.whitelist)
}

func matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// IsBlacklistedDir reports whether dirName is always excluded regardless of
// caller configuration. Exposed for IndexWatcher, which must not recurse into
// these directories either.
func IsBlacklistedDir(dirName string) bool {
	return blacklistedDirs[dirName]
}
