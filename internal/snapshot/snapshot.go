// Package snapshot provides an immutable view of a project tree for the audit
// engine: a root path, named component sub-roots, and cached text access to
// files by root-relative path.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/posturasec/postura/internal/security"
)

var (
	// ErrUnreadable marks files that exist but cannot be used as text input
	// (binary content or an undecodable encoding). Checks treat these files
	// as contributing zero matches.
	ErrUnreadable = errors.New("file is not readable as text")

	// ErrPathEscape indicates a requested path would resolve outside the
	// snapshot root.
	ErrPathEscape = security.ErrPathEscape
)

// Component names a sub-root of the project that is analyzed as one unit.
type Component struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Dir        string   `yaml:"dir" mapstructure:"dir"`
	SourceExts []string `yaml:"source_exts" mapstructure:"source_exts"`
}

// Snapshot is the read-only project view consumed by checks. Paths are
// slash-separated and relative to the snapshot root.
type Snapshot interface {
	// Root returns the absolute root path of the project.
	Root() string

	// Components returns the declared component sub-roots in declaration order.
	Components() []Component

	// Read returns the text contents of a file. It fails with ErrUnreadable
	// for binary or undecodable files and with fs.ErrNotExist for missing ones.
	Read(rel string) (string, error)

	// Stat returns file metadata (used by the permissions check).
	Stat(rel string) (fs.FileInfo, error)

	// SourceFiles lists files under dir (relative to root, "." for the root)
	// whose extension is in exts, sorted, as root-relative slash paths.
	SourceFiles(dir string, exts []string) []string
}

// skipDirs are never descended into regardless of .gitignore contents.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"target":       {},
	"vendor":       {},
	"dist":         {},
}

// DirSnapshot is a Snapshot backed by a directory on disk. File contents are
// cached on first read; the cache is append-only for the duration of a run.
type DirSnapshot struct {
	root       string
	components []Component
	ignore     *gitignore.GitIgnore

	mu    sync.RWMutex
	cache map[string]string
}

// NewDirSnapshot creates a snapshot rooted at root. A .gitignore at the root,
// when present, is honored by SourceFiles.
func NewDirSnapshot(root string, components []Component) (*DirSnapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}

	s := &DirSnapshot{
		root:       abs,
		components: append([]Component(nil), components...),
		cache:      make(map[string]string),
	}
	if ign, err := gitignore.CompileIgnoreFile(filepath.Join(abs, ".gitignore")); err == nil {
		s.ignore = ign
	}
	return s, nil
}

// Root returns the absolute project root.
func (s *DirSnapshot) Root() string { return s.root }

// Components returns the declared components.
func (s *DirSnapshot) Components() []Component {
	return append([]Component(nil), s.components...)
}

// resolve joins rel under the root and rejects traversal outside of it.
func (s *DirSnapshot) resolve(rel string) (string, error) {
	return security.ResolveWithin(s.root, filepath.FromSlash(rel))
}

// Read returns cached file contents, loading and validating them on first use.
func (s *DirSnapshot) Read(rel string) (string, error) {
	key := filepath.ToSlash(filepath.Clean(rel))

	s.mu.RLock()
	content, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return content, nil
	}

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrUnreadable, rel)
	}
	content = string(data)

	s.mu.Lock()
	s.cache[key] = content
	s.mu.Unlock()
	return content, nil
}

// Stat returns file metadata for a root-relative path.
func (s *DirSnapshot) Stat(rel string) (fs.FileInfo, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(full)
}

// SourceFiles walks dir and returns the root-relative paths of files whose
// extension is in exts. Ignored and well-known build directories are skipped.
func (s *DirSnapshot) SourceFiles(dir string, exts []string) []string {
	base, err := s.resolve(dir)
	if err != nil {
		return nil
	}

	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	var files []string
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if s.ignore != nil && rel != "." && s.ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignore != nil && s.ignore.MatchesPath(rel) {
			return nil
		}
		if len(extSet) > 0 {
			if _, ok := extSet[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})

	sort.Strings(files)
	return files
}
