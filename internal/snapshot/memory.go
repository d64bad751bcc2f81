package snapshot

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MemSnapshot is an in-memory Snapshot used by check unit tests; checks are
// data-driven, so no filesystem fixture is needed to exercise them.
type MemSnapshot struct {
	RootPath   string
	Comps      []Component
	Files      map[string]string      // path -> contents
	Modes      map[string]fs.FileMode // optional per-file mode; default 0o644
	Unreadable map[string]bool        // paths that behave like binary files
}

// NewMemSnapshot creates an empty in-memory snapshot with the given components.
func NewMemSnapshot(comps ...Component) *MemSnapshot {
	return &MemSnapshot{
		RootPath:   "/project",
		Comps:      comps,
		Files:      make(map[string]string),
		Modes:      make(map[string]fs.FileMode),
		Unreadable: make(map[string]bool),
	}
}

// Add stores a file.
func (m *MemSnapshot) Add(rel, contents string) *MemSnapshot {
	m.Files[rel] = contents
	return m
}

// AddMode stores a file with an explicit permission mode.
func (m *MemSnapshot) AddMode(rel, contents string, mode fs.FileMode) *MemSnapshot {
	m.Files[rel] = contents
	m.Modes[rel] = mode
	return m
}

// AddBinary stores a file that fails Read with ErrUnreadable.
func (m *MemSnapshot) AddBinary(rel string) *MemSnapshot {
	m.Files[rel] = ""
	m.Unreadable[rel] = true
	return m
}

// Root implements Snapshot.
func (m *MemSnapshot) Root() string { return m.RootPath }

// Components implements Snapshot.
func (m *MemSnapshot) Components() []Component { return append([]Component(nil), m.Comps...) }

// Read implements Snapshot.
func (m *MemSnapshot) Read(rel string) (string, error) {
	rel = path.Clean(rel)
	if m.Unreadable[rel] {
		return "", ErrUnreadable
	}
	content, ok := m.Files[rel]
	if !ok {
		return "", fs.ErrNotExist
	}
	if !utf8.ValidString(content) {
		return "", ErrUnreadable
	}
	return content, nil
}

// Stat implements Snapshot.
func (m *MemSnapshot) Stat(rel string) (fs.FileInfo, error) {
	rel = path.Clean(rel)
	if _, ok := m.Files[rel]; !ok {
		return nil, fs.ErrNotExist
	}
	mode, ok := m.Modes[rel]
	if !ok {
		mode = 0o644
	}
	return memFileInfo{name: path.Base(rel), size: int64(len(m.Files[rel])), mode: mode}, nil
}

// SourceFiles implements Snapshot.
func (m *MemSnapshot) SourceFiles(dir string, exts []string) []string {
	prefix := path.Clean(dir)
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	var files []string
	for rel := range m.Files {
		if prefix != "." && rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
			continue
		}
		if len(extSet) > 0 {
			if _, ok := extSet[strings.ToLower(path.Ext(rel))]; !ok {
				continue
			}
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files
}

type memFileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
