// Package runfiles resolves logical runfiles paths to files on disk.
//
// Two backends are supported. In manifest mode every logical path is looked up
// in the runfiles manifest, a text file mapping logical paths to real paths.
// In symlink-tree mode the runfiles directory mirrors the logical layout and is
// probed directly.
package runfiles

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Entry is a single line of the runfiles manifest.
type Entry struct {
	LogicalPath string
	RealPath    string
}

// Manifest is the parsed runfiles manifest. It is immutable once loaded.
type Manifest struct {
	path    string
	entries map[string]string
}

// ManifestError reports a manifest that could not be read. There is no
// fallback once manifest mode has been selected, so callers treat it as fatal.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("runfiles: load manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, &ManifestError{Path: path, Err: fmt.Errorf("manifest path is empty")}
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, &ManifestError{Path: trimmed, Err: err}
	}
	m := ParseManifest(string(data))
	m.path = trimmed
	return m, nil
}

// ParseManifest parses manifest text. Each non-empty line is split on its first
// space; later lines override earlier ones with the same logical path.
func ParseManifest(input string) *Manifest {
	m := &Manifest{entries: make(map[string]string)}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		logical, target, _ := strings.Cut(line, " ")
		m.entries[logical] = target
	}
	return m
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

// Len reports the number of distinct logical paths.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the real path mapped to logical. Entries with an empty real
// path count as missing.
func (m *Manifest) Get(logical string) (string, bool) {
	if m == nil {
		return "", false
	}
	target := m.entries[logical]
	if target == "" {
		return "", false
	}
	return target, true
}

// GetWithSuffix looks up logical with suffix appended, for extension-optional
// module names.
func (m *Manifest) GetWithSuffix(logical, suffix string) (string, bool) {
	if suffix == "" {
		return "", false
	}
	return m.Get(logical + suffix)
}

// Entries returns the manifest sorted by logical path.
func (m *Manifest) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.entries))
	for logical, target := range m.entries {
		out = append(out, Entry{LogicalPath: logical, RealPath: target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogicalPath < out[j].LogicalPath })
	return out
}
