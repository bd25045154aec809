package runfiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	packageFileName = "package.json"
	indexName       = "index"
)

// ErrNotFound is returned when a logical path has no match in the active backend.
var ErrNotFound = errors.New("runfiles: not found")

// FileSystem is the subset of filesystem access the probe needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFileSystem) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

// OS is the host filesystem.
var OS FileSystem = osFileSystem{}

// PackageMetadata holds the package.json fields used for entry-point lookup.
type PackageMetadata struct {
	Main string `json:"main"`
}

// Entry returns the normalized main entry. "." and "./" mean "index".
func (m PackageMetadata) Entry() string {
	main := strings.TrimSpace(m.Main)
	if main == "." || main == "./" {
		return indexName
	}
	return main
}

// PackageMetadataError reports a package.json that exists but cannot be used.
type PackageMetadataError struct {
	Path string
	Err  error
}

func (e *PackageMetadataError) Error() string {
	return fmt.Sprintf("runfiles: package metadata %s: %v", e.Path, e.Err)
}

func (e *PackageMetadataError) Unwrap() error { return e.Err }

// CyclicEntryPointError reports a package whose main field leads back to a
// directory already visited during the same lookup.
type CyclicEntryPointError struct {
	Dir   string
	Chain []string
}

func (e *CyclicEntryPointError) Error() string {
	return fmt.Sprintf("runfiles: cyclic entry point at %s (via %s)", e.Dir, strings.Join(e.Chain, " -> "))
}

// ReadPackageMetadata reads and decodes the package.json at file.
func ReadPackageMetadata(fsys FileSystem, file string) (PackageMetadata, error) {
	data, err := fsys.ReadFile(file)
	if err != nil {
		return PackageMetadata{}, &PackageMetadataError{Path: file, Err: err}
	}
	var meta PackageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return PackageMetadata{}, &PackageMetadataError{Path: file, Err: err}
	}
	return meta, nil
}

// locator is how a backend answers file and package.json questions.
type locator interface {
	file(p string) (string, bool)
	packageFile(dir string) (string, bool)
	join(dir, rel string) string
}

// entryPoints runs the directory entry-point algorithm over a locator.
type entryPoints struct {
	loc  locator
	fsys FileSystem
	// onMetadataError is told about package.json files that were skipped.
	onMetadataError func(error)
}

func (e entryPoints) directory(dir string, visited []string) (string, error) {
	for _, seen := range visited {
		if seen == dir {
			return "", &CyclicEntryPointError{Dir: dir, Chain: append(append([]string(nil), visited...), dir)}
		}
	}
	visited = append(visited, dir)

	if pkgFile, ok := e.loc.packageFile(dir); ok {
		meta, err := ReadPackageMetadata(e.fsys, pkgFile)
		if err != nil {
			if e.onMetadataError != nil {
				e.onMetadataError(err)
			}
		} else if main := meta.Entry(); main != "" {
			target := e.loc.join(dir, main)
			if resolved, ok := e.loc.file(target); ok {
				return resolved, nil
			}
			resolved, err := e.directory(target, visited)
			if err == nil {
				return resolved, nil
			}
			var cyclic *CyclicEntryPointError
			if errors.As(err, &cyclic) {
				return "", err
			}
		}
	}

	if resolved, ok := e.loc.file(e.loc.join(dir, indexName)); ok {
		return resolved, nil
	}
	return "", ErrNotFound
}

// Probe answers existence questions against a real filesystem tree.
type Probe struct {
	fsys FileSystem
	ext  string
}

// NewProbe returns a probe that tries ext when a bare module name is missing.
// A nil fsys means the host filesystem.
func NewProbe(fsys FileSystem, ext string) *Probe {
	if fsys == nil {
		fsys = OS
	}
	return &Probe{fsys: fsys, ext: ext}
}

// Extension returns the module extension the probe appends.
func (p *Probe) Extension() string { return p.ext }

// IsFile reports whether name exists and is a regular file (after symlinks).
func (p *Probe) IsFile(name string) bool {
	info, err := p.fsys.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// IsDirectory reports whether name exists and is a directory.
func (p *Probe) IsDirectory(name string) bool {
	info, err := p.fsys.Stat(name)
	return err == nil && info.IsDir()
}

// ResolveFile returns name if it is a file, otherwise name plus the module
// extension if that is a file.
func (p *Probe) ResolveFile(name string) (string, bool) {
	if p.IsFile(name) {
		return name, true
	}
	if p.ext != "" && p.IsFile(name+p.ext) {
		return name + p.ext, true
	}
	return "", false
}

// ResolveDirectory finds the entry point of dir through its package.json main
// field, falling back to dir/index.
func (p *Probe) ResolveDirectory(dir string) (string, error) {
	return p.entryPoints(nil).directory(filepath.Clean(dir), nil)
}

func (p *Probe) entryPoints(onMetadataError func(error)) entryPoints {
	return entryPoints{loc: fsLocator{p}, fsys: p.fsys, onMetadataError: onMetadataError}
}

type fsLocator struct{ p *Probe }

func (l fsLocator) file(name string) (string, bool) { return l.p.ResolveFile(name) }

func (l fsLocator) packageFile(dir string) (string, bool) {
	name := filepath.Join(dir, packageFileName)
	return name, l.p.IsFile(name)
}

func (l fsLocator) join(dir, rel string) string {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(dir, rel)
}

// manifestLocator answers the same questions through manifest entries.
// Logical keys always use forward slashes.
type manifestLocator struct {
	m   *Manifest
	ext string
}

func (l manifestLocator) file(logical string) (string, bool) {
	if resolved, ok := l.m.Get(logical); ok {
		return resolved, true
	}
	return l.m.GetWithSuffix(logical, l.ext)
}

func (l manifestLocator) packageFile(dir string) (string, bool) {
	return l.m.Get(dir + "/" + packageFileName)
}

func (l manifestLocator) join(dir, rel string) string {
	return path.Join(dir, filepath.ToSlash(rel))
}
