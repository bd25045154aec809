package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/runfiles/internal/module"
	"github.com/kingrea/runfiles/internal/runfiles"
)

const nodeModulesDir = "node_modules"

// Native is the host runtime's own lookup with no runfiles awareness. Paths
// are probed relative to the requesting module; bare names are searched in
// node_modules directories from the requester's directory up to the root.
type Native struct {
	fsys runfiles.FileSystem
	// Getwd anchors requests that have no parent.
	Getwd func() (string, error)
}

// NewNative returns a native resolver over fsys (nil means the host filesystem).
func NewNative(fsys runfiles.FileSystem) *Native {
	if fsys == nil {
		fsys = runfiles.OS
	}
	return &Native{fsys: fsys, Getwd: os.Getwd}
}

// Resolve implements module.Resolver.
func (n *Native) Resolve(ctx *module.Context, req module.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	probe := runfiles.NewProbe(n.fsys, ctx.Extension)
	id := req.ID
	if filepath.IsAbs(id) {
		return n.load(probe, filepath.Clean(id))
	}
	base, err := n.baseDir(req)
	if err != nil {
		return "", err
	}
	if isRelative(id) {
		return n.load(probe, filepath.Join(base, filepath.FromSlash(id)))
	}
	var searched []string
	for dir := base; ; dir = filepath.Dir(dir) {
		if filepath.Base(dir) != nodeModulesDir {
			candidate := filepath.Join(dir, nodeModulesDir, filepath.FromSlash(id))
			searched = append(searched, candidate)
			resolved, err := n.load(probe, candidate)
			if err == nil {
				return resolved, nil
			}
			var cyclic *runfiles.CyclicEntryPointError
			if errors.As(err, &cyclic) {
				return "", err
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return "", &SearchError{Request: id, Searched: searched}
}

// SearchError lists the node_modules locations a bare request was looked
// for in.
type SearchError struct {
	Request  string
	Searched []string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("loader: %s not found in %s", e.Request, strings.Join(e.Searched, ", "))
}

func (e *SearchError) Unwrap() error { return runfiles.ErrNotFound }

func (n *Native) load(probe *runfiles.Probe, target string) (string, error) {
	if resolved, ok := probe.ResolveFile(target); ok {
		return resolved, nil
	}
	if !probe.IsDirectory(target) {
		return "", fmt.Errorf("loader: %s: %w", target, runfiles.ErrNotFound)
	}
	return probe.ResolveDirectory(target)
}

func (n *Native) baseDir(req module.Request) (string, error) {
	if req.Parent != "" {
		return filepath.Dir(req.Parent), nil
	}
	wd, err := n.Getwd()
	if err != nil {
		return "", fmt.Errorf("loader: working directory: %w", err)
	}
	return wd, nil
}

func isRelative(id string) bool {
	return id == "." || id == ".." ||
		strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../") ||
		strings.HasPrefix(id, `.\`) || strings.HasPrefix(id, `..\`)
}
