package runfiles

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Mode selects the resolution backend.
type Mode int

const (
	// ModeSymlinkTree probes the runfiles directory on disk.
	ModeSymlinkTree Mode = iota
	// ModeManifest looks every path up in the manifest.
	ModeManifest
)

func (m Mode) String() string {
	switch m {
	case ModeManifest:
		return "manifest"
	case ModeSymlinkTree:
		return "symlink-tree"
	default:
		return "unknown"
	}
}

// Options configure a Resolver.
type Options struct {
	// Root is the runfiles directory. Every default path is joined onto it.
	Root string
	// Manifest selects manifest mode when non-nil.
	Manifest *Manifest
	// Extension is the module extension tried after a literal miss.
	Extension string
	// FS defaults to the host filesystem.
	FS     FileSystem
	Logger *zap.Logger
}

// Resolver turns runfiles path segments into a path on disk. The backend is
// fixed at construction and never changes.
type Resolver struct {
	root     string
	mode     Mode
	manifest *Manifest
	probe    *Probe
	logger   *zap.Logger
}

// New builds a resolver from opts.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		root:     opts.Root,
		mode:     ModeSymlinkTree,
		manifest: opts.Manifest,
		probe:    NewProbe(opts.FS, opts.Extension),
		logger:   logger.Named("runfiles"),
	}
	if opts.Manifest != nil {
		r.mode = ModeManifest
	}
	return r
}

// Mode reports the active backend.
func (r *Resolver) Mode() Mode { return r.mode }

// Root returns the runfiles directory.
func (r *Resolver) Root() string { return r.root }

// Manifest returns the loaded manifest, nil in symlink-tree mode.
func (r *Resolver) Manifest() *Manifest { return r.manifest }

// DefaultPath joins the runfiles root with the non-empty segments.
func (r *Resolver) DefaultPath(segments ...string) string {
	return filepath.Join(append([]string{r.root}, compact(segments)...)...)
}

// Resolve returns the on-disk location of segments. It never fails: when no
// backend lookup succeeds the unresolved default path is returned, so callers
// that need to detect a miss should use Lookup.
func (r *Resolver) Resolve(segments ...string) string {
	resolved, err := r.Lookup(segments...)
	if err != nil {
		var cyclic *CyclicEntryPointError
		if errors.As(err, &cyclic) {
			r.logger.Warn("entry point cycle", zap.String("dir", cyclic.Dir), zap.Strings("chain", cyclic.Chain))
		}
		return r.DefaultPath(segments...)
	}
	return resolved
}

// Lookup is Resolve with an explicit miss. It returns ErrNotFound when nothing
// matched and a *CyclicEntryPointError when package metadata loops.
func (r *Resolver) Lookup(segments ...string) (string, error) {
	segments = compact(segments)
	if r.mode == ModeManifest {
		return r.lookupManifest(segments)
	}
	return r.lookupTree(r.DefaultPath(segments...))
}

// ResolveWorkspaceRelative resolves a path given relative to the root of
// workspace, e.g. "internal/data.txt" in workspace "my_ws".
func (r *Resolver) ResolveWorkspaceRelative(workspace, rel string) string {
	return r.Resolve(workspace, filepath.ToSlash(rel))
}

// ResolveEntryPoint runs the directory entry-point lookup on a path that is
// already on disk, or on a logical directory in manifest mode.
func (r *Resolver) ResolveEntryPoint(dir string) (string, error) {
	if r.mode == ModeManifest && !filepath.IsAbs(dir) {
		return r.manifestEntryPoints().directory(strings.TrimSuffix(filepath.ToSlash(dir), "/"), nil)
	}
	if resolved, ok := r.probe.ResolveFile(dir); ok {
		return resolved, nil
	}
	return r.probe.entryPoints(r.metadataSkipped).directory(filepath.Clean(dir), nil)
}

func (r *Resolver) lookupManifest(segments []string) (string, error) {
	// The runfiles root itself never has a manifest entry.
	if len(segments) == 0 {
		return "", ErrNotFound
	}
	// The manifest is always written with forward slashes.
	logical := strings.ReplaceAll(strings.Join(segments, "/"), `\`, "/")
	r.logger.Debug("try manifest", zap.String("logical", logical))

	if resolved, ok := r.manifest.Get(logical); ok {
		r.logger.Debug("resolved manifest file", zap.String("path", resolved))
		return resolved, nil
	}
	if resolved, ok := r.manifest.GetWithSuffix(logical, r.probe.Extension()); ok {
		r.logger.Debug("resolved manifest file", zap.String("path", resolved))
		return resolved, nil
	}
	resolved, err := r.manifestEntryPoints().directory(logical, nil)
	if err != nil {
		return "", err
	}
	r.logger.Debug("resolved via manifest directory", zap.String("path", resolved))
	return resolved, nil
}

func (r *Resolver) lookupTree(defaultPath string) (string, error) {
	r.logger.Debug("try runfiles tree", zap.String("path", defaultPath))
	if resolved, ok := r.probe.ResolveFile(defaultPath); ok {
		r.logger.Debug("resolved file", zap.String("path", resolved))
		return resolved, nil
	}
	resolved, err := r.probe.entryPoints(r.metadataSkipped).directory(defaultPath, nil)
	if err != nil {
		return "", err
	}
	r.logger.Debug("resolved via directory", zap.String("path", resolved))
	return resolved, nil
}

func (r *Resolver) manifestEntryPoints() entryPoints {
	return entryPoints{
		loc:             manifestLocator{m: r.manifest, ext: r.probe.Extension()},
		fsys:            r.probe.fsys,
		onMetadataError: r.metadataSkipped,
	}
}

func (r *Resolver) metadataSkipped(err error) {
	r.logger.Debug("ignoring package metadata", zap.Error(err))
}

func compact(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
