package module

import (
	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/moduleroot"
	"github.com/kingrea/runfiles/internal/runfiles"
)

// Context carries the process-wide resolution state into every resolver call.
// It is built once at start-up and not mutated afterwards.
type Context struct {
	Runfiles *runfiles.Resolver
	Roots    *moduleroot.Matcher

	// Target is the label of the binary being run, for diagnostics.
	Target string
	// Workspace and LabelPackage locate the target's nested node_modules.
	Workspace    string
	LabelPackage string
	// SecondaryWorkspace is an optional external workspace searched the same way.
	SecondaryWorkspace string
	// Extension is the host runtime's module file extension.
	Extension string

	Bootstrap  []string
	EntryPoint string

	Logger *zap.Logger
}

// Log returns the context logger, or a no-op logger.
func (ctx *Context) Log() *zap.Logger {
	if ctx == nil || ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

// ManifestPath returns the manifest file in use, or "" in symlink-tree mode.
func (ctx *Context) ManifestPath() string {
	if ctx == nil || ctx.Runfiles == nil {
		return ""
	}
	return ctx.Runfiles.Manifest().Path()
}
