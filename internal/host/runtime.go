// Package host runs modules on the yaegi Go interpreter. Every module file
// is evaluated once in its own interpreter, and module lookups go through the
// resolver installed by the loader.
package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/module"
)

// ImportPath is the package scripts import to reach the runfiles helpers.
const ImportPath = "runfiles"

var (
	// ErrNoResolver is returned by Load before a resolver was installed.
	ErrNoResolver = errors.New("host: no module resolver installed")
	// ErrResolverSet is returned when a second resolver is installed.
	ErrResolverSet = errors.New("host: module resolver already installed")
)

// Options configure a Runtime.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Args become os.Args inside evaluated modules.
	Args []string
}

// Runtime evaluates modules and caches them by resolved path. It is not safe
// for concurrent use: nested requires run on the caller's goroutine.
type Runtime struct {
	ctx      *module.Context
	opts     Options
	resolver module.Resolver
	registry *module.Registry
}

// New returns a runtime that resolves against ctx once a resolver is installed.
func New(ctx *module.Context, opts Options) *Runtime {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Runtime{ctx: ctx, opts: opts, registry: module.NewRegistry()}
}

// UseResolver replaces the module lookup. It may only be called once.
func (r *Runtime) UseResolver(resolver module.Resolver) error {
	if resolver == nil {
		return fmt.Errorf("host: resolver is required")
	}
	if r.resolver != nil {
		return ErrResolverSet
	}
	r.resolver = resolver
	return nil
}

// Registry exposes the loaded module cache.
func (r *Runtime) Registry() *module.Registry { return r.registry }

// Load resolves req and evaluates the module it names. A module that was
// already loaded, or is still loading further up the require chain, is
// returned without being evaluated again.
func (r *Runtime) Load(req module.Request, main bool) (*module.Module, error) {
	if r.resolver == nil {
		return nil, ErrNoResolver
	}
	path, err := r.resolver.Resolve(r.ctx, req)
	if err != nil {
		return nil, err
	}
	if mod, ok := r.registry.Lookup(path); ok {
		if mod.Status == module.StatusFailed {
			return mod, mod.Err
		}
		return mod, nil
	}

	mod := &module.Module{ID: req.ID, Path: path, Main: main, Status: module.StatusLoading}
	if err := r.registry.Register(mod); err != nil {
		return nil, err
	}
	logger := r.ctx.Log().Named("host")
	logger.Debug("evaluate", zap.String("module", req.ID), zap.String("path", path), zap.Bool("main", main))
	if err := r.eval(mod); err != nil {
		r.registry.SetStatus(path, module.StatusFailed, err)
		return mod, err
	}
	r.registry.SetStatus(path, module.StatusLoaded, nil)
	return mod, nil
}

func (r *Runtime) eval(mod *module.Module) (err error) {
	code, err := os.ReadFile(mod.Path)
	if err != nil {
		return fmt.Errorf("host: read %s: %w", mod.Path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return fmt.Errorf("host: %s is empty", mod.Path)
	}
	i := interp.New(interp.Options{
		Stdout: r.opts.Stdout,
		Stderr: r.opts.Stderr,
		Args:   r.opts.Args,
		Env:    os.Environ(),
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("host: load stdlib symbols: %w", err)
	}
	if err := i.Use(r.exports(mod)); err != nil {
		return fmt.Errorf("host: load runfiles symbols: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("host: %s panicked: %v", mod.Path, p)
		}
	}()
	if _, err := i.EvalPath(mod.Path); err != nil {
		return fmt.Errorf("host: evaluate %s: %w", mod.Path, err)
	}
	return nil
}

// exports builds the runfiles package seen by mod. Require and Lookup resolve
// relative to mod's own path.
func (r *Runtime) exports(mod *module.Module) interp.Exports {
	resolve := func(segments ...string) string {
		if r.ctx == nil || r.ctx.Runfiles == nil {
			return ""
		}
		return r.ctx.Runfiles.Resolve(segments...)
	}
	resolveWorkspaceRelative := func(workspace, rel string) string {
		if r.ctx == nil || r.ctx.Runfiles == nil {
			return ""
		}
		return r.ctx.Runfiles.ResolveWorkspaceRelative(workspace, rel)
	}
	lookup := func(id string) (string, error) {
		return r.resolver.Resolve(r.ctx, module.Request{ID: id, Parent: mod.Path})
	}
	require := func(id string) (string, error) {
		dep, err := r.Load(module.Request{ID: id, Parent: mod.Path}, false)
		if err != nil {
			return "", err
		}
		return dep.Path, nil
	}
	return interp.Exports{
		ImportPath + "/" + ImportPath: {
			"Resolve":                  reflect.ValueOf(resolve),
			"ResolveWorkspaceRelative": reflect.ValueOf(resolveWorkspaceRelative),
			"Lookup":                   reflect.ValueOf(lookup),
			"Require":                  reflect.ValueOf(require),
			"Filename":                 reflect.ValueOf(func() string { return mod.Path }),
			"IsMain":                   reflect.ValueOf(func() bool { return mod.Main }),
		},
	}
}
