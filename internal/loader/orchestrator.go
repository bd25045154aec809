// Package loader extends the host runtime's module lookup with runfiles
// awareness. The Orchestrator tries the native lookup first, then runfiles
// candidates, then module-root rewrites, and reports every location it tried
// when all of them fail.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/module"
	"github.com/kingrea/runfiles/internal/runfiles"
)

// RequestState tracks a single resolution.
type RequestState string

const (
	RequestResolving RequestState = "resolving"
	RequestResolved  RequestState = "resolved"
	RequestFailed    RequestState = "failed"
)

// Attempt is one candidate location tried by a stage.
type Attempt struct {
	Stage    string
	Location string
	Err      error
}

// Trace records how a request was resolved.
type Trace struct {
	Request  module.Request
	State    RequestState
	Path     string
	Attempts []Attempt
}

// Stage is one link of the resolution chain. It returns the resolved path, or
// "" together with the attempts it made.
type Stage interface {
	Name() string
	Resolve(ctx *module.Context, req module.Request) (string, []Attempt)
}

// ModuleNotFoundError is returned when every stage failed. Attempts lists
// every location in the order it was tried.
type ModuleNotFoundError struct {
	Request  module.Request
	Attempts []Attempt
}

// Attempted returns the tried locations in order.
func (e *ModuleNotFoundError) Attempted() []string {
	out := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Location)
	}
	return out
}

func (e *ModuleNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loader: cannot find module %q", e.Request.ID)
	if e.Request.Parent != "" {
		fmt.Fprintf(&b, " required by %s", e.Request.Parent)
	}
	b.WriteString("; tried:")
	for _, loc := range e.Attempted() {
		b.WriteString("\n  - ")
		b.WriteString(loc)
	}
	return b.String()
}

// Orchestrator is the runfiles-aware module.Resolver.
type Orchestrator struct {
	ctx    *module.Context
	stages []Stage
	state  State
}

// New builds the default chain on top of native: the native lookup, runfiles
// candidates fed back through native, then module-root rewrites.
func New(ctx *module.Context, native module.Resolver) *Orchestrator {
	return NewWithStages(ctx,
		NativeStage{Native: native},
		RunfilesStage{Native: native},
		ModuleRootStage{},
	)
}

// NewWithStages builds an orchestrator over an explicit chain.
func NewWithStages(ctx *module.Context, stages ...Stage) *Orchestrator {
	return &Orchestrator{ctx: ctx, stages: stages, state: StateUninstalled}
}

// Resolve implements module.Resolver. A nil ctx uses the orchestrator's own.
func (o *Orchestrator) Resolve(ctx *module.Context, req module.Request) (string, error) {
	trace := o.Explain(ctx, req)
	if trace.State == RequestResolved {
		return trace.Path, nil
	}
	return "", &ModuleNotFoundError{Request: req, Attempts: trace.Attempts}
}

// Explain runs the chain and returns the full trace, successful or not.
func (o *Orchestrator) Explain(ctx *module.Context, req module.Request) Trace {
	if ctx == nil {
		ctx = o.ctx
	}
	if ctx == nil {
		ctx = &module.Context{}
	}
	logger := ctx.Log().Named("loader")
	trace := Trace{Request: req, State: RequestResolving}
	if err := req.Validate(); err != nil {
		trace.State = RequestFailed
		trace.Attempts = append(trace.Attempts, Attempt{Stage: "request", Location: req.ID, Err: err})
		return trace
	}
	logger.Debug("resolve", zap.String("request", req.ID), zap.String("parent", req.Parent))
	for _, stage := range o.stages {
		path, attempts := stage.Resolve(ctx, req)
		for _, a := range attempts {
			logger.Debug("candidate failed", zap.String("stage", a.Stage), zap.String("location", a.Location), zap.Error(a.Err))
		}
		trace.Attempts = append(trace.Attempts, attempts...)
		if path != "" {
			trace.State = RequestResolved
			trace.Path = path
			trace.Attempts = append(trace.Attempts, Attempt{Stage: stage.Name(), Location: path})
			logger.Debug("resolved", zap.String("request", req.ID), zap.String("stage", stage.Name()), zap.String("path", path))
			return trace
		}
	}
	trace.State = RequestFailed
	return trace
}

// NativeStage hands the raw request to the unextended runtime lookup.
type NativeStage struct {
	Native module.Resolver
}

func (NativeStage) Name() string { return "native" }

func (s NativeStage) Resolve(ctx *module.Context, req module.Request) (string, []Attempt) {
	path, err := s.Native.Resolve(ctx, req)
	if err == nil {
		return path, nil
	}
	var search *SearchError
	if errors.As(err, &search) && len(search.Searched) > 0 {
		attempts := make([]Attempt, 0, len(search.Searched))
		for _, location := range search.Searched {
			attempts = append(attempts, Attempt{Stage: s.Name(), Location: location, Err: runfiles.ErrNotFound})
		}
		return "", attempts
	}
	return "", []Attempt{{Stage: s.Name(), Location: req.ID, Err: err}}
}

// RunfilesStage maps the request into the runfiles tree and feeds each
// candidate back through the native lookup.
type RunfilesStage struct {
	Native module.Resolver
}

func (RunfilesStage) Name() string { return "runfiles" }

// manifestEntry is the manifest's own pseudo-entry, never a module.
const manifestEntry = "manifest"

func (s RunfilesStage) Resolve(ctx *module.Context, req module.Request) (string, []Attempt) {
	if ctx.Runfiles == nil || req.ID == manifestEntry {
		return "", nil
	}
	var attempts []Attempt
	for _, segments := range Candidates(ctx, req.ID) {
		location := ctx.Runfiles.Resolve(segments...)
		if isManifestFile(ctx, location) {
			continue
		}
		path, err := s.Native.Resolve(ctx, module.Request{ID: location, Parent: req.Parent})
		if err == nil {
			return path, attempts
		}
		attempts = append(attempts, Attempt{Stage: s.Name(), Location: location, Err: err})
	}
	return "", attempts
}

// Candidates returns the runfiles segment lists tried for request, in order:
// the request itself, the target package's nested node_modules, and the same
// under the secondary workspace when one is configured.
func Candidates(ctx *module.Context, request string) [][]string {
	out := [][]string{
		{request},
		{ctx.Workspace, ctx.LabelPackage, nodeModulesDir, request},
	}
	if ctx.SecondaryWorkspace != "" {
		out = append(out, []string{ctx.SecondaryWorkspace, ctx.LabelPackage, nodeModulesDir, request})
	}
	return out
}

func isManifestFile(ctx *module.Context, location string) bool {
	manifest := ctx.ManifestPath()
	return manifest != "" && filepath.Clean(location) == filepath.Clean(manifest)
}

// ModuleRootStage rewrites the request with the configured module roots and
// resolves the result as a file or package directory.
type ModuleRootStage struct{}

func (ModuleRootStage) Name() string { return "module-root" }

func (s ModuleRootStage) Resolve(ctx *module.Context, req module.Request) (string, []Attempt) {
	if ctx.Runfiles == nil {
		return "", nil
	}
	rewritten, ok := ctx.Roots.Match(req.ID)
	if !ok {
		return "", nil
	}
	location := ctx.Runfiles.Resolve(rewritten)
	path, err := ctx.Runfiles.ResolveEntryPoint(location)
	if err != nil {
		return "", []Attempt{{Stage: s.Name(), Location: location, Err: err}}
	}
	return path, nil
}
