package loader

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/module"
)

// Runtime loads modules through its installed resolver.
type Runtime interface {
	Load(req module.Request, main bool) (*module.Module, error)
}

// BootstrapLoadError reports a bootstrap module that failed to load.
type BootstrapLoadError struct {
	Module string
	Err    error
}

func (e *BootstrapLoadError) Error() string {
	return fmt.Sprintf("loader: bootstrap module %s: %v", e.Module, e.Err)
}

func (e *BootstrapLoadError) Unwrap() error { return e.Err }

// EntryPointLoadError reports an entry point that failed to load or run.
type EntryPointLoadError struct {
	Module string
	Err    error
}

func (e *EntryPointLoadError) Error() string {
	return fmt.Sprintf("loader: entry point %s: %v", e.Module, e.Err)
}

func (e *EntryPointLoadError) Unwrap() error { return e.Err }

// Run loads the bootstrap modules in order and then the entry point as the
// main module. The first failure stops the run.
func Run(ctx *module.Context, rt Runtime) error {
	logger := ctx.Log().Named("loader")
	for _, id := range ctx.Bootstrap {
		logger.Debug("bootstrap", zap.String("module", id))
		if _, err := rt.Load(module.Request{ID: id}, false); err != nil {
			return &BootstrapLoadError{Module: id, Err: err}
		}
	}
	entry := strings.TrimSpace(ctx.EntryPoint)
	if entry == "" {
		return &EntryPointLoadError{Err: fmt.Errorf("entry point is not configured")}
	}
	logger.Debug("entry point", zap.String("module", entry))
	if _, err := rt.Load(module.Request{ID: entry}, true); err != nil {
		return &EntryPointLoadError{Module: entry, Err: err}
	}
	return nil
}
