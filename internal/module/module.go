package module

import (
	"fmt"
	"strings"
)

// Request is a single module load request issued by the host runtime.
type Request struct {
	// ID is the module identifier exactly as the caller wrote it.
	ID string
	// Parent is the resolved path of the requesting module. It is empty for
	// bootstrap modules and the entry point.
	Parent string
}

// Validate ensures the request is well-formed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("module: request id is required")
	}
	return nil
}

func (r Request) String() string {
	if r.Parent == "" {
		return r.ID
	}
	return fmt.Sprintf("%s (from %s)", r.ID, r.Parent)
}

// Resolver maps a request to a file on disk. Implementations are composed
// into a chain by the loader.
type Resolver interface {
	Resolve(ctx *Context, req Request) (string, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx *Context, req Request) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx *Context, req Request) (string, error) {
	return f(ctx, req)
}

// Status enumerates module load outcomes.
type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Module records one module known to the host runtime.
type Module struct {
	ID     string
	Path   string
	Main   bool
	Status Status
	Err    error
}
