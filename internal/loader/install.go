package loader

import (
	"errors"
	"fmt"

	"github.com/kingrea/runfiles/internal/module"
)

// State is the install state of an Orchestrator. It only moves forward.
type State int

const (
	StateUninstalled State = iota
	StateInstalled
)

func (s State) String() string {
	if s == StateInstalled {
		return "installed"
	}
	return "uninstalled"
}

// ErrAlreadyInstalled is returned by a second Install.
var ErrAlreadyInstalled = errors.New("loader: resolver already installed")

// Host is a runtime whose module lookup can be replaced.
type Host interface {
	UseResolver(resolver module.Resolver) error
}

// Install makes the orchestrator the host's module resolver. It happens once,
// before any user code is loaded, and is never undone.
func (o *Orchestrator) Install(host Host) error {
	if o.state == StateInstalled {
		return ErrAlreadyInstalled
	}
	if host == nil {
		return fmt.Errorf("loader: host runtime is required")
	}
	if err := host.UseResolver(o); err != nil {
		return fmt.Errorf("loader: install resolver: %w", err)
	}
	o.state = StateInstalled
	o.ctx.Log().Named("loader").Debug("resolver installed")
	return nil
}

// State reports whether the orchestrator has been installed.
func (o *Orchestrator) State() State { return o.state }
