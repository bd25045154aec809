// cmd/runfiles/main.go
//
// Diagnostics for runfiles module resolution. Every subcommand builds the same
// resolution context the launcher would, from the runfiles environment and
// an optional launcher file, and then reports on it.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/config"
	"github.com/kingrea/runfiles/internal/loader"
	"github.com/kingrea/runfiles/internal/logging"
	"github.com/kingrea/runfiles/internal/module"
)

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	getenv     func(string) string
	configPath string
	verbose    bool
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	c := &cli{getenv: getenv}
	root := &cobra.Command{
		Use:   "runfiles",
		Short: "Inspect runfiles-aware module resolution",
		Long: `Inspect how module requests resolve inside a runfiles tree.

The runfiles location is read from RUNFILES (or RUNFILES_DIR). Set
RUNFILES_MANIFEST_ONLY=1 and RUNFILES_MANIFEST_FILE to use a manifest.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "launcher file (YAML, JSON or HCL)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every resolution step")

	root.AddCommand(
		c.resolveCmd(),
		c.requireCmd(),
		c.manifestCmd(),
		c.explainCmd(),
		c.configCmd(),
	)
	return root
}

// session is a resolution context plus the logger that feeds it.
type session struct {
	launcher config.Launcher
	ctx      *module.Context
	logger   *zap.Logger
	close    func() error
}

func (c *cli) launcher() (config.Launcher, error) {
	if path := strings.TrimSpace(c.configPath); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func (c *cli) env() config.Env {
	env := config.LoadEnv(c.getenv)
	if c.verbose {
		env.Verbose = true
	}
	return env
}

func (c *cli) open(stderr io.Writer) (*session, error) {
	launcher, err := c.launcher()
	if err != nil {
		return nil, err
	}
	env := c.env()
	logger, closeLog, err := logging.New(logging.Options{Out: stderr, Verbose: env.Verbose, File: launcher.LogFile})
	if err != nil {
		return nil, err
	}
	ctx, err := loader.NewContext(env, launcher, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &session{launcher: launcher, ctx: ctx, logger: logger, close: closeLog}, nil
}

func (s *session) orchestrator() *loader.Orchestrator {
	return loader.New(s.ctx, loader.NewNative(nil))
}

func (s *session) header() string {
	rf := s.ctx.Runfiles
	if path := s.ctx.ManifestPath(); path != "" {
		return fmt.Sprintf("%s %s", rf.Mode(), path)
	}
	return fmt.Sprintf("%s %s", rf.Mode(), rf.Root())
}
