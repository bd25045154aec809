// cmd/module-runner/main.go
//
// Launcher for runfiles-packaged programs. It reads the runfiles environment
// and the launcher file, installs the runfiles-aware module resolver into
// the interpreter, loads the bootstrap modules and then runs the entry point.
// Arguments after the flags are passed through to the entry point.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/config"
	"github.com/kingrea/runfiles/internal/host"
	"github.com/kingrea/runfiles/internal/loader"
	"github.com/kingrea/runfiles/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("module-runner", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.StringP("config", "c", "", "launcher file (YAML, JSON or HCL)")
	entryPoint := flags.StringP("entry-point", "e", "", "override the entry point from the launcher file")
	verbose := flags.BoolP("verbose", "v", false, "log every resolution step (same as VERBOSE_LOGS=1)")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: module-runner [flags] [--] [args...]\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	env := config.LoadEnv(getenv)
	if *verbose {
		env.Verbose = true
	}
	launcher := config.Default()
	if path := strings.TrimSpace(*configPath); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		launcher = loaded
	}
	if entry := strings.TrimSpace(*entryPoint); entry != "" {
		launcher.EntryPoint = entry
	}

	logger, closeLog, err := logging.New(logging.Options{Out: stderr, Verbose: env.Verbose, File: launcher.LogFile})
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, err := loader.NewContext(env, launcher, logger)
	if err != nil {
		return err
	}
	rt := host.New(ctx, host.Options{
		Stdout: stdout,
		Stderr: stderr,
		Args:   append([]string{launcher.EntryPoint}, flags.Args()...),
	})
	if err := loader.New(ctx, loader.NewNative(nil)).Install(rt); err != nil {
		return err
	}
	if err := prependExecutableDir(); err != nil {
		logger.Warn("could not extend PATH", zap.Error(err))
	}
	return loader.Run(ctx, rt)
}

// prependExecutableDir puts the launcher's own directory first on PATH so
// tools shipped next to it win over system ones.
func prependExecutableDir() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}
	dir, err := filepath.Abs(filepath.Dir(executable))
	if err != nil {
		return fmt.Errorf("resolve executable dir: %w", err)
	}
	return os.Setenv("PATH", prependPath(dir, os.Getenv("PATH")))
}

func prependPath(dir, path string) string {
	if path == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + path
}
