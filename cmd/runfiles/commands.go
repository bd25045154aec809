package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/runfiles/internal/config"
	"github.com/kingrea/runfiles/internal/loader"
	"github.com/kingrea/runfiles/internal/module"
	"github.com/kingrea/runfiles/internal/runfiles"
	"github.com/kingrea/runfiles/internal/tui"
)

// resolution is the machine-readable result of `runfiles resolve`.
type resolution struct {
	Mode     string   `yaml:"mode"`
	Segments []string `yaml:"segments"`
	Path     string   `yaml:"path"`
	Found    bool     `yaml:"found"`
}

func (c *cli) resolveCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "resolve SEGMENT...",
		Short: "Resolve runfiles path segments to a location on disk",
		Long: `Resolve runfiles path segments the way the launcher does.

A miss still prints the unresolved default location; --output yaml also
reports whether anything was found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			rf := s.ctx.Runfiles
			res := resolution{Mode: rf.Mode().String(), Segments: args}
			found, lookupErr := rf.Lookup(args...)
			var cyclic *runfiles.CyclicEntryPointError
			switch {
			case lookupErr == nil:
				res.Path, res.Found = found, true
			case errors.Is(lookupErr, runfiles.ErrNotFound), errors.As(lookupErr, &cyclic):
				res.Path = rf.Resolve(args...)
			default:
				return lookupErr
			}

			switch strings.ToLower(output) {
			case "", "text":
				fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			case "yaml":
				data, err := yaml.Marshal(res)
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	return cmd
}

func (c *cli) requireCmd() *cobra.Command {
	var from string
	var trace bool
	cmd := &cobra.Command{
		Use:   "require REQUEST",
		Short: "Resolve a module request through the full resolver chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			result := s.orchestrator().Explain(nil, module.Request{ID: args[0], Parent: from})
			if trace || result.State != loader.RequestResolved {
				fmt.Fprintln(cmd.ErrOrStderr(), tui.RenderTrace(result))
			}
			if result.State != loader.RequestResolved {
				return fmt.Errorf("cannot find module %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "path of the requesting module")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every attempted location")
	return cmd
}

func (c *cli) manifestCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "List manifest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			manifest := s.ctx.Runfiles.Manifest()
			if manifest == nil {
				return fmt.Errorf("not in manifest mode; set RUNFILES_MANIFEST_ONLY=1")
			}
			for _, entry := range manifest.Entries() {
				if !strings.HasPrefix(entry.LogicalPath, prefix) {
					continue
				}
				target := entry.RealPath
				if target == "" {
					target = "(missing)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", entry.LogicalPath, target)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list logical paths starting with this prefix")
	return cmd
}

func (c *cli) explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Interactively explain module resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			p := tea.NewProgram(tui.NewApp(s.orchestrator(), s.header()), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run explorer: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective runfiles environment and launcher configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher, err := c.launcher()
			if err != nil {
				return err
			}
			data, err := config.Snapshot{Env: c.env(), Launcher: launcher}.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
