// internal/config/config.go
//
// This package reads the launcher's configuration. There are two sources:
// the runfiles environment the build tool sets for every action, and the
// launcher file written next to the binary at build time (YAML or HCL).

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/runfiles/internal/moduleroot"
)

const (
	EnvRunfiles     = "RUNFILES"
	EnvRunfilesDir  = "RUNFILES_DIR"
	EnvManifestOnly = "RUNFILES_MANIFEST_ONLY"
	EnvManifestFile = "RUNFILES_MANIFEST_FILE"
	EnvVerboseLogs  = "VERBOSE_LOGS"

	// DefaultExtension is the module extension of the embedded Go interpreter.
	DefaultExtension = ".go"
)

// Env is the runfiles environment, read once at process start.
type Env struct {
	// Runfiles is the root of the runfiles tree.
	Runfiles string `yaml:"runfiles"`
	// ManifestOnly selects the manifest backend. Set on platforms without
	// symlink support.
	ManifestOnly bool   `yaml:"manifest_only"`
	ManifestFile string `yaml:"manifest_file,omitempty"`
	Verbose      bool   `yaml:"verbose"`
}

// LoadEnv reads the environment through getenv (usually os.Getenv).
func LoadEnv(getenv func(string) string) Env {
	runfiles := getenv(EnvRunfiles)
	if runfiles == "" {
		runfiles = getenv(EnvRunfilesDir)
	}
	return Env{
		Runfiles:     runfiles,
		ManifestOnly: getenv(EnvManifestOnly) == "1",
		ManifestFile: getenv(EnvManifestFile),
		Verbose:      getenv(EnvVerboseLogs) != "",
	}
}

// Validate checks that the selected backend has what it needs.
func (e Env) Validate() error {
	if e.ManifestOnly && strings.TrimSpace(e.ManifestFile) == "" {
		return fmt.Errorf("config: %s=1 requires %s", EnvManifestOnly, EnvManifestFile)
	}
	return nil
}

// ModuleRoot is one pattern rewrite rule.
type ModuleRoot struct {
	Pattern      string `yaml:"pattern" hcl:"pattern"`
	Substitution string `yaml:"substitution" hcl:"substitution"`
}

// Launcher models the launcher file.
type Launcher struct {
	Target             string       `yaml:"target,omitempty" hcl:"target,optional"`
	Workspace          string       `yaml:"workspace,omitempty" hcl:"workspace,optional"`
	SecondaryWorkspace string       `yaml:"secondary_workspace,omitempty" hcl:"secondary_workspace,optional"`
	LabelPackage       string       `yaml:"label_package,omitempty" hcl:"label_package,optional"`
	Extension          string       `yaml:"extension,omitempty" hcl:"extension,optional"`
	ModuleRoots        []ModuleRoot `yaml:"module_roots,omitempty" hcl:"module_root,block"`
	Bootstrap          []string     `yaml:"bootstrap,omitempty" hcl:"bootstrap,optional"`
	EntryPoint         string       `yaml:"entry_point,omitempty" hcl:"entry_point,optional"`
	LogFile            string       `yaml:"log_file,omitempty" hcl:"log_file,optional"`
}

// Default returns a launcher with defaults applied and nothing else set.
func Default() Launcher {
	l := Launcher{}
	l.applyDefaults()
	return l
}

// Load reads the launcher file at path. Files ending in .hcl are decoded as
// HCL, anything else as YAML (which also accepts JSON).
func Load(path string) (Launcher, error) {
	var parsed Launcher
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		if err := hclsimple.DecodeFile(path, nil, &parsed); err != nil {
			return Launcher{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return Launcher{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return Launcher{}, fmt.Errorf("config: %s is empty", path)
		}
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Launcher{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	parsed.applyDefaults()
	parsed.normalize(filepath.Dir(path))
	if err := parsed.validate(); err != nil {
		return Launcher{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return parsed, nil
}

// Rules compiles the module roots in configuration order.
func (l Launcher) Rules() ([]moduleroot.Rule, error) {
	rules := make([]moduleroot.Rule, 0, len(l.ModuleRoots))
	for i, root := range l.ModuleRoots {
		rule, err := moduleroot.NewRule(root.Pattern, root.Substitution)
		if err != nil {
			return nil, fmt.Errorf("module_roots[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Snapshot is the effective configuration of a process: what the environment
// selected and what the launcher file asked for.
type Snapshot struct {
	Env      Env      `yaml:"env"`
	Launcher Launcher `yaml:"launcher"`
}

// Marshal encodes the snapshot as YAML.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("config: encode snapshot: %w", err)
	}
	return data, nil
}

func (l *Launcher) applyDefaults() {
	if strings.TrimSpace(l.Extension) == "" {
		l.Extension = DefaultExtension
	}
}

func (l *Launcher) normalize(base string) {
	l.Target = strings.TrimSpace(l.Target)
	l.Workspace = strings.TrimSpace(l.Workspace)
	l.SecondaryWorkspace = strings.TrimSpace(l.SecondaryWorkspace)
	l.LabelPackage = strings.Trim(strings.TrimSpace(l.LabelPackage), "/")
	l.Extension = strings.TrimSpace(l.Extension)
	if !strings.HasPrefix(l.Extension, ".") {
		l.Extension = "." + l.Extension
	}
	l.EntryPoint = strings.TrimSpace(l.EntryPoint)
	bootstrap := l.Bootstrap[:0]
	for _, id := range l.Bootstrap {
		if id = strings.TrimSpace(id); id != "" {
			bootstrap = append(bootstrap, id)
		}
	}
	l.Bootstrap = bootstrap
	l.LogFile = resolvePath(base, l.LogFile)
}

func (l *Launcher) validate() error {
	for i, root := range l.ModuleRoots {
		if root.Pattern == "" {
			return fmt.Errorf("module_roots[%d]: pattern is required", i)
		}
	}
	if _, err := l.Rules(); err != nil {
		return err
	}
	if l.EntryPoint == "" && len(l.Bootstrap) > 0 {
		return errors.New("entry_point is required when bootstrap modules are listed")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
