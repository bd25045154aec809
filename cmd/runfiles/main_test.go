package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func execute(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(func(key string) string { return env[key] })
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolve_SymlinkTree(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "ws", "pkg", "dist", "index.go")
	writeFile(t, filepath.Join(root, "ws", "pkg", "package.json"), `{"main": "./dist/index"}`)
	writeFile(t, want, "package main\n")

	out, _, err := execute(t, map[string]string{"RUNFILES": root}, "resolve", "ws", "pkg")
	require.NoError(t, err)
	require.Equal(t, want, strings.TrimSpace(out))
}

func TestResolve_YAMLReportsMiss(t *testing.T) {
	root := t.TempDir()
	out, _, err := execute(t, map[string]string{"RUNFILES": root}, "resolve", "-o", "yaml", "ws", "absent")
	require.NoError(t, err)

	var res resolution
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	require.False(t, res.Found)
	require.Equal(t, filepath.Join(root, "ws", "absent"), res.Path)
	require.Equal(t, "symlink-tree", res.Mode)
}

func TestRequire_FailureListsAttempts(t *testing.T) {
	root := t.TempDir()
	_, stderr, err := execute(t, map[string]string{"RUNFILES": root}, "require", "no-such-module")
	require.Error(t, err)
	require.Contains(t, stderr, "not found")
	require.Contains(t, stderr, filepath.Join(root, "no-such-module"))
}

func TestRequire_UsesModuleRoots(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "ws", "packages", "widget", "index.go")
	writeFile(t, want, "package main\n")
	configPath := filepath.Join(t.TempDir(), "launcher.yaml")
	writeFile(t, configPath, "workspace: ws\nmodule_roots:\n  - pattern: \"^@acme/\"\n    substitution: \"ws/packages/\"\n")

	out, _, err := execute(t, map[string]string{"RUNFILES": root}, "--config", configPath, "require", "@acme/widget")
	require.NoError(t, err)
	require.Equal(t, want, strings.TrimSpace(out))
}

func TestManifest_ListsEntries(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "MANIFEST")
	writeFile(t, manifestPath, "b/two /real/two\na/one /real/one\na/empty\n")
	env := map[string]string{"RUNFILES_MANIFEST_ONLY": "1", "RUNFILES_MANIFEST_FILE": manifestPath}

	out, _, err := execute(t, env, "manifest", "--prefix", "a/")
	require.NoError(t, err)
	require.Equal(t, "a/empty (missing)\na/one /real/one\n", out)
}

func TestManifest_RequiresManifestMode(t *testing.T) {
	_, _, err := execute(t, map[string]string{"RUNFILES": t.TempDir()}, "manifest")
	require.Error(t, err)
}

func TestConfig_PrintsEnvAndLauncher(t *testing.T) {
	env := map[string]string{"RUNFILES_MANIFEST_ONLY": "1", "RUNFILES_MANIFEST_FILE": "/rf/MANIFEST"}
	out, _, err := execute(t, env, "config")
	require.NoError(t, err)

	var snapshot struct {
		Env struct {
			ManifestOnly bool   `yaml:"manifest_only"`
			ManifestFile string `yaml:"manifest_file"`
		} `yaml:"env"`
		Launcher struct {
			Extension string `yaml:"extension"`
		} `yaml:"launcher"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &snapshot))
	require.True(t, snapshot.Env.ManifestOnly)
	require.Equal(t, "/rf/MANIFEST", snapshot.Env.ManifestFile)
	require.Equal(t, ".go", snapshot.Launcher.Extension)
}
