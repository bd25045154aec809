package loader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kingrea/runfiles/internal/module"
	"github.com/kingrea/runfiles/internal/runfiles"
)

func TestNativeResolvesRelativeToParent(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "lib", "helper.go")
	writeFile(t, want, "")

	native := NewNative(nil)
	ctx := &module.Context{Extension: ".go"}
	got, err := native.Resolve(ctx, module.Request{ID: "./lib/helper", Parent: filepath.Join(dir, "main.go")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNativeWalksAncestorNodeModules(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "node_modules", "dep", "index.go")
	writeFile(t, want, "")

	native := NewNative(nil)
	parent := filepath.Join(dir, "a", "b", "c", "caller.go")
	got, err := native.Resolve(&module.Context{Extension: ".go"}, module.Request{ID: "dep", Parent: parent})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNativeUsesWorkingDirectoryWithoutParent(t *testing.T) {
	wd := t.TempDir()
	want := filepath.Join(wd, "tool.go")
	writeFile(t, want, "")

	native := NewNative(nil)
	native.Getwd = func() (string, error) { return wd, nil }
	got, err := native.Resolve(&module.Context{Extension: ".go"}, module.Request{ID: "./tool"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNativeMissIsNotFound(t *testing.T) {
	wd := t.TempDir()
	native := NewNative(nil)
	native.Getwd = func() (string, error) { return wd, nil }
	_, err := native.Resolve(&module.Context{Extension: ".go"}, module.Request{ID: filepath.Join(wd, "absent")})
	if !errors.Is(err, runfiles.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNativeRejectsEmptyRequest(t *testing.T) {
	if _, err := NewNative(nil).Resolve(&module.Context{}, module.Request{ID: "  "}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNativeBareMissListsSearchedDirectories(t *testing.T) {
	wd := t.TempDir()
	native := NewNative(nil)
	native.Getwd = func() (string, error) { return wd, nil }

	_, err := native.Resolve(&module.Context{Extension: ".go"}, module.Request{ID: "dep"})
	var search *SearchError
	if !errors.As(err, &search) {
		t.Fatalf("expected SearchError, got %v", err)
	}
	if !errors.Is(err, runfiles.ErrNotFound) {
		t.Fatalf("expected SearchError to wrap ErrNotFound")
	}
	if len(search.Searched) == 0 || search.Searched[0] != filepath.Join(wd, "node_modules", "dep") {
		t.Fatalf("expected search to start at %s, got %v", wd, search.Searched)
	}
	if last := search.Searched[len(search.Searched)-1]; last != filepath.Join(string(filepath.Separator), "node_modules", "dep") {
		t.Fatalf("expected search to end at the filesystem root, got %s", last)
	}
}
