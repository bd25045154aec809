package module

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&Module{ID: "b", Path: "/rf/b.go", Status: StatusLoading}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(&Module{ID: "a", Path: "/rf/a.go", Status: StatusLoading}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(&Module{ID: "a2", Path: "/rf/a.go"}); err == nil {
		t.Fatalf("expected duplicate path error")
	}
	if diff := cmp.Diff([]string{"/rf/a.go", "/rf/b.go"}, reg.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	cause := errors.New("eval failed")
	reg.SetStatus("/rf/b.go", StatusFailed, cause)
	mod, ok := reg.Lookup("/rf/b.go")
	if !ok || mod.Status != StatusFailed || !errors.Is(mod.Err, cause) {
		t.Fatalf("unexpected module %+v", mod)
	}
	if _, ok := reg.Lookup("/rf/c.go"); ok {
		t.Fatalf("expected miss for unknown path")
	}
}

func TestRegistryRequiresPath(t *testing.T) {
	if err := NewRegistry().Register(&Module{ID: "x"}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRequestValidate(t *testing.T) {
	if err := (Request{ID: " "}).Validate(); err == nil {
		t.Fatalf("expected error for blank id")
	}
	if got := (Request{ID: "dep", Parent: "/rf/main.go"}).String(); got != "dep (from /rf/main.go)" {
		t.Fatalf("unexpected string %q", got)
	}
}
