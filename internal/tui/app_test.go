package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/runfiles/internal/loader"
	"github.com/kingrea/runfiles/internal/module"
)

type stubExplainer struct {
	requests []module.Request
}

func (s *stubExplainer) Explain(_ *module.Context, req module.Request) loader.Trace {
	s.requests = append(s.requests, req)
	if req.ID == "dep" {
		return loader.Trace{Request: req, State: loader.RequestResolved, Path: "/rf/ws/dep.go", Attempts: []loader.Attempt{
			{Stage: "native", Location: "dep", Err: errors.New("not found")},
			{Stage: "runfiles", Location: "/rf/ws/dep.go"},
		}}
	}
	return loader.Trace{Request: req, State: loader.RequestFailed, Attempts: []loader.Attempt{
		{Stage: "native", Location: req.ID, Err: errors.New("not found")},
	}}
}

func typeText(t *testing.T, app *App, text string) {
	t.Helper()
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestEnterExplainsRequest(t *testing.T) {
	stub := &stubExplainer{}
	app := NewApp(stub, "symlink-tree /rf")
	typeText(t, app, "dep /rf/ws/main.go")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(stub.requests) != 1 {
		t.Fatalf("expected one explain call, got %d", len(stub.requests))
	}
	if got := stub.requests[0]; got.ID != "dep" || got.Parent != "/rf/ws/main.go" {
		t.Fatalf("unexpected request %+v", got)
	}
	trace, ok := app.Current()
	if !ok || trace.Path != "/rf/ws/dep.go" {
		t.Fatalf("expected current trace for dep, got %+v", trace)
	}
	if app.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", app.input.Value())
	}
	if !strings.Contains(app.View(), "/rf/ws/dep.go") {
		t.Fatalf("expected view to show resolved path")
	}
}

func TestHistorySelectionRestoresTrace(t *testing.T) {
	app := NewApp(&stubExplainer{}, "manifest")
	typeText(t, app, "dep")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(t, app, "missing")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if n := len(app.history.Items()); n != 2 {
		t.Fatalf("expected two history items, got %d", n)
	}
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	trace, _ := app.Current()
	if trace.Request.ID != "dep" {
		t.Fatalf("expected older trace to be selected, got %q", trace.Request.ID)
	}
}

func TestBlankInputIsIgnored(t *testing.T) {
	stub := &stubExplainer{}
	app := NewApp(stub, "")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(stub.requests) != 0 {
		t.Fatalf("blank input must not be explained")
	}
}

func TestEscQuits(t *testing.T) {
	app := NewApp(&stubExplainer{}, "")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestRenderTraceListsAttemptsInOrder(t *testing.T) {
	out := RenderTrace((&stubExplainer{}).Explain(nil, module.Request{ID: "missing"}))
	if !strings.Contains(out, "not found") || !strings.Contains(out, " 1. ") {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
}
