// internal/tui/app.go
//
// Interactive explorer for module resolution. Type a request (optionally
// followed by the requesting file), press enter, and the full resolution
// trace is shown. Earlier requests stay in the history list.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/runfiles/internal/loader"
	"github.com/kingrea/runfiles/internal/module"
)

// Explainer produces a resolution trace. *loader.Orchestrator satisfies it.
type Explainer interface {
	Explain(ctx *module.Context, req module.Request) loader.Trace
}

type focus int

const (
	focusInput focus = iota
	focusHistory
)

// historyItem implements list.Item for a finished trace.
type historyItem struct {
	trace loader.Trace
}

func (i historyItem) Title() string { return i.trace.Request.ID }
func (i historyItem) Description() string {
	if i.trace.State == loader.RequestResolved {
		return i.trace.Path
	}
	return fmt.Sprintf("not found (%d attempts)", len(i.trace.Attempts))
}
func (i historyItem) FilterValue() string { return i.trace.Request.ID }

// App is the explorer model.
type App struct {
	explainer Explainer
	header    string

	input   textinput.Model
	history list.Model
	focus   focus
	current *loader.Trace

	width  int
	height int
}

// NewApp builds the explorer. header is shown above the input, typically the
// runfiles mode and root.
func NewApp(explainer Explainer, header string) *App {
	input := textinput.New()
	input.Placeholder = "request [parent file]"
	input.Prompt = "require> "
	input.Focus()

	history := list.New(nil, list.NewDefaultDelegate(), 40, 14)
	history.Title = "History"
	history.SetShowStatusBar(false)
	history.SetFilteringEnabled(false)

	return &App{explainer: explainer, header: header, input: input, history: history}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.history.SetSize(max(20, msg.Width/3), max(5, msg.Height-6))
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "tab":
			a.toggleFocus()
			return a, nil
		case "enter":
			if a.focus == focusInput {
				a.explain(a.input.Value())
				return a, nil
			}
			if item, ok := a.history.SelectedItem().(historyItem); ok {
				trace := item.trace
				a.current = &trace
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	if a.focus == focusInput {
		a.input, cmd = a.input.Update(msg)
	} else {
		a.history, cmd = a.history.Update(msg)
	}
	return a, cmd
}

func (a *App) toggleFocus() {
	if a.focus == focusInput {
		a.focus = focusHistory
		a.input.Blur()
		return
	}
	a.focus = focusInput
	a.input.Focus()
}

func (a *App) explain(raw string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return
	}
	req := module.Request{ID: fields[0]}
	if len(fields) > 1 {
		req.Parent = fields[1]
	}
	trace := a.explainer.Explain(nil, req)
	a.current = &trace
	a.history.InsertItem(0, historyItem{trace: trace})
	a.history.Select(0)
	a.input.SetValue("")
}

// Current returns the trace on display, if any.
func (a *App) Current() (loader.Trace, bool) {
	if a.current == nil {
		return loader.Trace{}, false
	}
	return *a.current, true
}

// View implements tea.Model.
func (a *App) View() string {
	top := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(a.header),
		a.input.View(),
	)
	detail := hintStyle.Render("Enter a module request to see how it resolves.")
	if a.current != nil {
		detail = RenderTrace(*a.current)
	}
	body := boxStyle.Render(detail)
	if len(a.history.Items()) > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(a.history.View()), body)
	}
	footer := hintStyle.Render("enter: explain · tab: switch focus · esc: quit")
	return lipgloss.JoinVertical(lipgloss.Left, top, body, footer)
}
