package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewVerboseWritesDebug(t *testing.T) {
	var out bytes.Buffer
	logger, closeFn, err := New(Options{Out: &out, Verbose: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("resolve step")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !strings.Contains(out.String(), "resolve step") {
		t.Fatalf("expected debug line, got %q", out.String())
	}
}

func TestNewQuietDropsDebug(t *testing.T) {
	var out bytes.Buffer
	logger, closeFn, err := New(Options{Out: &out})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = closeFn()
	if strings.Contains(out.String(), "hidden") || !strings.Contains(out.String(), "shown") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "launcher.log")
	logger, closeFn, err := New(Options{Out: &bytes.Buffer{}, File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("to file only")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file only"`) {
		t.Fatalf("expected JSON line in log file, got %q", data)
	}
}
