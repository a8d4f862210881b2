package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRequiresExactlyOneArgument(t *testing.T) {
	for _, args := range [][]string{{}, {"a.json", "b.json"}} {
		out, err := execute(t, args...)
		if err == nil {
			t.Fatalf("expected error for args %v", args)
		}
		if !strings.Contains(out, "Usage:") {
			t.Fatalf("expected usage message for args %v, got %q", args, out)
		}
	}
}

func TestRootCommandDescribesCompositeRendering(t *testing.T) {
	cmd := newRootCommand()
	for _, want := range []string{"JSON-like text", `["a", "b"]`} {
		if !strings.Contains(cmd.Long, want) {
			t.Fatalf("usage text should mention %q:\n%s", want, cmd.Long)
		}
	}
}

func TestRootCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	input := filepath.Join(dir, "users.json")
	if err := os.WriteFile(input, []byte(`[{"id": "u1", "profile": {"role": "admin"}}]`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, err := execute(t, input)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "users.xlsx")) {
		t.Fatalf("expected output path in %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.xlsx")); err != nil {
		t.Fatalf("expected workbook to exist: %v", err)
	}
}

func TestRootCommandDoesNotPrintUsageForRunErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	out, err := execute(t, filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Fatalf("expected error for missing input")
	}
	if strings.Contains(out, "Usage:") {
		t.Fatalf("did not expect usage for run errors, got %q", out)
	}
}
