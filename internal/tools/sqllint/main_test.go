package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLintAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "q.go", "package q\n\nconst QList = `--sql 3a7d2f81-6c0e-4b95-a1e4-58f2c9d07b36\nselect 1;\n`\n\nconst Greeting = \"hello\"\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %#v", violations)
	}
}

func TestLintFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "q.go", "package q\n\nconst QBad = `delete from records;`\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 1 || violations[0].name != "QBad" {
		t.Fatalf("expected one violation for QBad, got %#v", violations)
	}
}

func TestLintFlagsDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	marker := "--sql 9e4b1a07-d35c-4f68-b2a9-1c7e6f0d5a48"
	writeSource(t, dir, "a.go", "package q\n\nconst QA = `"+marker+"\nselect 1;\n`\n")
	writeSource(t, dir, "b.go", "package q\n\nconst QB = `"+marker+"\nselect 2;\n`\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("expected one duplicate violation, got %#v", violations)
	}
	if !strings.Contains(violations[0].message, "duplicate marker") || violations[0].name != "QB" {
		t.Fatalf("unexpected violation: %#v", violations[0])
	}
}
