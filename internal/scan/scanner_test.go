package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeSession creates one transcript file under root/project with a fixed mtime.
func writeSession(t *testing.T, root, project, name string, mtime time.Time) {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}
	path := filepath.Join(dir, name)
	line := `{"type":"user","message":{"role":"user","content":"hi"},"timestamp":"2024-01-01T00:00:00Z"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		t.Fatalf("failed to write session file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}
}

// TestScanMissingRoot tests that an absent root means no activity, not an error
func TestScanMissingRoot(t *testing.T) {
	projects, err := New(filepath.Join(t.TempDir(), "does-not-exist")).Scan()
	if err != nil {
		t.Fatalf("missing root should not be an error, got %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected no projects, got %d", len(projects))
	}
}

// TestScanUntraversableRoot tests that a root that exists but cannot be
// enumerated is an error, unlike a missing one
func TestScanUntraversableRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := New(path).Scan(); err == nil {
		t.Error("a root that cannot be traversed should be an error")
	}
}

// TestScanOrdersByRecency tests descending last-activity ordering
func TestScanOrdersByRecency(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "alpha", "a.jsonl", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	writeSession(t, root, "beta", "b.jsonl", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].Name != "beta" || projects[1].Name != "alpha" {
		t.Errorf("expected beta before alpha, got %s, %s", projects[0].Name, projects[1].Name)
	}
}

// TestScanTieBreaksLexically tests deterministic ordering on equal timestamps
func TestScanTieBreaksLexically(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	writeSession(t, root, "zebra", "s.jsonl", ts)
	writeSession(t, root, "apple", "s.jsonl", ts)
	writeSession(t, root, "mango", "s.jsonl", ts)

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	want := []string{"apple", "mango", "zebra"}
	for i, name := range want {
		if projects[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, projects[i].Name)
		}
	}
}

// TestScanSkipsEmptyProjects tests that a directory with no readable session is omitted
func TestScanSkipsEmptyProjects(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "real", "s.jsonl", time.Now())
	if err := os.MkdirAll(filepath.Join(root, "hollow"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "real" {
		t.Errorf("expected only the real project, got %v", projects)
	}
}

// TestScanIgnoresNonSessionFiles tests the agent- and extension filters
func TestScanIgnoresNonSessionFiles(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "proj", "s.jsonl", time.Now())
	writeSession(t, root, "proj", "agent-xyz.jsonl", time.Now())
	dir := filepath.Join(root, "proj")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].SessionCount() != 1 {
		t.Errorf("expected 1 session after filtering, got %d", projects[0].SessionCount())
	}
}

// TestScanUsesSessionCwd tests that the recorded working directory wins as path
func TestScanUsesSessionCwd(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()
	dir := filepath.Join(root, "-munged-storage-name")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	line := `{"type":"user","message":{"role":"user","content":"hi"},"cwd":"` + cwd + `","timestamp":"2024-01-01T00:00:00Z"}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "s.jsonl"), []byte(line), 0644); err != nil {
		t.Fatalf("failed to write session file: %v", err)
	}
	md := "# Title\n\nThis file provides guidance to tooling.\n\nA scanner for session logs.\n"
	if err := os.WriteFile(filepath.Join(cwd, "CLAUDE.md"), []byte(md), 0644); err != nil {
		t.Fatalf("failed to write CLAUDE.md: %v", err)
	}

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].Path != cwd {
		t.Errorf("expected path %s, got %s", cwd, projects[0].Path)
	}
	if projects[0].Name != "-munged-storage-name" {
		t.Errorf("project name should stay the storage directory, got %s", projects[0].Name)
	}
	if projects[0].Description != "A scanner for session logs." {
		t.Errorf("expected description from CLAUDE.md, got %q", projects[0].Description)
	}
}

// TestScanSessionsNewestFirst tests per-project session ordering
func TestScanSessionsNewestFirst(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "proj", "old.jsonl", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	writeSession(t, root, "proj", "new.jsonl", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	projects, err := New(root).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	sessions := projects[0].Sessions
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "new" || sessions[1].ID != "old" {
		t.Errorf("expected newest session first, got %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if !projects[0].LastActivity().Equal(sessions[0].Modified) {
		t.Error("last activity should be the newest session mtime")
	}
}

// TestReadDescription tests the CLAUDE.md heuristics
func TestReadDescription(t *testing.T) {
	dir := t.TempDir()
	md := "# Heading\n\n## Build Commands\n"
	if err := os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte(md), 0644); err != nil {
		t.Fatalf("failed to write CLAUDE.md: %v", err)
	}
	if got := readDescription(dir); got != "Build Commands" {
		t.Errorf("expected section title, got %q", got)
	}
	if got := readDescription(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("missing CLAUDE.md should yield empty description, got %q", got)
	}
}
