package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rlane/wherewasi/pkg/models"
)

// Scanner walks a projects root and aggregates session activity per project.
// It never writes anything.
type Scanner struct {
	root   string
	parser Parser
}

// New creates a scanner over the given projects root using the default
// JSONL parser.
func New(root string) *Scanner {
	return &Scanner{root: root, parser: JSONLParser{}}
}

// NewWithParser creates a scanner with a custom session parser.
func NewWithParser(root string, parser Parser) *Scanner {
	return &Scanner{root: root, parser: parser}
}

// DefaultRoot returns the well-known Claude Code projects directory.
func DefaultRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// Scan enumerates one project per subdirectory of the root and returns the
// projects ordered by descending last activity, ties broken by name. A
// missing root means no activity and is not an error; a root that exists
// but cannot be read is.
func (s *Scanner) Scan() ([]models.Project, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory %s: %w", s.root, err)
	}

	var projects []models.Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if project, ok := s.scanProject(entry.Name()); ok {
			projects = append(projects, project)
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		a, b := projects[i].LastActivity(), projects[j].LastActivity()
		if !a.Equal(b) {
			return a.After(b)
		}
		return projects[i].Name < projects[j].Name
	})

	return projects, nil
}

// scanProject reads one project subdirectory. Projects with no readable
// session file are dropped; so are individual files that fail to parse.
func (s *Scanner) scanProject(name string) (models.Project, bool) {
	dir := filepath.Join(s.root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.Project{}, false
	}

	project := models.Project{Name: name, Path: dir}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		// agent- files are sidecar transcripts spawned from a session,
		// not sessions of their own.
		if strings.HasPrefix(entry.Name(), "agent-") {
			continue
		}
		sess, err := s.parser.ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		project.Sessions = append(project.Sessions, sess)
	}

	if len(project.Sessions) == 0 {
		return models.Project{}, false
	}

	sort.Slice(project.Sessions, func(i, j int) bool {
		return project.Sessions[i].Modified.After(project.Sessions[j].Modified)
	})

	// The recorded working directory is a friendlier identity than the
	// munged storage directory name.
	for _, sess := range project.Sessions {
		if sess.ProjectPath != "" {
			project.Path = sess.ProjectPath
			break
		}
	}
	project.Description = readDescription(project.Path)

	return project, true
}

// readDescription pulls the first meaningful line out of the project's
// CLAUDE.md, skipping the title and the generated boilerplate. A section
// heading contributes its title.
func readDescription(projectPath string) string {
	data, err := os.ReadFile(filepath.Join(projectPath, "CLAUDE.md"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "# ") {
			continue
		}
		if strings.HasPrefix(line, "This file provides guidance") {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			return strings.TrimSpace(line[3:])
		}
		return line
	}
	return ""
}
