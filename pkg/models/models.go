package models

import "time"

// Session represents one logged Claude Code session
type Session struct {
	ID          string
	ProjectPath string
	Summary     string // Summary record or truncated first user message
	FirstPrompt string
	Created     time.Time // First embedded timestamp, best effort
	Modified    time.Time // Transcript file mtime
	Resumed     bool      // Whether this session was resumed/continued
}

// Project represents a project with aggregated session information
type Project struct {
	Name        string
	Path        string
	Description string
	Sessions    []Session // Sorted newest first
}

// LastActivity returns the most recent session modification time
func (p Project) LastActivity() time.Time {
	var last time.Time
	for _, s := range p.Sessions {
		if s.Modified.After(last) {
			last = s.Modified
		}
	}
	return last
}

// SessionCount returns the number of sessions recorded for the project
func (p Project) SessionCount() int {
	return len(p.Sessions)
}
