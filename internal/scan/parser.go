package scan

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rlane/wherewasi/pkg/models"
)

// Parser extracts session metadata from a single transcript file. The file
// schema belongs to the tool writing the logs, so it stays behind this
// interface.
type Parser interface {
	ParseFile(path string) (models.Session, error)
}

// jsonLine is one record in a newline-delimited JSON transcript. Only the
// fields needed for the report are declared; everything else is ignored.
type jsonLine struct {
	Type      string `json:"type"`
	Cwd       string `json:"cwd"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		// Content is a plain string for typed prompts and an array of
		// blocks for tool results, so it has to stay raw here.
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// JSONLParser reads the newline-delimited JSON transcript format that
// Claude Code writes under its projects directory.
type JSONLParser struct{}

// ParseFile extracts session metadata from a JSONL transcript. The file
// mtime is authoritative for recency; content parsing is best effort and
// malformed lines are skipped. Reading stops once all head fields are known.
func (JSONLParser) ParseFile(path string) (models.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Session{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{
		ID:       strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		Modified: info.ModTime(),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		var line jsonLine
		if json.Unmarshal(scanner.Bytes(), &line) != nil {
			continue
		}

		if sess.Created.IsZero() && line.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339, line.Timestamp); err == nil {
				sess.Created = t
			}
		}

		switch line.Type {
		case "summary":
			if sess.Summary == "" && line.Summary != "" {
				sess.Summary = line.Summary
			}
		case "user":
			if sess.ProjectPath == "" && line.Cwd != "" {
				sess.ProjectPath = line.Cwd
			}
			if sess.FirstPrompt == "" {
				var content string
				if json.Unmarshal(line.Message.Content, &content) == nil && content != "" {
					sess.FirstPrompt = content
				}
			}
		}

		if sess.Summary != "" && sess.FirstPrompt != "" && !sess.Created.IsZero() {
			break
		}
	}

	return sess, nil
}
