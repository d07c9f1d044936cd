package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rlane/wherewasi/pkg/models"
)

const timeLayout = "2006-01-02 15:04"

// NoActivity is printed instead of an empty table.
const NoActivity = "No activity found."

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Limit returns the first n projects, or all of them when n is not positive
// or exceeds the set.
func Limit(projects []models.Project, n int) []models.Project {
	if n <= 0 || n >= len(projects) {
		return projects
	}
	return projects[:n]
}

// Text renders the projects as an aligned terminal table, most recent
// first. The input is expected to be sorted already.
func Text(projects []models.Project, limit int) string {
	projects = Limit(projects, limit)
	if len(projects) == 0 {
		return NoActivity
	}

	nameWidth := len("PROJECT")
	for _, p := range projects {
		if w := lipgloss.Width(p.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	header := fmt.Sprintf("%-*s  %-*s  %8s  %s",
		nameWidth, "PROJECT", len(timeLayout), "LAST ACTIVITY", "SESSIONS", "PATH")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, p := range projects {
		b.WriteString(fmt.Sprintf("%-*s  %-*s  %8d  %s\n",
			nameWidth, p.Name,
			len(timeLayout), p.LastActivity().Format(timeLayout),
			p.SessionCount(),
			pathStyle.Render(ShortPath(p.Path))))
		if desc := describe(p); desc != "" {
			b.WriteString(fmt.Sprintf("%-*s  %s\n",
				nameWidth, "", descStyle.Render(desc)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Markdown renders the projects as a Markdown table with the same set and
// order as the text report.
func Markdown(projects []models.Project, limit int) string {
	projects = Limit(projects, limit)
	if len(projects) == 0 {
		return NoActivity
	}

	var b strings.Builder
	b.WriteString("# Where Was I?\n\n")
	b.WriteString("| Project | Last Activity | Sessions |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, p := range projects {
		b.WriteString(fmt.Sprintf("| %s | %s | %d |\n",
			p.Name, p.LastActivity().Format(timeLayout), p.SessionCount()))
	}

	return strings.TrimRight(b.String(), "\n")
}

// describe picks a one-line descriptor for a project: its CLAUDE.md
// description when one exists, otherwise the newest session's summary or
// first prompt.
func describe(p models.Project) string {
	if p.Description != "" {
		return p.Description
	}
	if len(p.Sessions) == 0 {
		return ""
	}
	newest := p.Sessions[0]
	if newest.Summary != "" {
		return truncate(newest.Summary, 70)
	}
	if newest.FirstPrompt != "" {
		return fmt.Sprintf("%q", truncate(newest.FirstPrompt, 70))
	}
	return ""
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// ShortPath replaces the home directory prefix with ~.
func ShortPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}
