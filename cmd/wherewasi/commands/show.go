package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rlane/wherewasi/internal/report"
	"github.com/rlane/wherewasi/internal/scan"
	"github.com/rlane/wherewasi/internal/sessions"
	"github.com/rlane/wherewasi/pkg/models"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project] [session-id]",
		Short: "Show projects, sessions, or messages",
		Long: `Show projects, sessions, or messages.
Without arguments: the project activity report
With a project name: all sessions recorded for that project
With a project name and session ID: recent messages of that session`,
		Args: cobra.MaximumNArgs(2),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return runReport(cmd, nil)
	case 1:
		return showSessions(cmd, args[0])
	default:
		return showMessages(cmd, args[0], args[1])
	}
}

// findProject matches a scanned project by name or working directory.
func findProject(name string) (*models.Project, error) {
	projects, err := scan.New(projectsDir).Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	for _, project := range projects {
		if project.Name == name || project.Path == name {
			p := project
			return &p, nil
		}
	}
	return nil, fmt.Errorf("project '%s' not found", name)
}

// usesStorageDir reports whether the project path is still the scan-root
// storage directory, meaning no transcript recorded a working directory.
func usesStorageDir(p models.Project, root string) bool {
	return p.Path == filepath.Join(root, p.Name)
}

// loadSessions fetches a project's sessions by working directory, falling
// back to the storage-directory match for cwd-less projects so the drill
// down agrees with the report on the session set.
func loadSessions(store *sessions.Store, project *models.Project) ([]models.Session, error) {
	if usesStorageDir(*project, projectsDir) {
		return store.SessionsForDirectory(project.Path)
	}
	return store.SessionsForProject(project.Path)
}

func showSessions(cmd *cobra.Command, projectName string) error {
	project, err := findProject(projectName)
	if err != nil {
		return err
	}

	store := sessions.NewStore(projectsDir)
	projectSessions, err := loadSessions(store, project)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(projectSessions) == 0 {
		fmt.Fprintf(out, "No sessions found for project '%s'\n", project.Name)
		return nil
	}

	fmt.Fprintf(out, "Sessions for project '%s'\n", project.Name)
	fmt.Fprintf(out, "Path: %s\n\n", report.ShortPath(project.Path))
	for i, sess := range projectSessions {
		fmt.Fprintf(out, "%d. %s  %s", i+1, sess.Modified.Format("2006-01-02 15:04"), sess.ID)
		if sess.Resumed {
			fmt.Fprint(out, "  (resumed)")
		}
		fmt.Fprintln(out)
		if sess.Summary != "" {
			fmt.Fprintf(out, "   %s\n", sess.Summary)
		}
	}
	return nil
}

func showMessages(cmd *cobra.Command, projectName, sessionID string) error {
	project, err := findProject(projectName)
	if err != nil {
		return err
	}

	store := sessions.NewStore(projectsDir)
	projectSessions, err := loadSessions(store, project)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	found := false
	for _, sess := range projectSessions {
		if sess.ID == sessionID {
			found = true
			break
		}
	}
	if !found {
		fmt.Fprintf(out, "Session '%s' not found in project '%s'\n", sessionID, project.Name)
		fmt.Fprintln(out, "\nAvailable sessions:")
		for i, sess := range projectSessions {
			if i >= 10 {
				fmt.Fprintf(out, "... and %d more sessions\n", len(projectSessions)-10)
				break
			}
			fmt.Fprintf(out, "  - %s (last activity: %s)\n", sess.ID, sess.Modified.Format("2006-01-02 15:04"))
		}
		return nil
	}

	messages, err := store.RecentMessages(sessionID)
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}
	if len(messages) == 0 {
		fmt.Fprintf(out, "No messages found for session '%s'\n", sessionID)
		return nil
	}

	fmt.Fprintf(out, "Recent messages for session '%s' in project '%s':\n", sessionID, project.Name)
	for _, msg := range messages {
		fmt.Fprintf(out, "\n%s\n", msg)
	}
	return nil
}
