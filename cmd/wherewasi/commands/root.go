package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlane/wherewasi/internal/report"
	"github.com/rlane/wherewasi/internal/scan"
)

var (
	limitN      int
	markdownOut bool
	projectsDir string
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wherewasi",
		Short: "Report recent Claude Code sessions and projects",
		Long: `wherewasi scans your local Claude Code session logs and prints a
recency-ordered summary of project activity.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReport,
	}

	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects-dir", scan.DefaultRoot(),
		"directory containing per-project session logs")
	rootCmd.Flags().IntVarP(&limitN, "limit", "n", 0,
		"limit to NUM most recent projects (default: all)")
	rootCmd.Flags().BoolVarP(&markdownOut, "markdown", "m", false,
		"output in Markdown format")
	rootCmd.AddCommand(NewShowCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("limit") && limitN <= 0 {
		return fmt.Errorf("-n expects a positive integer, got %d", limitN)
	}

	projects, err := scan.New(projectsDir).Scan()
	if err != nil {
		return fmt.Errorf("failed to scan projects: %w", err)
	}

	if markdownOut {
		fmt.Fprintln(cmd.OutOrStdout(), report.Markdown(projects, limitN))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), report.Text(projects, limitN))
	}
	return nil
}
