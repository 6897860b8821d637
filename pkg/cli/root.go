// Package cli is the sempilot command line: a read view of the semester
// dashboard plus the commands that mutate it.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/ui"
)

const Version = "0.3.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sempilot",
		Short:         "Semester Pilot: a local-first semester dashboard",
		Long:          "Semester Pilot tracks academics, weekly checklists, projects, leads, health and the cyber roadmap for one semester, week by week.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd)
		},
	}
	root.Version = Version
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	root.AddCommand(
		newDashboardCmd(),
		newAcademicsCmd(),
		newCheckCmd(),
		newScheduleCmd(),
		newProjectsCmd(),
		newTaskCmd(),
		newBoardCmd(),
		newLeadsCmd(),
		newLeadCmd(),
		newHealthCmd(),
		newCyberCmd(),
		newWeekCmd(),
		newHistoryCmd(),
		newReviewCmd(),
		newExportCmd(),
		newImportCmd(),
		newResetCmd(),
		newBackupCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, cleanup, err := openAppFunc(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := fn(ctx, a); err != nil {
		return err
	}
	if err := a.store.LastSaveError(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn.Render(ui.IconWarn+" changes kept in memory only: "+err.Error()))
	}
	return nil
}

// confirm asks a yes/no question on the command's input. yes skips the
// prompt.
func confirm(cmd *cobra.Command, yes bool, question string) bool {
	if yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s ", ui.Warn.Render(question), ui.Muted.Render("[y/N]"))
	return readYes(cmd.InOrStdin())
}

func readYes(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya":
		return true
	default:
		return false
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
