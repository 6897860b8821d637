package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/persist"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the whole state as JSON (default " + persist.BackupFileName + ", - for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := persist.BackupFileName
			if len(args) == 1 {
				path = args[0]
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s := a.store.Snapshot()
				if path == "-" {
					return persist.Export(out(cmd), s)
				}
				if err := persist.ExportFile(path, s); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" exported to "+path))
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole state with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			incoming, err := persist.ImportFile(args[0])
			if err != nil {
				var ie *persist.ImportError
				if errors.As(err, &ie) {
					return fmt.Errorf("import rejected, nothing changed: %s", ie.Reason)
				}
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !confirm(cmd, yes, fmt.Sprintf("Replace all current data with %s (week %d)?", args[0], incoming.CurrentWeek)) {
					fmt.Fprintln(out(cmd), ui.Muted.Render("cancelled"))
					return nil
				}
				if err := a.store.ReplaceState(ctx, incoming); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" imported"), ui.LabelValue("week", incoming.CurrentWeek))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard everything and start again from the default plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !confirm(cmd, yes, "Reset ALL data to the default plan? This cannot be undone.") {
					fmt.Fprintln(out(cmd), ui.Muted.Render("cancelled"))
					return nil
				}
				if err := a.store.ResetToDefault(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" reset to defaults"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
