package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/tui"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects and their tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w := out(cmd)
				for _, p := range a.store.Snapshot().Projects {
					fmt.Fprintf(w, "%s %s %s\n", ui.Heading(ui.IconBox, p.Title), ui.Muted.Render(p.ID+" · "+p.Category), ui.StatusText(p.Status))
					for _, t := range p.Tasks {
						fmt.Fprintf(w, "  - %s %s %s\n", ui.Muted.Render(t.ID), t.Title, ui.StatusText(t.Status))
					}
				}
				return nil
			})
		},
	}
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with project tasks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "move <project> <task> <forward|backward>",
		Short: "Move a task one kanban column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := model.ParseDirection(args[2])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !a.store.MoveTask(ctx, args[0], args[1], dir) {
					return fmt.Errorf("task %s in %s cannot move %s", args[1], args[0], dir)
				}
				for _, p := range a.store.Snapshot().Projects {
					for _, t := range p.Tasks {
						if p.ID == args[0] && t.ID == args[1] {
							fmt.Fprintf(out(cmd), "%s %s → %s\n", ui.IconDone, t.Title, ui.StatusText(t.Status))
						}
					}
				}
				return nil
			})
		},
	})
	return cmd
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive project kanban",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return tui.RunBoard(ctx, a.store, out(cmd))
			})
		},
	}
}
