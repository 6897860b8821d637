package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newAcademicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "academics [subject]",
		Short: "List subjects, or show one subject in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s := a.store.Snapshot()
				w := out(cmd)
				if len(args) == 0 {
					fmt.Fprintln(w, ui.Heading(ui.IconBook, "Akademik"))
					for _, sub := range s.Academics {
						done, total := sub.ChecklistCounts()
						fmt.Fprintf(w, "- %s %s %s %s\n",
							ui.Key.Render(sub.ID), sub.Name,
							ui.Muted.Render(fmt.Sprintf("(%d SKS, target %s)", sub.Credits, sub.TargetGrade)),
							fmt.Sprintf("%d/%d", done, total))
					}
					return nil
				}

				sub := findSubject(s, args[0])
				if sub == nil {
					return fmt.Errorf("unknown subject %q", args[0])
				}
				printSubject(cmd, sub)
				return nil
			})
		},
	}
}

func printSubject(cmd *cobra.Command, sub *model.Subject) {
	w := out(cmd)
	fmt.Fprintln(w, ui.Heading(ui.IconBook, sub.Name))
	fmt.Fprintln(w, ui.LabelValue("SKS", sub.Credits))
	fmt.Fprintln(w, ui.LabelValue("Target", fmt.Sprintf("%s (%.1f)", sub.TargetGrade, sub.Target)))
	fmt.Fprintln(w, ui.LabelValue("Nilai saat ini", sub.CurrentScore))

	keys := make([]string, 0, len(sub.Weight))
	for k := range sub.Weight {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, ui.H2.Render("Bobot"))
	for _, k := range keys {
		fmt.Fprintf(w, "- %s %.0f%%\n", k, sub.Weight[k])
	}
	if total := sub.WeightTotal(); total != 100 {
		fmt.Fprintln(w, ui.Warn.Render(fmt.Sprintf("%s weights sum to %.0f%%", ui.IconWarn, total)))
	}

	fmt.Fprintln(w, ui.H2.Render("Checklist mingguan"))
	for _, it := range sub.WeeklyChecklist {
		fmt.Fprintf(w, "%s %s %s\n", ui.Check(it.Done), ui.Muted.Render(it.ID.String()), it.Text)
	}
	fmt.Fprintln(w, ui.H2.Render("Strategi"))
	for _, it := range sub.Strategies {
		fmt.Fprintf(w, "%s %s %s\n", ui.Check(it.Done), ui.Muted.Render(it.ID.String()), it.Text)
	}
	if sub.Risks != "" {
		fmt.Fprintln(w, ui.LabelValue("Risiko", sub.Risks))
	}
}

func findSubject(s *model.RootState, id string) *model.Subject {
	for i := range s.Academics {
		if s.Academics[i].ID == id {
			return &s.Academics[i]
		}
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	var strategy bool
	cmd := &cobra.Command{
		Use:   "check <subject> <item>",
		Short: "Toggle a weekly checklist item (or a strategy with --strategy)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.ListWeekly
			if strategy {
				kind = model.ListStrategy
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !a.store.ToggleChecklistItem(ctx, args[0], model.ID(args[1]), kind) {
					return fmt.Errorf("no %s item %s in subject %s", kind, args[1], args[0])
				}
				sub := findSubject(a.store.Snapshot(), args[0])
				done, total := sub.ChecklistCounts()
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" updated"), ui.Muted.Render(fmt.Sprintf("(%s %d/%d)", sub.ID, done, total)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strategy, "strategy", false, "toggle a strategy instead of a weekly item")
	return cmd
}
