package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/export"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newWeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Manage the current week",
	}

	var yes bool
	finish := &cobra.Command{
		Use:   "finish",
		Short: "Archive this week's checklist score and start the next week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				entry, ok := a.store.FinishWeek(ctx, func(week int) bool {
					return confirm(cmd, yes, fmt.Sprintf("Finish week %d and reset the weekly checklist?", week))
				})
				if !ok {
					fmt.Fprintln(out(cmd), ui.Muted.Render("cancelled"))
					return nil
				}
				fmt.Fprintln(out(cmd), ui.Heading(ui.IconTrophy, fmt.Sprintf("Week %d archived", entry.Week)))
				fmt.Fprintln(out(cmd), ui.LabelValue("Score", fmt.Sprintf("%d%% (%d/%d)", entry.Score, entry.Stats.Completed, entry.Stats.Total)))
				fmt.Fprintln(out(cmd), ui.LabelValue("Now on week", a.store.Snapshot().CurrentWeek))
				return nil
			})
		},
	}
	finish.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(finish)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var showLog bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w := out(cmd)
				if showLog {
					logs, err := a.repo.ListRollovers(ctx, 0)
					if err != nil {
						return err
					}
					fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Rollover log"))
					for _, l := range logs {
						fmt.Fprintf(w, "%s week %d %d%% (%d/%d)\n", l.CreatedAt.In(a.cfg.Timezone).Format("2006-01-02 15:04"), l.Week, l.Score, l.Completed, l.Total)
					}
					return nil
				}
				history := a.store.Snapshot().WeeklyHistory
				fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Weekly history"))
				if len(history) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("no finished weeks yet"))
					return nil
				}
				for _, h := range history {
					fmt.Fprintf(w, "Week %-3d %s %s %3d%% %s\n", h.Week, ui.Muted.Render(fmt.Sprintf("%-10s", h.Date)),
						ui.ProgressBar(h.Score, 20), h.Score, ui.Muted.Render(fmt.Sprintf("(%d/%d)", h.Stats.Completed, h.Stats.Total)))
				}

				latest, err := a.repo.GetLatestRollover(ctx)
				if err != nil {
					return err
				}
				if latest != nil {
					fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf("last rollover recorded %s", latest.CreatedAt.In(a.cfg.Timezone).Format("2006-01-02 15:04"))))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showLog, "log", false, "show the rollover log recorded in the database")

	var format, output string
	exp := &cobra.Command{
		Use:   "export",
		Short: "Write the weekly history as a CSV or PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.Format(format)
			if !f.IsValid() {
				return fmt.Errorf("unknown format %q (csv or pdf)", format)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				data, err := export.History(a.store.Snapshot(), f)
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = "weekly_history." + format
				}
				if path == "-" {
					_, err := out(cmd).Write(data)
					return err
				}
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" wrote "+path))
				return nil
			})
		},
	}
	exp.Flags().StringVar(&format, "format", "csv", "csv or pdf")
	exp.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	cmd.AddCommand(exp)
	return cmd
}
