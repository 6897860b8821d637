package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newHealthCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show burnout risk, recent logs and warning signs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s := a.store.Snapshot()
				w := out(cmd)
				score := metrics.BurnoutScore(s.Health.Logs)
				fmt.Fprintln(w, ui.Heading(ui.IconHeart, "Health"))
				fmt.Fprintln(w, ui.LabelValue("Burnout", ui.Burnout(score, metrics.BurnoutHigh(score))))

				logs := s.Health.Logs
				if limit > 0 && len(logs) > limit {
					logs = logs[:limit]
				}
				if len(logs) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("no logs yet, add one with: sempilot health log"))
				}
				for _, l := range logs {
					fmt.Fprintf(w, "- %s sleep %.1fh · mood %d · stress %d\n", ui.Key.Render(l.Date), l.Sleep, l.Mood, l.Stress)
				}

				groups := make([]string, 0, len(s.Health.Checklist))
				for g := range s.Health.Checklist {
					groups = append(groups, g)
				}
				sort.Strings(groups)
				for _, g := range groups {
					fmt.Fprintf(w, "%s %s\n", ui.H2.Render(g+":"), strings.Join(s.Health.Checklist[g], ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 7, "number of logs to show (0 for all)")
	cmd.AddCommand(newHealthLogCmd())
	return cmd
}

func newHealthLogCmd() *cobra.Command {
	var entry model.LogEntry
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record today's sleep, mood and stress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"sleep", "mood", "stress"} {
				if !cmd.Flags().Changed(name) {
					return fmt.Errorf("--%s is required", name)
				}
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.AppendHealthLog(ctx, entry); err != nil {
					return err
				}
				score := metrics.BurnoutScore(a.store.Snapshot().Health.Logs)
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" logged"), ui.LabelValue("burnout", ui.Burnout(score, metrics.BurnoutHigh(score))))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&entry.Sleep, "sleep", 0, "hours slept (0-24)")
	cmd.Flags().IntVar(&entry.Mood, "mood", 0, "mood 0-10")
	cmd.Flags().IntVar(&entry.Stress, "stress", 0, "stress 0-10")
	cmd.Flags().StringVar(&entry.Date, "date", "", "date as d/m/yyyy (default today)")
	return cmd
}
