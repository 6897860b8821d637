package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show the week at a glance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd)
		},
	}
}

func runDashboard(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		s := a.store.Snapshot()
		now := a.now()
		w := out(cmd)

		name := "there"
		if s.User != nil {
			name = s.User.Name
		}
		fmt.Fprintln(w, ui.Heading(ui.IconWave, fmt.Sprintf("Halo, %s", name)))
		if s.User != nil {
			fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf("%s · Semester %d · target IPK %.2f", s.User.University, s.User.Semester, s.User.TargetGPA)))
		}
		fmt.Fprintln(w, "")

		progress := metrics.ProgressPercent(s.Academics)
		fmt.Fprintln(w, ui.LabelValue("Minggu", s.CurrentWeek))
		fmt.Fprintln(w, ui.LabelValue("Progress", fmt.Sprintf("%s %d%%", ui.ProgressBar(progress, 20), progress)))

		burnout := metrics.BurnoutScore(s.Health.Logs)
		fmt.Fprintln(w, ui.LabelValue("Burnout", ui.Burnout(burnout, metrics.BurnoutHigh(burnout))))

		fmt.Fprintln(w, ui.LabelValue("Revenue", fmt.Sprintf("%s / %s (%d%%)",
			metrics.FormatCurrency(s.Income.Revenue()),
			metrics.FormatCurrency(s.Income.TargetRevenue),
			metrics.RevenuePercent(s.Income))))
		fmt.Fprintln(w, "")

		day := metrics.CurrentWeekday(now)
		fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s Hari ini (%s)", ui.IconCalendar, day)))
		items := metrics.TodaySchedule(s, now)
		if len(items) == 0 {
			fmt.Fprintln(w, ui.Muted.Render("(kosong)"))
		}
		for _, it := range items {
			fmt.Fprintf(w, "- %s %s %s\n", ui.Key.Render(it.Time), it.Activity, ui.Muted.Render(string(it.Type)))
		}
		return nil
	})
}
