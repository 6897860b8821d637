package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/integration/calendar"
	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

// newCalendarAPI is swapped in tests.
var newCalendarAPI = func(ctx context.Context, a *app) (calendar.CalendarAPI, error) {
	if a.cfg.Google.CredentialsFile == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_FILE is not set")
	}
	return calendar.NewService(ctx, a.cfg.Google.CredentialsFile, a.cfg.Google.CalendarID)
}

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [day]",
		Short: "Show the schedule for a day (default today) or the whole week with --week",
		Args:  cobra.MaximumNArgs(1),
	}
	var week bool
	cmd.Flags().BoolVar(&week, "week", false, "show every day")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			s := a.store.Snapshot()
			if week {
				for _, day := range model.WeekOrder {
					printDay(cmd, day, s.Schedule[day])
				}
				return nil
			}
			day := metrics.CurrentWeekday(a.now())
			if len(args) == 1 {
				d, err := parseDay(args[0])
				if err != nil {
					return err
				}
				day = d
			}
			printDay(cmd, day, s.Schedule[day])
			return nil
		})
	}

	cmd.AddCommand(newScheduleLinkCmd(), newSchedulePushCmd())
	return cmd
}

func printDay(cmd *cobra.Command, day model.Weekday, items []model.ScheduleItem) {
	w := out(cmd)
	fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s %s", ui.IconCalendar, day)))
	if len(items) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(kosong)"))
	}
	for i, it := range items {
		fmt.Fprintf(w, "%d. %s %s %s\n", i+1, ui.Key.Render(it.Time), it.Activity, ui.Muted.Render(string(it.Type)))
	}
}

// parseDay accepts the Indonesian day name in any case.
func parseDay(s string) (model.Weekday, error) {
	for _, d := range model.WeekOrder {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q (use Senin..Minggu)", s)
}

func newScheduleLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <day> <n>",
		Short: "Print a Google Calendar link for the n-th slot of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("slot must be a number: %w", err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				items := a.store.Snapshot().Schedule[day]
				if n < 1 || n > len(items) {
					return fmt.Errorf("%s has %d slots", day, len(items))
				}
				it := items[n-1]
				link, err := calendar.EventLink(it.Activity, day, it.Time, a.now(), a.cfg.Google.CalendarDetails)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), link)
				return nil
			})
		},
	}
}

func newSchedulePushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <day>",
		Short: "Create calendar events for every slot of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				api, err := newCalendarAPI(ctx, a)
				if err != nil {
					return err
				}
				pusher := calendar.NewPusher(api, a.cfg.Google.CalendarDetails, a.logger)
				results, err := pusher.PushDay(ctx, day, a.store.Snapshot().Schedule[day], a.now())
				if err != nil {
					return err
				}

				w := out(cmd)
				var failed int
				for _, r := range results {
					label := fmt.Sprintf("%s %s", r.Item.Time, r.Item.Activity)
					switch {
					case r.Err != nil:
						failed++
						fmt.Fprintln(w, ui.Bad.Render("✗ "+label+": "+r.Err.Error()))
					case r.Skipped:
						fmt.Fprintln(w, ui.Muted.Render("= "+label+" (already there)"))
					default:
						fmt.Fprintln(w, ui.Good.Render("+ "+label))
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d events failed", failed, len(results))
				}
				return nil
			})
		},
	}
}
