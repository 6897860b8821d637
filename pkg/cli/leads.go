package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/state"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newLeadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leads",
		Short: "List income leads and revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s := a.store.Snapshot()
				w := out(cmd)
				fmt.Fprintln(w, ui.Heading(ui.IconMoney, "Income"))
				fmt.Fprintln(w, ui.LabelValue("Revenue", fmt.Sprintf("%s / %s %s",
					metrics.FormatCurrency(s.Income.Revenue()),
					metrics.FormatCurrency(s.Income.TargetRevenue),
					ui.ProgressBar(metrics.RevenuePercent(s.Income), 20))))
				for i, l := range s.Income.Leads {
					fmt.Fprintf(w, "%d. %s %s %s %s %s\n", i+1, l.Name,
						ui.Muted.Render(l.Owner), ui.LeadText(l.Status), metrics.FormatCurrency(l.Value),
						ui.Muted.Render(shortID(l.ID)))
					if l.Notes != "" {
						fmt.Fprintf(w, "   %s\n", ui.Muted.Render(l.Notes))
					}
				}
				return nil
			})
		},
	}
}

func newLeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Add, update or delete a lead",
	}

	var in state.NewLead
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a cold lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := a.store.AddLead(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" lead added"), ui.Muted.Render(shortID(id)))
				return nil
			})
		},
	}
	add.Flags().StringVar(&in.Owner, "owner", "", "contact person")
	add.Flags().Int64Var(&in.Value, "value", 0, "deal value in rupiah")
	add.Flags().StringVar(&in.Notes, "notes", "", "free text notes")

	status := &cobra.Command{
		Use:   "status <lead> <Cold|Warm|Closed>",
		Short: "Change a lead's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var st model.LeadStatus
			if err := st.UnmarshalText([]byte(args[1])); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := resolveLead(a.store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if !a.store.SetLeadStatus(ctx, id, st) {
					fmt.Fprintln(out(cmd), ui.Muted.Render("lead already "+string(st)))
					return nil
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" status set to "+string(st)),
					ui.Muted.Render("revenue "+metrics.FormatCurrency(a.store.Snapshot().Income.Revenue())))
				return nil
			})
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <lead>",
		Short: "Delete a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := resolveLead(a.store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if !confirm(cmd, yes, "Delete this lead?") {
					fmt.Fprintln(out(cmd), ui.Muted.Render("cancelled"))
					return nil
				}
				a.store.DeleteLead(ctx, id)
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" lead deleted"))
				return nil
			})
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(add, status, del)
	return cmd
}

// resolveLead finds a lead by exact id, 1-based list position or unique id
// prefix, in that order.
func resolveLead(s *model.RootState, ref string) (model.ID, error) {
	leads := s.Income.Leads
	for _, l := range leads {
		if l.ID.String() == ref {
			return l.ID, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(leads) {
		return leads[n-1].ID, nil
	}

	var match []model.ID
	for _, l := range leads {
		if strings.HasPrefix(l.ID.String(), ref) {
			match = append(match, l.ID)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return "", fmt.Errorf("no lead %q", ref)
	default:
		return "", errors.New("lead reference is ambiguous, use more of the id")
	}
}

func shortID(id model.ID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
