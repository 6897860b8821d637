package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mklimuk/semester-pilot/pkg/ui"
)

func newCyberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cyber",
		Short: "Show the cybersecurity roadmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				r := a.store.Snapshot().CyberRoadmap
				w := out(cmd)
				fmt.Fprintln(w, ui.Heading(ui.IconShield, "Cyber Roadmap"))
				fmt.Fprintln(w, ui.H2.Render("Skills"))
				for i, s := range r.Skills {
					fmt.Fprintf(w, "%d. %-28s %s %d%%\n", i+1, s.Name, ui.ProgressBar(s.Level, 20), s.Level)
				}
				fmt.Fprintln(w, ui.H2.Render("Tools"))
				for i, t := range r.Tools {
					fmt.Fprintf(w, "%d. %s %s\n", i+1, ui.Check(t.Checked), t.Name)
				}
				fmt.Fprintln(w, ui.LabelValue("TryHackMe rooms", r.Progress.TryHackMeRooms))
				fmt.Fprintln(w, ui.LabelValue("Writeups", r.Progress.Writeups))
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tool <n>",
		Short: "Toggle the n-th tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("tool must be a number: %w", err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !a.store.ToggleTool(ctx, n-1) {
					return fmt.Errorf("no tool %d", n)
				}
				t := a.store.Snapshot().CyberRoadmap.Tools[n-1]
				fmt.Fprintln(out(cmd), ui.Check(t.Checked), t.Name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "skill <n> <level>",
		Short: "Set the n-th skill level (0-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("skill must be a number: %w", err)
			}
			level, err := strconv.Atoi(args[1])
			if err != nil || level < 0 || level > 100 {
				return fmt.Errorf("level must be a number 0-100")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				skills := a.store.Snapshot().CyberRoadmap.Skills
				if n < 1 || n > len(skills) {
					return fmt.Errorf("no skill %d", n)
				}
				a.store.SetSkillLevel(ctx, n-1, level)
				fmt.Fprintln(out(cmd), skills[n-1].Name, ui.ProgressBar(level, 20), fmt.Sprintf("%d%%", level))
				return nil
			})
		},
	})

	var rooms, writeups int
	progress := &cobra.Command{
		Use:   "progress",
		Short: "Update lab room and writeup counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p := a.store.Snapshot().CyberRoadmap.Progress
				if cmd.Flags().Changed("rooms") {
					p.TryHackMeRooms = rooms
				}
				if cmd.Flags().Changed("writeups") {
					p.Writeups = writeups
				}
				if p.TryHackMeRooms < 0 || p.Writeups < 0 {
					return fmt.Errorf("counters cannot be negative")
				}
				a.store.SetRoadmapProgress(ctx, p.TryHackMeRooms, p.Writeups)
				fmt.Fprintln(out(cmd), ui.LabelValue("rooms", p.TryHackMeRooms), ui.LabelValue("writeups", p.Writeups))
				return nil
			})
		},
	}
	progress.Flags().IntVar(&rooms, "rooms", 0, "TryHackMe rooms completed")
	progress.Flags().IntVar(&writeups, "writeups", 0, "writeups published")
	cmd.AddCommand(progress)

	return cmd
}
