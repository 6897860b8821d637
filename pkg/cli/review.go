package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/ai"
	"github.com/mklimuk/semester-pilot/pkg/review"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

// newGenerator is swapped in tests.
var newGenerator = func(ctx context.Context, a *app) (ai.Generator, func(), error) {
	client, err := ai.NewClient(ctx, a.cfg.Review.GeminiAPIKey, a.cfg.Review.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func newReviewCmd() *cobra.Command {
	var noAI bool
	var templateDir string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write a weekly review note for the last finished week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				svc := review.NewService(a.cfg.Review.Dir, review.NewTemplateEngine(templateDir), a.logger)
				if !noAI && a.cfg.Review.GeminiAPIKey != "" {
					gen, closeGen, err := newGenerator(ctx, a)
					if err != nil {
						a.logger.Warn("ai insights disabled", zap.Error(err))
					} else {
						defer closeGen()
						svc.WithAI(gen, a.cfg.Review.GeminiModel, a.cfg.Review.Timeout)
					}
				}

				path, err := svc.Write(ctx, a.store.Snapshot())
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" review written"), path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip AI insights")
	cmd.Flags().StringVar(&templateDir, "templates", "", "directory with a weekly-review.md template")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List written review notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				reviews, err := review.ListReviews(a.cfg.Review.Dir)
				if err != nil {
					return err
				}
				if len(reviews) == 0 {
					fmt.Fprintln(out(cmd), ui.Muted.Render("no reviews in "+a.cfg.Review.Dir))
				}
				for _, r := range reviews {
					fmt.Fprintf(out(cmd), "Week %-3d %s %3d%% burnout %.1f\n", r.Week, ui.Muted.Render(r.Created), r.Score, r.Burnout)
				}
				return nil
			})
		},
	})
	return cmd
}
