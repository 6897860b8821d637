package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/automation"
	"github.com/mklimuk/semester-pilot/pkg/chat"
	"github.com/mklimuk/semester-pilot/pkg/integration/discord"
	"github.com/mklimuk/semester-pilot/pkg/integration/telegram"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

// startBots connects the configured chat bots and returns them as one
// notifier plus a stop function. Tests swap it.
var startBots = func(ctx context.Context, a *app, handler *chat.Handler) (chat.Multi, func(), error) {
	var notifiers chat.Multi
	var stops []func()
	stopAll := func() {
		for _, stop := range stops {
			stop()
		}
	}

	if a.cfg.Telegram.Token != "" && a.cfg.Telegram.ChatID != 0 {
		bot, err := telegram.NewBot(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, handler, a.logger)
		if err != nil {
			return nil, stopAll, err
		}
		if err := bot.Start(ctx); err != nil {
			return nil, stopAll, err
		}
		stops = append(stops, bot.Stop)
		notifiers = append(notifiers, bot)
		a.logger.Info("telegram bot connected", zap.Int64("chat_id", a.cfg.Telegram.ChatID))
	}

	if a.cfg.Discord.Token != "" && a.cfg.Discord.ChannelID != "" {
		bot, err := discord.NewBot(a.cfg.Discord.Token, a.cfg.Discord.ChannelID, handler, a.logger)
		if err != nil {
			return nil, stopAll, err
		}
		if err := bot.Start(ctx); err != nil {
			return nil, stopAll, err
		}
		stops = append(stops, func() {
			if err := bot.Stop(); err != nil {
				a.logger.Warn("failed to close discord session", zap.Error(err))
			}
		})
		notifiers = append(notifiers, bot)
		a.logger.Info("discord bot connected", zap.String("channel_id", a.cfg.Discord.ChannelID))
	}
	return notifiers, stopAll, nil
}

// registerJobs adds the nightly backup and the weekly evaluation reminder.
func registerJobs(a *app, sched *automation.Service, handler *chat.Handler) error {
	if err := sched.Register("backup", a.cfg.Automation.BackupCron, func(ctx context.Context) error {
		res, err := runBackup(ctx, a, backupOptions{git: true})
		if err != nil {
			return err
		}
		a.logger.Info("backup written", zap.String("path", res.Path), zap.String("commit", res.Commit))
		return nil
	}); err != nil {
		return err
	}

	return sched.Register("reminder", a.cfg.Automation.ReminderCron, func(ctx context.Context) error {
		n := a.currentNotifier()
		if n == nil {
			return nil
		}
		status := handler.Handle(ctx, "status", "")
		text := "Weekly evaluation is due.\n\n" + status + "\n\n" + chat.FinishPrompt(a.store.Snapshot().CurrentWeek)
		return n.Notify(ctx, text)
	})
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat bots and scheduled jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				handler := chat.NewHandler(a.store, a.now)
				notifiers, stopBots, err := startBots(ctx, a, handler)
				defer stopBots()
				if err != nil {
					return fmt.Errorf("failed to start bots: %w", err)
				}
				if len(notifiers) > 0 {
					a.setNotifier(notifiers)
				} else {
					a.logger.Warn("no chat bot configured, notifications are off")
				}

				sched := automation.NewService(a.logger, a.cfg.Automation.PollInterval, a.cfg.Timezone)
				if err := registerJobs(a, sched, handler); err != nil {
					return err
				}
				for name, next := range sched.NextRuns() {
					fmt.Fprintln(out(cmd), ui.LabelValue(name, next.Format("Mon 2006-01-02 15:04")))
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconInfo+" serving, press Ctrl+C to stop"))

				sched.Run(ctx)
				a.logger.Info("shutting down")
				return nil
			})
		},
	}
}
