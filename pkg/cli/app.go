package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/chat"
	"github.com/mklimuk/semester-pilot/pkg/config"
	"github.com/mklimuk/semester-pilot/pkg/db"
	"github.com/mklimuk/semester-pilot/pkg/logger"
	"github.com/mklimuk/semester-pilot/pkg/persist"
	"github.com/mklimuk/semester-pilot/pkg/state"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	repo    *db.Repository
	gateway *persist.Gateway
	store   *state.Store
	now     func() time.Time

	// notifier is set by serve when bots are connected.
	mu       sync.RWMutex
	notifier chat.Notifier
}

func (a *app) setNotifier(n chat.Notifier) {
	a.mu.Lock()
	a.notifier = n
	a.mu.Unlock()
}

func (a *app) currentNotifier() chat.Notifier {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notifier
}

// openAppFunc builds the app; tests swap it for an in-memory one.
var openAppFunc = openApp

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	database, err := db.NewDB(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.InitSchema(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to init schema: %w", err)
	}
	repo := db.NewRepository(database)

	now := func() time.Time { return time.Now().In(cfg.Timezone) }
	gw := persist.NewGateway(repo, log,
		persist.WithKey(cfg.Storage.Key),
		persist.WithMergeDepth(cfg.Storage.MergeDepth),
		persist.WithClock(now),
	)

	a := newApp(ctx, cfg, log, repo, gw, now)
	cleanup := func() {
		_ = log.Sync()
		_ = database.Close()
	}
	return a, cleanup, nil
}

// newApp hydrates the store and subscribes the rollover log.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, repo *db.Repository, gw *persist.Gateway, now func() time.Time) *app {
	a := &app{
		cfg:     cfg,
		logger:  log,
		repo:    repo,
		gateway: gw,
		now:     now,
	}
	a.store = state.New(gw.Hydrate(ctx), gw, log, state.WithClock(now))
	a.store.Subscribe(a.onChange)
	return a
}

func (a *app) onChange(c state.Change) {
	if c.Op != "finish_week" || len(c.State.WeeklyHistory) == 0 {
		return
	}
	entry := c.State.WeeklyHistory[0]
	ctx := context.Background()
	if err := a.repo.LogRollover(ctx, entry.Week, entry.Score, entry.Stats.Completed, entry.Stats.Total); err != nil {
		a.logger.Warn("failed to log rollover", zap.Int("week", entry.Week), zap.Error(err))
	}
	if n := a.currentNotifier(); n != nil {
		if err := n.Notify(ctx, chat.WeeklySummary(entry, c.State)); err != nil {
			a.logger.Warn("failed to send weekly summary", zap.Error(err))
		}
	}
}
