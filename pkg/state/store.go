package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/persist"
)

// maxSaveAttempts bounds how often a mutation is replayed after another
// process wrote the stored state first.
const maxSaveAttempts = 3

// Saver persists a committed state.
type Saver interface {
	Save(ctx context.Context, s *model.RootState) error
}

// Source is a saver whose stored copy can also be written by other
// processes. A store backed by a Source reloads before every mutation.
type Source interface {
	Saver
	Changed(ctx context.Context) (bool, error)
	Hydrate(ctx context.Context) *model.RootState
}

// Change describes one committed mutation. State must be treated as read-only.
type Change struct {
	Op      string
	Version uint64
	State   *model.RootState
	SaveErr error
}

// Store owns the current RootState. Every mutation produces a new state
// value, commits it and writes it through the saver.
type Store struct {
	mu        sync.Mutex
	state     *model.RootState
	version   uint64
	saver     Saver
	logger    *zap.Logger
	validator *validator.Validate
	now       func() time.Time
	lastErr   error

	listenersMu sync.Mutex
	listeners   []func(Change)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store seeded with initial. The cached revenue total is
// recomputed so a hand-edited blob cannot carry a stale value.
func New(initial *model.RootState, saver Saver, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := initial.Clone()
	st.Income.TotalRevenue = st.Income.Revenue()

	s := &Store{
		state:     st,
		saver:     saver,
		logger:    logger,
		validator: validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() *model.RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version counts committed mutations since the store was created.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// LastSaveError returns the error of the most recent write, or nil if it
// succeeded.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers fn to be called after every commit.
func (s *Store) Subscribe(fn func(Change)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh reloads the state when another process has written a newer
// one. It reports whether anything was reloaded.
func (s *Store) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) bool {
	src, ok := s.saver.(Source)
	if !ok {
		return false
	}
	changed, err := src.Changed(ctx)
	if err != nil {
		s.logger.Warn("failed to check stored state", zap.Error(err))
		return false
	}
	if !changed {
		return false
	}
	st := src.Hydrate(ctx)
	st.Income.TotalRevenue = st.Income.Revenue()
	s.state = st
	s.logger.Info("reloaded state written elsewhere", zap.Int("week", st.CurrentWeek))
	return true
}

// mutate applies fn to a copy of the current state and commits the copy
// when fn reports a change.
func (s *Store) mutate(ctx context.Context, op string, fn func(next *model.RootState) bool) bool {
	_, ok := s.apply(ctx, op, func(cur *model.RootState) (*model.RootState, bool) {
		next := cur.Clone()
		return next, fn(next)
	})
	return ok
}

// apply builds the next state from the latest stored one and commits it.
// build must not modify cur. When the write loses against another process
// the state is reloaded and build runs again.
func (s *Store) apply(ctx context.Context, op string, build func(cur *model.RootState) (*model.RootState, bool)) (Change, bool) {
	s.mu.Lock()
	var change Change
	for attempt := 1; ; attempt++ {
		s.refreshLocked(ctx)
		next, ok := build(s.state)
		if !ok {
			s.mu.Unlock()
			s.logger.Debug("mutation ignored", zap.String("op", op))
			return Change{}, false
		}

		next.LastUpdated = s.now().UTC()
		next.SchemaVersion = model.CurrentSchemaVersion
		var err error
		if s.saver != nil {
			err = s.saver.Save(ctx, next)
		}
		if errors.Is(err, persist.ErrStale) && attempt < maxSaveAttempts {
			s.logger.Info("stored state changed underneath, retrying", zap.String("op", op), zap.Int("attempt", attempt))
			continue
		}
		change = s.commitLocked(op, next, err)
		break
	}
	s.mu.Unlock()

	s.notify(change)
	return change, true
}

func (s *Store) commitLocked(op string, next *model.RootState, err error) Change {
	s.state = next
	s.version++
	s.lastErr = err
	if err != nil {
		s.logger.Warn("failed to persist state", zap.String("op", op), zap.Uint64("version", s.version), zap.Error(err))
	}
	return Change{Op: op, Version: s.version, State: next, SaveErr: err}
}

func (s *Store) notify(c Change) {
	s.listenersMu.Lock()
	listeners := make([]func(Change), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}
