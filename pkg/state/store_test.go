package state

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/dataset"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/persist"
)

var fixedNow = time.Date(2026, 3, 7, 20, 45, 0, 0, time.UTC)

type recordingSaver struct {
	saved []*model.RootState
	err   error
}

func (r *recordingSaver) Save(_ context.Context, s *model.RootState) error {
	r.saved = append(r.saved, s.Clone())
	return r.err
}

func newStore(t *testing.T) (*Store, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	st := New(dataset.Build(fixedNow), saver, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
	return st, saver
}

func TestToggleChecklistItem(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()

	require.True(t, st.ToggleChecklistItem(ctx, "mk_a", "w2", model.ListWeekly))
	assert.True(t, st.Snapshot().Academics[0].WeeklyChecklist[1].Done)

	require.True(t, st.ToggleChecklistItem(ctx, "mk_a", "w2", model.ListWeekly))
	assert.False(t, st.Snapshot().Academics[0].WeeklyChecklist[1].Done)

	require.True(t, st.ToggleChecklistItem(ctx, "mk_c", "1", model.ListStrategy))
	assert.True(t, st.Snapshot().Academics[2].Strategies[0].Done)

	assert.Len(t, saver.saved, 3, "one write per change")
	assert.Equal(t, uint64(3), st.Version())
}

func TestToggleChecklistItemUnknownIDsAreNoOps(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()
	before := st.Snapshot()

	assert.False(t, st.ToggleChecklistItem(ctx, "mk_zz", "w1", model.ListWeekly))
	assert.False(t, st.ToggleChecklistItem(ctx, "mk_a", "w99", model.ListWeekly))
	assert.False(t, st.ToggleChecklistItem(ctx, "mk_a", "w1", model.ListKind("risks")))

	assert.Empty(t, saver.saved)
	assert.Equal(t, before, st.Snapshot())
}

func TestMoveTaskIsClampedAndAdjacent(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	status := func() model.TaskStatus {
		return findTask(st.Snapshot(), "p1", "t3").Status
	}

	require.Equal(t, model.StatusTodo, status())
	assert.False(t, st.MoveTask(ctx, "p1", "t3", model.Backward), "cannot move before To Do")

	assert.True(t, st.MoveTask(ctx, "p1", "t3", model.Forward))
	assert.Equal(t, model.StatusInProgress, status())
	assert.True(t, st.MoveTask(ctx, "p1", "t3", model.Forward))
	assert.Equal(t, model.StatusDone, status())
	assert.False(t, st.MoveTask(ctx, "p1", "t3", model.Forward), "cannot move past Done")
	assert.Equal(t, model.StatusDone, status())

	assert.True(t, st.MoveTask(ctx, "p1", "t3", model.Backward))
	assert.Equal(t, model.StatusInProgress, status())

	assert.False(t, st.MoveTask(ctx, "p9", "t3", model.Forward))
	assert.False(t, st.MoveTask(ctx, "p1", "t3", model.Direction("up")))
}

func TestMoveTaskRandomWalkStaysInBounds(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	order := map[model.TaskStatus]int{model.StatusTodo: 0, model.StatusInProgress: 1, model.StatusDone: 2}

	prev := findTask(st.Snapshot(), "p2", "t2").Status
	for i := 0; i < 200; i++ {
		dir := model.Forward
		if rng.Intn(2) == 0 {
			dir = model.Backward
		}
		st.MoveTask(ctx, "p2", "t2", dir)
		cur := findTask(st.Snapshot(), "p2", "t2").Status
		require.True(t, cur.IsValid())
		diff := order[cur] - order[prev]
		require.True(t, diff >= -1 && diff <= 1, "moved from %s to %s", prev, cur)
		prev = cur
	}
}

func TestAddLead(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()

	id, err := st.AddLead(ctx, NewLead{Name: "  Bengkel Jaya ", Owner: "Pak Joko", Value: 750000})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	leads := st.Snapshot().Income.Leads
	require.Len(t, leads, 3)
	added := leads[2]
	assert.Equal(t, id, added.ID)
	assert.Equal(t, "Bengkel Jaya", added.Name)
	assert.Equal(t, model.LeadCold, added.Status)
	assert.Equal(t, "New Entry", added.Notes)
	assert.Len(t, saver.saved, 1)

	other, err := st.AddLead(ctx, NewLead{Name: "Toko Sinar", Value: 0, Notes: "via referral"})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestAddLeadValidation(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()

	_, err := st.AddLead(ctx, NewLead{Name: "   ", Value: 100})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = st.AddLead(ctx, NewLead{Name: "X", Value: -1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "value", verr.Field)

	assert.Empty(t, saver.saved)
	assert.Len(t, st.Snapshot().Income.Leads, 2)
}

func TestLeadOpsKeepRevenueInSync(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	require.True(t, st.SetLeadStatus(ctx, "1", model.LeadClosed))
	assert.Equal(t, int64(1500000), st.Snapshot().Income.TotalRevenue)

	require.True(t, st.SetLeadStatus(ctx, "2", model.LeadClosed))
	assert.Equal(t, int64(3500000), st.Snapshot().Income.TotalRevenue)

	require.True(t, st.DeleteLead(ctx, "1"))
	assert.Equal(t, int64(2000000), st.Snapshot().Income.TotalRevenue, "deleting a closed lead drops its value")

	assert.False(t, st.DeleteLead(ctx, "1"))
	assert.False(t, st.SetLeadStatus(ctx, "2", model.LeadClosed), "same status is not a change")
	assert.False(t, st.SetLeadStatus(ctx, "2", model.LeadStatus("Hot")))
}

func TestRevenueInvariantOverRandomOps(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		leads := st.Snapshot().Income.Leads
		switch op := rng.Intn(3); {
		case op == 0 || len(leads) == 0:
			_, err := st.AddLead(ctx, NewLead{Name: "lead", Value: int64(rng.Intn(5_000_000))})
			require.NoError(t, err)
		case op == 1:
			l := leads[rng.Intn(len(leads))]
			st.SetLeadStatus(ctx, l.ID, model.LeadStatuses[rng.Intn(len(model.LeadStatuses))])
		default:
			st.DeleteLead(ctx, leads[rng.Intn(len(leads))].ID)
		}

		snap := st.Snapshot()
		require.Equal(t, snap.Income.Revenue(), snap.Income.TotalRevenue, "step %d", i)
	}
	for _, saved := range saver.saved {
		require.Equal(t, saved.Income.Revenue(), saved.Income.TotalRevenue)
	}
}

func TestNewRecomputesStaleRevenue(t *testing.T) {
	initial := dataset.Build(fixedNow)
	initial.Income.Leads[0].Status = model.LeadClosed
	initial.Income.TotalRevenue = 99

	st := New(initial, nil, nil)
	assert.Equal(t, int64(1500000), st.Snapshot().Income.TotalRevenue)
	assert.Equal(t, int64(99), initial.Income.TotalRevenue, "input is not modified")
}

func TestAppendHealthLog(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendHealthLog(ctx, model.LogEntry{Sleep: 7, Mood: 5, Stress: 5}))
	require.NoError(t, st.AppendHealthLog(ctx, model.LogEntry{Date: "8/3/2026", Sleep: 5, Mood: 3, Stress: 8}))

	logs := st.Snapshot().Health.Logs
	require.Len(t, logs, 2)
	assert.Equal(t, "8/3/2026", logs[0].Date, "newest first")
	assert.Equal(t, "7/3/2026", logs[1].Date, "empty date defaults to today")

	err := st.AppendHealthLog(ctx, model.LogEntry{Sleep: 7, Mood: 11, Stress: 5})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mood", verr.Field)

	err = st.AppendHealthLog(ctx, model.LogEntry{Sleep: -1, Mood: 5, Stress: 5})
	assert.Error(t, err)
	assert.Len(t, st.Snapshot().Health.Logs, 2)
}

func TestRoadmapOps(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	assert.True(t, st.ToggleTool(ctx, 1))
	assert.True(t, st.Snapshot().CyberRoadmap.Tools[1].Checked)
	assert.False(t, st.ToggleTool(ctx, 10))
	assert.False(t, st.ToggleTool(ctx, -1))

	assert.True(t, st.SetSkillLevel(ctx, 2, 45))
	assert.Equal(t, 45, st.Snapshot().CyberRoadmap.Skills[2].Level)
	assert.False(t, st.SetSkillLevel(ctx, 2, 45))
	assert.False(t, st.SetSkillLevel(ctx, 2, 101))
	assert.False(t, st.SetSkillLevel(ctx, 9, 10))

	assert.True(t, st.SetRoadmapProgress(ctx, 8, 3))
	assert.Equal(t, model.RoadmapProgress{TryHackMeRooms: 8, Writeups: 3}, st.Snapshot().CyberRoadmap.Progress)
	assert.False(t, st.SetRoadmapProgress(ctx, -1, 3))
}

func TestFinishWeekNeedsConfirmation(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()
	require.True(t, st.ToggleChecklistItem(ctx, "mk_a", "w1", model.ListWeekly))

	var asked int
	entry, ok := st.FinishWeek(ctx, func(week int) bool {
		asked = week
		return false
	})
	assert.False(t, ok)
	assert.Nil(t, entry)
	assert.Equal(t, 1, asked)
	assert.Equal(t, 1, st.Snapshot().CurrentWeek)
	assert.Len(t, saver.saved, 1)

	entry, ok = st.FinishWeek(ctx, func(int) bool { return true })
	require.True(t, ok)
	assert.Equal(t, 1, entry.Week)
	assert.Equal(t, 1, entry.Stats.Completed)
	assert.Equal(t, "7/3/2026", entry.Date)

	snap := st.Snapshot()
	assert.Equal(t, 2, snap.CurrentWeek)
	require.Len(t, snap.WeeklyHistory, 1)
	assert.Equal(t, *entry, snap.WeeklyHistory[0])
	assert.False(t, snap.Academics[0].WeeklyChecklist[0].Done)
	assert.Len(t, saver.saved, 2, "rollover is a single write")
}

func TestFinishWeekWithoutConfirmDoesNothing(t *testing.T) {
	st, saver := newStore(t)
	entry, ok := st.FinishWeek(context.Background(), nil)
	assert.False(t, ok)
	assert.Nil(t, entry)
	assert.Equal(t, 1, st.Snapshot().CurrentWeek)
	assert.Empty(t, saver.saved)
}

func TestReplaceState(t *testing.T) {
	st, saver := newStore(t)
	ctx := context.Background()

	bad := dataset.Build(fixedNow)
	bad.User = nil
	err := st.ReplaceState(ctx, bad)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Error(t, st.ReplaceState(ctx, nil))
	assert.Empty(t, saver.saved)

	good := dataset.Build(fixedNow)
	good.CurrentWeek = 9
	good.User.Name = "Imported"
	require.NoError(t, st.ReplaceState(ctx, good))
	assert.Equal(t, 9, st.Snapshot().CurrentWeek)
	assert.Equal(t, "Imported", st.Snapshot().User.Name)

	good.User.Name = "mutated after import"
	assert.Equal(t, "Imported", st.Snapshot().User.Name)

	require.NoError(t, st.ResetToDefault(ctx))
	assert.Equal(t, 1, st.Snapshot().CurrentWeek)
	assert.Len(t, saver.saved, 2)
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	st, saver := newStore(t)
	saver.err = errors.New("read-only filesystem")
	ctx := context.Background()

	var changes []Change
	st.Subscribe(func(c Change) { changes = append(changes, c) })

	require.True(t, st.ToggleChecklistItem(ctx, "mk_b", "w1", model.ListWeekly))
	assert.True(t, st.Snapshot().Academics[1].WeeklyChecklist[0].Done)
	assert.ErrorContains(t, st.LastSaveError(), "read-only")
	require.Len(t, changes, 1)
	assert.Error(t, changes[0].SaveErr)
	assert.Equal(t, "toggle_checklist_item", changes[0].Op)

	saver.err = nil
	require.True(t, st.ToggleChecklistItem(ctx, "mk_b", "w2", model.ListWeekly))
	assert.NoError(t, st.LastSaveError())
}

func TestCommitStampsLastUpdated(t *testing.T) {
	later := fixedNow.Add(time.Hour)
	st := New(dataset.Build(fixedNow), nil, nil, WithClock(func() time.Time { return later }))
	require.True(t, st.ToggleTool(context.Background(), 0))
	assert.Equal(t, later, st.Snapshot().LastUpdated)
}

func newSharedStore(t *testing.T, kv persist.KV, now func() time.Time) *Store {
	t.Helper()
	gw := persist.NewGateway(kv, zap.NewNop(), persist.WithClock(now))
	return New(gw.Hydrate(context.Background()), gw, zap.NewNop(), WithClock(now))
}

func TestWritersOnOneStoreKeepEachOthersChanges(t *testing.T) {
	kv := persist.NewMemoryKV()
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	long := newSharedStore(t, kv, clock)
	short := newSharedStore(t, kv, clock)

	require.True(t, short.ToggleChecklistItem(ctx, "mk_a", "w1", model.ListWeekly))
	assert.False(t, long.Snapshot().Academics[0].WeeklyChecklist[0].Done, "not reloaded yet")

	require.NoError(t, long.AppendHealthLog(ctx, model.LogEntry{Sleep: 7, Mood: 6, Stress: 4}))
	assert.True(t, long.Snapshot().Academics[0].WeeklyChecklist[0].Done)

	reopened := newSharedStore(t, kv, clock).Snapshot()
	assert.True(t, reopened.Academics[0].WeeklyChecklist[0].Done)
	assert.Len(t, reopened.Health.Logs, 1)

	require.True(t, short.ToggleTool(ctx, 0))
	assert.True(t, long.Refresh(ctx))
	assert.False(t, long.Refresh(ctx))
	assert.True(t, long.Snapshot().CyberRoadmap.Tools[0].Checked)
}

// racingSource lets another writer slip in just before the first save.
type racingSource struct {
	*persist.Gateway
	race func()
}

func (r *racingSource) Save(ctx context.Context, s *model.RootState) error {
	if r.race != nil {
		race := r.race
		r.race = nil
		race()
	}
	return r.Gateway.Save(ctx, s)
}

func TestStaleSaveIsReplayed(t *testing.T) {
	kv := persist.NewMemoryKV()
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	other := newSharedStore(t, kv, clock)

	gw := persist.NewGateway(kv, zap.NewNop(), persist.WithClock(clock))
	src := &racingSource{Gateway: gw}
	st := New(gw.Hydrate(ctx), src, zap.NewNop(), WithClock(clock))
	src.race = func() {
		require.True(t, other.ToggleChecklistItem(ctx, "mk_b", "w1", model.ListWeekly))
	}

	require.True(t, st.ToggleChecklistItem(ctx, "mk_a", "w1", model.ListWeekly))
	assert.NoError(t, st.LastSaveError())
	assert.Equal(t, uint64(1), st.Version())

	stored := newSharedStore(t, kv, clock).Snapshot()
	assert.True(t, stored.Academics[0].WeeklyChecklist[0].Done)
	assert.True(t, stored.Academics[1].WeeklyChecklist[0].Done)
}

func TestFinishWeekDroppedWhenWeekMovedOn(t *testing.T) {
	kv := persist.NewMemoryKV()
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	st := newSharedStore(t, kv, clock)
	other := newSharedStore(t, kv, clock)

	entry, ok := st.FinishWeek(ctx, func(week int) bool {
		_, done := other.FinishWeek(ctx, func(int) bool { return true })
		require.True(t, done)
		return week == 1
	})
	assert.False(t, ok)
	assert.Nil(t, entry)

	snap := st.Snapshot()
	assert.Equal(t, 2, snap.CurrentWeek)
	assert.Len(t, snap.WeeklyHistory, 1, "week 1 is archived once")
}

func TestCommittedStateSurvivesReload(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	clock := func() time.Time { return time.Date(2026, 3, 7, 21, 15, 0, 0, wib) }
	kv := persist.NewMemoryKV()
	ctx := context.Background()

	initial := dataset.Build(clock())
	initial.SchemaVersion = 0
	gw := persist.NewGateway(kv, zap.NewNop(), persist.WithClock(clock))
	st := New(initial, gw, zap.NewNop(), WithClock(clock))
	require.True(t, st.ToggleChecklistItem(ctx, "mk_a", "w1", model.ListWeekly))

	loaded, ok := persist.NewGateway(kv, zap.NewNop(), persist.WithClock(clock)).Load(ctx)
	require.True(t, ok)
	assert.Equal(t, st.Snapshot(), loaded)
	assert.Equal(t, time.UTC, loaded.LastUpdated.Location())
	assert.Equal(t, model.CurrentSchemaVersion, loaded.SchemaVersion)
}
