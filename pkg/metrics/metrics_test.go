package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/semester-pilot/pkg/dataset"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

func TestBurnoutScore(t *testing.T) {
	tests := []struct {
		name string
		logs []model.LogEntry
		want float64
	}{
		{"no logs", nil, 0},
		{"rested and calm", []model.LogEntry{{Sleep: 10, Mood: 10, Stress: 0}}, 0},
		{"oversleep clamps at zero", []model.LogEntry{{Sleep: 14, Mood: 10, Stress: 0}}, 0},
		{"exhausted", []model.LogEntry{{Sleep: 0, Mood: 0, Stress: 10}}, 10},
		{"form defaults", []model.LogEntry{{Sleep: 7, Mood: 5, Stress: 5}}, 4.2},
		{"only latest counts", []model.LogEntry{{Sleep: 8, Mood: 8, Stress: 2}, {Sleep: 0, Mood: 0, Stress: 10}}, 2},
		{"rounded to one decimal", []model.LogEntry{{Sleep: 6.5, Mood: 6, Stress: 7}}, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BurnoutScore(tt.logs), 1e-9)
		})
	}
}

func TestBurnoutHigh(t *testing.T) {
	assert.False(t, BurnoutHigh(6))
	assert.True(t, BurnoutHigh(6.1))
}

func TestProgressPercent(t *testing.T) {
	academics := []model.Subject{
		{ID: "a", WeeklyChecklist: []model.ChecklistItem{{ID: "w1", Done: true}, {ID: "w2"}}},
		{ID: "b", WeeklyChecklist: []model.ChecklistItem{{ID: "w1"}}},
	}
	assert.Equal(t, 33, ProgressPercent(academics))
	assert.Equal(t, 0, ProgressPercent(nil))
	assert.Equal(t, 0, ProgressPercent(dataset.Build(time.Now()).Academics))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestCurrentWeekday(t *testing.T) {
	tests := []struct {
		date time.Time
		want model.Weekday
	}{
		{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), model.Minggu},
		{time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), model.Senin},
		{time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), model.Jumat},
		{time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), model.Sabtu},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrentWeekday(tt.date), tt.date.String())
	}
}

func TestTodaySchedule(t *testing.T) {
	s := dataset.Build(time.Now())
	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	items := TodaySchedule(s, saturday)
	assert.Len(t, items, 3)
	assert.Equal(t, "EVALUASI MINGGUAN", items[2].Activity)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatCurrency(0))
	assert.Equal(t, "Rp 950", FormatCurrency(950))
	assert.Equal(t, "Rp 1.500.000", FormatCurrency(1500000))
	assert.Equal(t, "Rp 10.000.000", FormatCurrency(10000000))
	assert.Equal(t, "-Rp 2.500", FormatCurrency(-2500))
}

func TestRevenuePercent(t *testing.T) {
	in := model.Income{TargetRevenue: 10000000, Leads: []model.Lead{{Status: model.LeadClosed, Value: 1500000}, {Status: model.LeadWarm, Value: 5000000}}}
	assert.Equal(t, 15, RevenuePercent(in))
	assert.Equal(t, 0, RevenuePercent(model.Income{}))
}
