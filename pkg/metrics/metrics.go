// Package metrics holds the pure read-side computations shown on the
// dashboard.
package metrics

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

// BurnoutThreshold is the score above which burnout risk is reported high.
const BurnoutThreshold = 6.0

// ChecklistStats counts weekly checklist items across all subjects.
func ChecklistStats(academics []model.Subject) model.WeekStats {
	var st model.WeekStats
	for _, sub := range academics {
		done, total := sub.ChecklistCounts()
		st.Completed += done
		st.Total += total
	}
	return st
}

// Percent rounds completed/total to a whole percentage, 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ProgressPercent is the share of weekly checklist items done this week.
func ProgressPercent(academics []model.Subject) int {
	st := ChecklistStats(academics)
	return Percent(st.Completed, st.Total)
}

// BurnoutScore rates the most recent log on a 0-10 scale, rounded to one
// decimal. Logs are stored newest first.
func BurnoutScore(logs []model.LogEntry) float64 {
	if len(logs) == 0 {
		return 0
	}
	l := logs[0]
	score := (10-l.Sleep)*0.4 + float64(l.Stress)*0.4 + float64(10-l.Mood)*0.2
	score = math.Round(score*10) / 10
	return math.Min(10, math.Max(0, score))
}

func BurnoutHigh(score float64) bool {
	return score > BurnoutThreshold
}

// CurrentWeekday names the day of now in the schedule's vocabulary.
func CurrentWeekday(now time.Time) model.Weekday {
	return model.WeekdayOf(now.Weekday())
}

// TodaySchedule returns the schedule items for the weekday of now.
func TodaySchedule(s *model.RootState, now time.Time) []model.ScheduleItem {
	return s.Schedule[CurrentWeekday(now)]
}

// RevenuePercent is closed revenue against the target, not capped at 100.
func RevenuePercent(in model.Income) int {
	if in.TargetRevenue <= 0 {
		return 0
	}
	return int(math.Round(float64(in.Revenue()) / float64(in.TargetRevenue) * 100))
}

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatCurrency renders an amount of rupiah with id-ID grouping and no
// decimals, e.g. "Rp 1.500.000".
func FormatCurrency(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "Rp " + idPrinter.Sprintf("%d", amount)
}
