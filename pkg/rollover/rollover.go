// Package rollover turns a finished week into a history entry and a
// cleared weekly checklist.
package rollover

import (
	"time"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// DateLayout is the short day/month/year form used in history entries.
const DateLayout = "2/1/2006"

// Apply returns the state after finishing the current week together with
// the archived history entry. s is not modified.
func Apply(s *model.RootState, now time.Time) (*model.RootState, model.HistoryEntry) {
	next := s.Clone()

	st := metrics.ChecklistStats(next.Academics)
	entry := model.HistoryEntry{
		Week:  next.CurrentWeek,
		Date:  now.Format(DateLayout),
		Score: metrics.Percent(st.Completed, st.Total),
		Stats: st,
	}

	history := make([]model.HistoryEntry, 0, len(next.WeeklyHistory)+1)
	history = append(history, entry)
	next.WeeklyHistory = append(history, next.WeeklyHistory...)

	for i := range next.Academics {
		for j := range next.Academics[i].WeeklyChecklist {
			next.Academics[i].WeeklyChecklist[j].Done = false
		}
	}

	next.CurrentWeek++
	return next, entry
}
