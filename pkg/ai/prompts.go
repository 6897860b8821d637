package ai

import (
	"fmt"
	"strings"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// WeeklyReviewPrompt asks for a short coaching note on the week that was
// just closed. s is the state after the rollover.
func WeeklyReviewPrompt(entry model.HistoryEntry, s *model.RootState) string {
	var subjects strings.Builder
	for _, sub := range s.Academics {
		done, total := sub.ChecklistCounts()
		fmt.Fprintf(&subjects, "- %s (%d SKS, target %.1f): checklist %d/%d\n", sub.Name, sub.Credits, sub.Target, done, total)
	}

	var projects strings.Builder
	for _, p := range s.Projects {
		fmt.Fprintf(&projects, "- %s [%s]: %s\n", p.Title, p.Category, p.Status)
	}

	burnout := metrics.BurnoutScore(s.Health.Logs)

	return fmt.Sprintf(`
You are a study coach for a university student running a high-performance semester plan.

Week %d just finished.
- Weekly checklist: %d of %d items done (%d%%)
- Revenue: %s of %s target
- Latest burnout score: %.1f/10 (high above %.0f)
- Target GPA: %.2f

Subjects:
%s
Projects:
%s
Instructions:
1. Summarize how the week went in two sentences.
2. Suggest 3 concrete priorities for week %d.
3. If burnout is high, suggest one recovery action.

Output as Markdown bullet points, no headings.
`,
		entry.Week, entry.Stats.Completed, entry.Stats.Total, entry.Score,
		metrics.FormatCurrency(s.Income.Revenue()), metrics.FormatCurrency(s.Income.TargetRevenue),
		burnout, metrics.BurnoutThreshold,
		targetGPA(s),
		subjects.String(), projects.String(),
		s.CurrentWeek)
}

func targetGPA(s *model.RootState) float64 {
	if s.User == nil {
		return 0
	}
	return s.User.TargetGPA
}
