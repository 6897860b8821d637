// Package review writes weekly review notes for archived weeks.
package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/ai"
	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// NoteType marks weekly review notes in their frontmatter.
const NoteType = "weekly-review"

// ErrNoHistory is returned when no week has been finished yet.
var ErrNoHistory = errors.New("no finished week to review")

// Service renders review notes into Dir. AI is optional.
type Service struct {
	Dir     string
	Engine  *TemplateEngine
	AI      ai.Generator
	Model   string
	Timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a review service writing into dir.
func NewService(dir string, engine *TemplateEngine, logger *zap.Logger) *Service {
	if engine == nil {
		engine = NewTemplateEngine("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Dir: dir, Engine: engine, Timeout: 30 * time.Second, logger: logger, now: time.Now}
}

// WithAI enables insights from gen, labelled with modelName in the note.
func (s *Service) WithAI(gen ai.Generator, modelName string, timeout time.Duration) *Service {
	s.AI = gen
	s.Model = modelName
	if timeout > 0 {
		s.Timeout = timeout
	}
	return s
}

// Write renders the note for the most recent archived week of st and
// returns its path. A failing AI call is logged and the note is written
// without insights.
func (s *Service) Write(ctx context.Context, st *model.RootState) (string, error) {
	if len(st.WeeklyHistory) == 0 {
		return "", ErrNoHistory
	}
	entry := st.WeeklyHistory[0]
	now := s.now()

	tmpl, err := s.Engine.LoadTemplate(WeeklyTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	title := fmt.Sprintf("Weekly Review - Minggu %d", entry.Week)
	rendered := s.Engine.Render(tmpl, map[string]string{
		"title":     title,
		"week":      strconv.Itoa(entry.Week),
		"score":     strconv.Itoa(entry.Score),
		"completed": strconv.Itoa(entry.Stats.Completed),
		"total":     strconv.Itoa(entry.Stats.Total),
	}, now)

	rawFM, body, err := splitNote(rendered)
	if err != nil {
		return "", err
	}

	body = injectAfter(body, "## Subjects", subjectsSection(st))
	body = injectAfter(body, "## Projects", projectsSection(st))
	body = injectAfter(body, "## Health", healthSection(st))

	fm := Frontmatter{
		Type:      NoteType,
		Created:   now.Format("2006-01-02"),
		Week:      entry.Week,
		Date:      entry.Date,
		Score:     entry.Score,
		Completed: entry.Stats.Completed,
		Total:     entry.Stats.Total,
		Burnout:   metrics.BurnoutScore(st.Health.Logs),
		Revenue:   st.Income.Revenue(),
		Tags:      tags(rawFM),
	}

	if insights := s.insights(ctx, entry, st); insights != "" {
		body = strings.TrimRight(body, "\n") + "\n\n## AI Insights\n" + insights + "\n"
		fm.Model = s.Model
	}

	path := filepath.Join(s.Dir, SanitizeFilename(fmt.Sprintf("Week %02d Review.md", entry.Week)))
	if err := WriteNote(&Note{Path: path, Frontmatter: fm, Content: body}); err != nil {
		return "", fmt.Errorf("failed to write review: %w", err)
	}
	s.logger.Info("weekly review written", zap.Int("week", entry.Week), zap.String("path", path))
	return path, nil
}

func (s *Service) insights(ctx context.Context, entry model.HistoryEntry, st *model.RootState) string {
	if s.AI == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	text, err := s.AI.GenerateText(ctx, ai.WeeklyReviewPrompt(entry, st))
	if err != nil {
		s.logger.Warn("ai insights unavailable", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func subjectsSection(st *model.RootState) string {
	var b strings.Builder
	for _, sub := range st.Academics {
		done, total := sub.ChecklistCounts()
		fmt.Fprintf(&b, "- %s (%d SKS): %d/%d, target %s\n", sub.Name, sub.Credits, done, total, sub.TargetGrade)
	}
	return b.String()
}

func projectsSection(st *model.RootState) string {
	var b strings.Builder
	for _, p := range st.Projects {
		var done int
		for _, t := range p.Tasks {
			if t.Status == model.StatusDone {
				done++
			}
		}
		fmt.Fprintf(&b, "- [%s] %s: %d/%d tasks done\n", p.Status, p.Title, done, len(p.Tasks))
	}
	return b.String()
}

func healthSection(st *model.RootState) string {
	score := metrics.BurnoutScore(st.Health.Logs)
	line := fmt.Sprintf("Burnout %.1f/10", score)
	if metrics.BurnoutHigh(score) {
		line += " (high risk)"
	}
	if len(st.Health.Logs) > 0 {
		l := st.Health.Logs[0]
		line += fmt.Sprintf(", last log %s: sleep %.1fh, mood %d, stress %d", l.Date, l.Sleep, l.Mood, l.Stress)
	}
	return line + "\n"
}

func tags(rawFM map[string]interface{}) []string {
	list, _ := rawFM["tags"].([]interface{})
	var out []string
	for _, t := range list {
		if s, ok := t.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
