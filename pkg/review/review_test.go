package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/semester-pilot/pkg/dataset"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

var fixedNow = time.Date(2026, 3, 7, 21, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func finishedState() *model.RootState {
	s := dataset.Build(fixedNow)
	s.CurrentWeek = 4
	s.WeeklyHistory = []model.HistoryEntry{
		{Week: 3, Date: "7/3/2026", Score: 40, Stats: model.WeekStats{Completed: 18, Total: 45}},
		{Week: 2, Date: "28/2/2026", Score: 20, Stats: model.WeekStats{Completed: 9, Total: 45}},
	}
	s.Health.Logs = []model.LogEntry{{Date: "7/3/2026", Sleep: 7, Mood: 5, Stress: 5}}
	return s
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(t.TempDir(), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestTemplateEngine(t *testing.T) {
	tmpDir := t.TempDir()
	tmplContent := "---\ncreated: {{date:YYYY-MM-DD}}\n---\n# {{title}} {{date:YYYY-[W]WW}}"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "Test Template.md"), []byte(tmplContent), 0644))

	engine := NewTemplateEngine(tmpDir)

	content, err := engine.LoadTemplate("Test Template")
	require.NoError(t, err)
	assert.Equal(t, tmplContent, content)

	rendered := engine.Render(content, map[string]string{"title": "My Note"}, fixedNow)
	assert.Contains(t, rendered, "created: 2026-03-07")
	assert.Contains(t, rendered, "# My Note 2026-W10")

	_, err = engine.LoadTemplate("Missing")
	assert.Error(t, err)
}

func TestTemplateEngineFallsBackToBuiltin(t *testing.T) {
	content, err := NewTemplateEngine(t.TempDir()).LoadTemplate(WeeklyTemplate)
	require.NoError(t, err)
	assert.Contains(t, content, "## Reflections")
}

func TestReadWriteNote(t *testing.T) {
	notePath := filepath.Join(t.TempDir(), "nested", "test_note.md")
	note := &Note{
		Path: notePath,
		Frontmatter: map[string]interface{}{
			"title": "Test Note",
			"tags":  []string{"test", "go"},
		},
		Content: "\n# Hello World\nThis is a test.",
	}
	require.NoError(t, WriteNote(note))

	readNote, err := ReadNote(notePath)
	require.NoError(t, err)
	fm, ok := readNote.Frontmatter.(map[string]interface{})
	require.True(t, ok, "frontmatter is not a map")
	assert.Equal(t, "Test Note", fm["title"])
	assert.Contains(t, readNote.Content, "# Hello World")
}

func TestWriteWithoutAI(t *testing.T) {
	svc := newTestService(t)

	path, err := svc.Write(context.Background(), finishedState())
	require.NoError(t, err)
	assert.Equal(t, "Week 03 Review.md", filepath.Base(path))

	note, err := ReadNote(path)
	require.NoError(t, err)
	fm, err := ParseReview(note)
	require.NoError(t, err)
	assert.Equal(t, NoteType, fm.Type)
	assert.Equal(t, 3, fm.Week)
	assert.Equal(t, "7/3/2026", fm.Date)
	assert.Equal(t, 40, fm.Score)
	assert.Equal(t, 18, fm.Completed)
	assert.Equal(t, 45, fm.Total)
	assert.Equal(t, 4.2, fm.Burnout)
	assert.Equal(t, "2026-03-07", fm.Created)
	assert.Equal(t, []string{"semester", "weekly-review"}, fm.Tags)
	assert.Empty(t, fm.Model)

	assert.Contains(t, note.Content, "# Weekly Review - Minggu 3")
	assert.Contains(t, note.Content, "Checklist 18/45 (40%)")
	assert.Contains(t, note.Content, "## Health\nBurnout 4.2/10, last log 7/3/2026")
	assert.NotContains(t, note.Content, "AI Insights")
	for _, sub := range finishedState().Academics {
		assert.Contains(t, note.Content, sub.Name)
	}
}

func TestWriteWithAI(t *testing.T) {
	gen := &fakeGenerator{reply: "- Focus on Algoritma\n"}
	svc := newTestService(t).WithAI(gen, "gemini-test", time.Second)

	path, err := svc.Write(context.Background(), finishedState())
	require.NoError(t, err)

	note, err := ReadNote(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(note.Content), "## AI Insights\n- Focus on Algoritma"))
	fm, err := ParseReview(note)
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", fm.Model)
	assert.Contains(t, gen.prompt, "Week 3 just finished.")
}

func TestWriteAIFailureStillWrites(t *testing.T) {
	svc := newTestService(t).WithAI(&fakeGenerator{err: errors.New("quota")}, "gemini-test", 0)

	path, err := svc.Write(context.Background(), finishedState())
	require.NoError(t, err)
	note, err := ReadNote(path)
	require.NoError(t, err)
	assert.NotContains(t, note.Content, "AI Insights")
}

func TestWriteNeedsHistory(t *testing.T) {
	_, err := newTestService(t).Write(context.Background(), dataset.Build(fixedNow))
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestListReviews(t *testing.T) {
	svc := newTestService(t)
	st := finishedState()
	_, err := svc.Write(context.Background(), st)
	require.NoError(t, err)

	st.WeeklyHistory = st.WeeklyHistory[1:]
	_, err = svc.Write(context.Background(), st)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Dir, "notes.md"), []byte("# scratch"), 0644))

	reviews, err := ListReviews(svc.Dir)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 3, reviews[0].Week)
	assert.Equal(t, 2, reviews[1].Week)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c", SanitizeFilename("a/b:c"))
}
