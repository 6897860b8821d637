package review

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

//go:embed templates/*.md
var builtin embed.FS

// WeeklyTemplate is the template used for weekly review notes.
const WeeklyTemplate = "weekly-review"

var datePlaceholder = regexp.MustCompile(`\{\{date:(.*?)\}\}`)

// TemplateEngine loads note templates from a directory, falling back to the
// built-in ones when the directory has no such file.
type TemplateEngine struct {
	TemplateDir string
}

// NewTemplateEngine creates a new TemplateEngine. An empty dir uses the
// built-in templates only.
func NewTemplateEngine(templateDir string) *TemplateEngine {
	return &TemplateEngine{
		TemplateDir: templateDir,
	}
}

// LoadTemplate reads a template by name, with or without the .md extension.
func (e *TemplateEngine) LoadTemplate(templateName string) (string, error) {
	if !strings.HasSuffix(templateName, ".md") {
		templateName += ".md"
	}

	if e.TemplateDir != "" {
		content, err := os.ReadFile(filepath.Join(e.TemplateDir, templateName))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", templateName, err)
		}
	}

	content, err := builtin.ReadFile("templates/" + templateName)
	if err != nil {
		return "", fmt.Errorf("template %s not found", templateName)
	}
	return string(content), nil
}

// Render replaces placeholders in the template content.
// {{name}} is replaced with vars[name]; {{date:FORMAT}} with now formatted
// according to a Moment.js style FORMAT (e.g. YYYY-MM-DD).
func (e *TemplateEngine) Render(content string, vars map[string]string, now time.Time) string {
	for k, v := range vars {
		content = strings.ReplaceAll(content, "{{"+k+"}}", v)
	}

	return datePlaceholder.ReplaceAllStringFunc(content, func(match string) string {
		parts := datePlaceholder.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return formatMoment(now, parts[1])
	})
}

// formatMoment formats t with a simple Moment.js format string. Only the
// common date parts are supported, plus the ISO week form YYYY-[W]WW.
func formatMoment(t time.Time, format string) string {
	if format == "YYYY-[W]WW" {
		y, w := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	}
	format = strings.ReplaceAll(format, "YYYY", "2006")
	format = strings.ReplaceAll(format, "MM", "01")
	format = strings.ReplaceAll(format, "DD", "02")
	format = strings.ReplaceAll(format, "HH", "15")
	format = strings.ReplaceAll(format, "mm", "04")
	format = strings.ReplaceAll(format, "ss", "05")
	return t.Format(format)
}
