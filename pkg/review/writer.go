package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteNote writes a note to the specified path
func WriteNote(note *Note) error {
	fmData, err := yaml.Marshal(note.Frontmatter)
	if err != nil {
		return fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	content := fmt.Sprintf("---\n%s---\n%s", string(fmData), note.Content)

	if err := os.MkdirAll(filepath.Dir(note.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(note.Path, []byte(content), 0644)
}

// SanitizeFilename removes characters invalid in filenames.
func SanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		name = strings.ReplaceAll(name, char, "-")
	}
	return name
}

// injectAfter inserts text on the lines following heading. Content without
// the heading gets a new section at the end.
func injectAfter(content, heading, text string) string {
	if text == "" {
		return content
	}
	before, after, found := strings.Cut(content, heading+"\n")
	if !found {
		return strings.TrimRight(content, "\n") + "\n\n" + heading + "\n" + text
	}
	return before + heading + "\n" + text + after
}
