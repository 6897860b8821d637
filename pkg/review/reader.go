package review

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadNote reads a markdown file and parses its frontmatter and content
func ReadNote(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fm, body, err := splitNote(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &Note{Path: path, Frontmatter: fm, Content: body}, nil
}

// splitNote separates a leading "---" fenced YAML block from the body.
func splitNote(content string) (map[string]interface{}, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var frontmatterLines []string
	var contentLines []string
	inFrontmatter := false
	lineCount := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineCount++

		if lineCount == 1 && line == "---" {
			inFrontmatter = true
			continue
		}

		if inFrontmatter {
			if line == "---" {
				inFrontmatter = false
				continue
			}
			frontmatterLines = append(frontmatterLines, line)
		} else {
			contentLines = append(contentLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}

	var rawFM map[string]interface{}
	if fmData := strings.Join(frontmatterLines, "\n"); len(fmData) > 0 {
		if err := yaml.Unmarshal([]byte(fmData), &rawFM); err != nil {
			return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}
	return rawFM, strings.Join(contentLines, "\n"), nil
}

// ParseReview parses the frontmatter into a Frontmatter struct
func ParseReview(n *Note) (*Frontmatter, error) {
	data, err := yaml.Marshal(n.Frontmatter)
	if err != nil {
		return nil, err
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

// ListReviews returns the weekly review notes in dir ordered by week,
// newest first. Other markdown files are skipped.
func ListReviews(dir string) ([]*Frontmatter, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}

	var out []*Frontmatter
	for _, p := range paths {
		note, err := ReadNote(p)
		if err != nil {
			continue
		}
		fm, err := ParseReview(note)
		if err != nil || fm.Type != NoteType {
			continue
		}
		out = append(out, fm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week > out[j].Week })
	return out, nil
}
