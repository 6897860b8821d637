package review

// Frontmatter is the YAML header of a weekly review note.
type Frontmatter struct {
	Type      string   `yaml:"type"` // weekly-review
	Created   string   `yaml:"created"`
	Week      int      `yaml:"week"`
	Date      string   `yaml:"date,omitempty"`
	Score     int      `yaml:"score"`
	Completed int      `yaml:"completed"`
	Total     int      `yaml:"total"`
	Burnout   float64  `yaml:"burnout"`
	Revenue   int64    `yaml:"revenue"`
	Tags      []string `yaml:"tags,omitempty"`
	Model     string   `yaml:"ai_model,omitempty"`
}

// Note represents a parsed markdown note
type Note struct {
	Path        string
	Frontmatter interface{}
	Content     string // The markdown content after frontmatter
}
