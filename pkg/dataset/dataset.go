package dataset

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

//go:embed default.yaml
var defaultYAML []byte

// catalog mirrors the static part of the default dataset in default.yaml.
type catalog struct {
	User         model.UserProfile                      `yaml:"user"`
	Academics    []model.Subject                        `yaml:"academics"`
	Schedule     map[model.Weekday][]model.ScheduleItem `yaml:"schedule"`
	Projects     []model.Project                        `yaml:"projects"`
	Income       model.Income                           `yaml:"income"`
	Health       model.Health                           `yaml:"health"`
	CyberRoadmap model.CyberRoadmap                     `yaml:"cyberRoadmap"`
}

var (
	baseOnce sync.Once
	base     *model.RootState
	baseErr  error
)

// Build returns a fresh default state stamped with now. Every call returns
// an independent copy.
func Build(now time.Time) *model.RootState {
	baseOnce.Do(func() {
		base, baseErr = parse(defaultYAML)
	})
	if baseErr != nil {
		panic(fmt.Sprintf("embedded default dataset is invalid: %v", baseErr))
	}
	s := base.Clone()
	s.LastUpdated = now
	return s
}

func parse(data []byte) (*model.RootState, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse default dataset: %w", err)
	}

	user := c.User
	s := &model.RootState{
		SchemaVersion: model.CurrentSchemaVersion,
		CurrentWeek:   1,
		User:          &user,
		WeeklyHistory: []model.HistoryEntry{},
		Academics:     c.Academics,
		Schedule:      c.Schedule,
		Projects:      c.Projects,
		Income:        c.Income,
		Health:        c.Health,
		CyberRoadmap:  c.CyberRoadmap,
	}
	if s.Health.Logs == nil {
		s.Health.Logs = []model.LogEntry{}
	}
	s.Income.TotalRevenue = s.Income.Revenue()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
