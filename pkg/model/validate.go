package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingUser      = errors.New("state has no user profile")
	ErrMissingAcademics = errors.New("state has no academics")
)

// Validate checks the structural rules every stored document must satisfy.
// Enum fields are already checked while decoding.
func (s *RootState) Validate() error {
	if s == nil {
		return errors.New("state is nil")
	}
	if s.User == nil {
		return ErrMissingUser
	}
	if s.Academics == nil {
		return ErrMissingAcademics
	}
	if s.CurrentWeek < 1 {
		return fmt.Errorf("current week must be at least 1, got %d", s.CurrentWeek)
	}

	seen := make(map[string]struct{}, len(s.Academics))
	for _, sub := range s.Academics {
		if sub.ID == "" {
			return fmt.Errorf("subject %q has no id", sub.Name)
		}
		if _, dup := seen[sub.ID]; dup {
			return fmt.Errorf("duplicate subject id %q", sub.ID)
		}
		seen[sub.ID] = struct{}{}
	}

	for _, l := range s.Income.Leads {
		if l.Value < 0 {
			return fmt.Errorf("lead %s has negative value", l.ID)
		}
	}
	return nil
}
