package state

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mklimuk/semester-pilot/pkg/dataset"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/rollover"
)

// ToggleChecklistItem flips the done flag of one item in a subject's weekly
// checklist or strategy list.
func (s *Store) ToggleChecklistItem(ctx context.Context, subjectID string, itemID model.ID, kind model.ListKind) bool {
	if !kind.IsValid() {
		return false
	}
	return s.mutate(ctx, "toggle_checklist_item", func(next *model.RootState) bool {
		for i := range next.Academics {
			sub := &next.Academics[i]
			if sub.ID != subjectID {
				continue
			}
			list := sub.WeeklyChecklist
			if kind == model.ListStrategy {
				list = sub.Strategies
			}
			for j := range list {
				if list[j].ID == itemID {
					list[j].Done = !list[j].Done
					return true
				}
			}
			return false
		}
		return false
	})
}

// MoveTask shifts a task one kanban column in dir. Moving past either end
// is a no-op.
func (s *Store) MoveTask(ctx context.Context, projectID, taskID string, dir model.Direction) bool {
	if !dir.IsValid() {
		return false
	}
	return s.mutate(ctx, "move_task", func(next *model.RootState) bool {
		task := findTask(next, projectID, taskID)
		if task == nil {
			return false
		}
		to := task.Status.Next(dir)
		if to == task.Status {
			return false
		}
		task.Status = to
		return true
	})
}

func findTask(st *model.RootState, projectID, taskID string) *model.Task {
	for i := range st.Projects {
		if st.Projects[i].ID != projectID {
			continue
		}
		for j := range st.Projects[i].Tasks {
			if st.Projects[i].Tasks[j].ID == taskID {
				return &st.Projects[i].Tasks[j]
			}
		}
	}
	return nil
}

// NewLead is the input of AddLead.
type NewLead struct {
	Name  string `validate:"required"`
	Owner string
	Value int64 `validate:"gte=0"`
	Notes string
}

const defaultLeadNotes = "New Entry"

// AddLead appends a Cold lead and returns its id.
func (s *Store) AddLead(ctx context.Context, in NewLead) (model.ID, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return "", fromValidator(err)
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = defaultLeadNotes
	}

	id := model.ID(uuid.NewString())
	s.mutate(ctx, "add_lead", func(next *model.RootState) bool {
		next.Income.Leads = append(next.Income.Leads, model.Lead{
			ID:     id,
			Name:   in.Name,
			Owner:  strings.TrimSpace(in.Owner),
			Status: model.LeadCold,
			Value:  in.Value,
			Notes:  notes,
		})
		next.Income.TotalRevenue = next.Income.Revenue()
		return true
	})
	return id, nil
}

// DeleteLead removes a lead and recomputes revenue.
func (s *Store) DeleteLead(ctx context.Context, id model.ID) bool {
	return s.mutate(ctx, "delete_lead", func(next *model.RootState) bool {
		for i, l := range next.Income.Leads {
			if l.ID == id {
				next.Income.Leads = append(next.Income.Leads[:i], next.Income.Leads[i+1:]...)
				next.Income.TotalRevenue = next.Income.Revenue()
				return true
			}
		}
		return false
	})
}

// SetLeadStatus changes the pipeline stage of a lead and recomputes revenue.
func (s *Store) SetLeadStatus(ctx context.Context, id model.ID, status model.LeadStatus) bool {
	if !status.IsValid() {
		return false
	}
	return s.mutate(ctx, "set_lead_status", func(next *model.RootState) bool {
		for i := range next.Income.Leads {
			l := &next.Income.Leads[i]
			if l.ID != id {
				continue
			}
			if l.Status == status {
				return false
			}
			l.Status = status
			next.Income.TotalRevenue = next.Income.Revenue()
			return true
		}
		return false
	})
}

// AppendHealthLog records a daily entry as the newest log. An empty date is
// filled with today.
func (s *Store) AppendHealthLog(ctx context.Context, entry model.LogEntry) error {
	if err := s.validator.Struct(entry); err != nil {
		return fromValidator(err)
	}
	if strings.TrimSpace(entry.Date) == "" {
		entry.Date = s.now().Format(rollover.DateLayout)
	}
	s.mutate(ctx, "append_health_log", func(next *model.RootState) bool {
		logs := make([]model.LogEntry, 0, len(next.Health.Logs)+1)
		logs = append(logs, entry)
		next.Health.Logs = append(logs, next.Health.Logs...)
		return true
	})
	return nil
}

// ToggleTool flips the checked flag of the roadmap tool at index.
func (s *Store) ToggleTool(ctx context.Context, index int) bool {
	return s.mutate(ctx, "toggle_tool", func(next *model.RootState) bool {
		tools := next.CyberRoadmap.Tools
		if index < 0 || index >= len(tools) {
			return false
		}
		tools[index].Checked = !tools[index].Checked
		return true
	})
}

// SetSkillLevel sets a roadmap skill level in the range 0-100.
func (s *Store) SetSkillLevel(ctx context.Context, index, level int) bool {
	if level < 0 || level > 100 {
		return false
	}
	return s.mutate(ctx, "set_skill_level", func(next *model.RootState) bool {
		skills := next.CyberRoadmap.Skills
		if index < 0 || index >= len(skills) || skills[index].Level == level {
			return false
		}
		skills[index].Level = level
		return true
	})
}

// SetRoadmapProgress overwrites the lab room and writeup counters.
func (s *Store) SetRoadmapProgress(ctx context.Context, rooms, writeups int) bool {
	if rooms < 0 || writeups < 0 {
		return false
	}
	return s.mutate(ctx, "set_roadmap_progress", func(next *model.RootState) bool {
		p := model.RoadmapProgress{TryHackMeRooms: rooms, Writeups: writeups}
		if next.CyberRoadmap.Progress == p {
			return false
		}
		next.CyberRoadmap.Progress = p
		return true
	})
}

// ReplaceState swaps in a whole new state, as used by import. The input is
// copied; it must carry a user profile and academics.
func (s *Store) ReplaceState(ctx context.Context, incoming *model.RootState) error {
	if incoming == nil {
		return &ValidationError{Reason: "state is empty"}
	}
	if err := incoming.Validate(); err != nil {
		return &ValidationError{Field: "state", Reason: err.Error()}
	}
	_, _ = s.apply(ctx, "replace_state", func(*model.RootState) (*model.RootState, bool) {
		next := incoming.Clone()
		next.Income.TotalRevenue = next.Income.Revenue()
		return next, true
	})
	return nil
}

// ResetToDefault replaces the state with a fresh default dataset.
func (s *Store) ResetToDefault(ctx context.Context) error {
	return s.ReplaceState(ctx, dataset.Build(s.now()))
}

// FinishWeek archives the current week and starts the next one. confirm is
// asked with the week number first; nothing changes unless it returns true,
// and a nil confirm never confirms. If the week moved on while confirm was
// pending, the rollover is dropped.
func (s *Store) FinishWeek(ctx context.Context, confirm func(week int) bool) (*model.HistoryEntry, bool) {
	if confirm == nil {
		return nil, false
	}
	s.Refresh(ctx)
	week := s.Snapshot().CurrentWeek
	if !confirm(week) {
		return nil, false
	}

	var entry model.HistoryEntry
	_, ok := s.apply(ctx, "finish_week", func(cur *model.RootState) (*model.RootState, bool) {
		if cur.CurrentWeek != week {
			return nil, false
		}
		var next *model.RootState
		next, entry = rollover.Apply(cur, s.now())
		return next, true
	})
	if !ok {
		return nil, false
	}
	return &entry, true
}
