package model

// Clone returns a deep copy of s. Mutations on the copy never reach s.
func (s *RootState) Clone() *RootState {
	if s == nil {
		return nil
	}
	out := *s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.WeeklyHistory = cloneSlice(s.WeeklyHistory)

	if s.Academics != nil {
		out.Academics = make([]Subject, len(s.Academics))
		for i, sub := range s.Academics {
			out.Academics[i] = sub.Clone()
		}
	}

	if s.Schedule != nil {
		out.Schedule = make(map[Weekday][]ScheduleItem, len(s.Schedule))
		for day, items := range s.Schedule {
			out.Schedule[day] = cloneSlice(items)
		}
	}

	if s.Projects != nil {
		out.Projects = make([]Project, len(s.Projects))
		for i, p := range s.Projects {
			p.Tasks = cloneSlice(p.Tasks)
			out.Projects[i] = p
		}
	}

	out.Income.Leads = cloneSlice(s.Income.Leads)
	out.Income.Scripts = cloneSlice(s.Income.Scripts)

	out.Health.Logs = cloneSlice(s.Health.Logs)
	if s.Health.Checklist != nil {
		out.Health.Checklist = make(map[string][]string, len(s.Health.Checklist))
		for k, v := range s.Health.Checklist {
			out.Health.Checklist[k] = cloneSlice(v)
		}
	}

	out.CyberRoadmap.Skills = cloneSlice(s.CyberRoadmap.Skills)
	out.CyberRoadmap.Tools = cloneSlice(s.CyberRoadmap.Tools)
	return &out
}

func (s Subject) Clone() Subject {
	out := s
	if s.Weight != nil {
		out.Weight = make(map[string]float64, len(s.Weight))
		for k, v := range s.Weight {
			out.Weight[k] = v
		}
	}
	out.Strategies = cloneSlice(s.Strategies)
	out.WeeklyChecklist = cloneSlice(s.WeeklyChecklist)
	return out
}

// cloneSlice copies a slice of value types, keeping nil as nil.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
